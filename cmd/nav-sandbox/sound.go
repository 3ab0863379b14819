package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate   = beep.SampleRate(44100)
	chimeFound   = 880.0
	chimeMissing = 220.0
	chimeLength  = 50 * time.Millisecond
)

// initSound opens the speaker and returns a chime for path results
// Audio is optional; callers run silently on error
func initSound() (func(found bool), func(), error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, nil, err
	}
	chime := func(found bool) {
		freq := chimeMissing
		if found {
			freq = chimeFound
		}
		tone, err := generators.SineTone(sampleRate, freq)
		if err != nil {
			return
		}
		speaker.Play(beep.Take(sampleRate.N(chimeLength), tone))
	}
	return chime, speaker.Close, nil
}
