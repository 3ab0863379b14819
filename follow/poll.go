package follow

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sightgrid/navigation"
	"github.com/lixenwraith/sightgrid/parameter"
	"github.com/lixenwraith/sightgrid/vmath"
)

// Every calls fn immediately and then once per interval until ctx ends or fn returns false
// fn runs on the calling goroutine; a slow fn delays later ticks instead of overlapping
func Every(ctx context.Context, interval time.Duration, fn func(ctx context.Context) bool) error {
	if interval <= 0 {
		interval = parameter.NavRequeryInterval
	}
	if !fn(ctx) {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !fn(ctx) {
				return nil
			}
		}
	}
}

// Chase builds the bounded query an alerted agent issues toward a target
// The search stays within vision range of the target; end visibility is not enforced
// ok is false when the agent is already within stopping distance
func Chase(from, target mgl64.Vec3) (q navigation.Query, ok bool) {
	if vmath.PlaneDistance(from, target) <= parameter.NavMinDistToTarget {
		return navigation.Query{}, false
	}
	return navigation.Query{
		Start:             from,
		Goal:              target,
		MaxPathLength:     parameter.NavAlertedMaxPathLength,
		MaxDistanceToGoal: parameter.NavVisionRange,
	}, true
}
