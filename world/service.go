package world

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/sightgrid/scene"
)

// ServiceName is the hub registration name
const ServiceName = "world"

// Service owns the active World and rebuilds it when the scene file changes
// Readers call Current per request; a reload swaps the pointer atomically
type Service struct {
	path  string
	watch bool

	current atomic.Pointer[World]

	mu       sync.Mutex
	watcher  *scene.Watcher
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	onReload []func(*World)
}

// NewService creates a world service for the scene file at path
func NewService(path string, watch bool) *Service {
	return &Service{path: path, watch: watch}
}

// NewStaticService wraps a prebuilt world; Init keeps it and nothing is watched
func NewStaticService(w *World) *Service {
	s := &Service{}
	s.current.Store(w)
	return s
}

func (s *Service) Name() string           { return ServiceName }
func (s *Service) Dependencies() []string { return nil }

// Init loads the scene and builds the first world
func (s *Service) Init(args ...any) error {
	if s.path == "" {
		if s.current.Load() == nil {
			return errors.New("world: no scene path")
		}
		return nil
	}
	return s.Reload(context.Background())
}

// Start begins watching the scene file when enabled
func (s *Service) Start() error {
	if !s.watch || s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	w, err := scene.NewWatcher(s.path)
	if err != nil {
		return fmt.Errorf("world: watch %s: %w", s.path, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.watcher = w
	s.cancel = cancel

	s.wg.Add(1)
	go s.watchLoop(ctx, w)
	return nil
}

// Stop halts watching; safe to call repeatedly
func (s *Service) Stop() error {
	s.mu.Lock()
	w, cancel := s.watcher, s.cancel
	s.watcher, s.cancel = nil, nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	cancel()
	err := w.Close()
	s.wg.Wait()
	return err
}

// Current returns the active world, nil before Init
func (s *Service) Current() *World {
	return s.current.Load()
}

// OnReload registers fn to run after each successful rebuild
// Callbacks run on the reloading goroutine
func (s *Service) OnReload(fn func(*World)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Reload reads the scene file and swaps in a freshly built world
// On failure the previous world stays active
func (s *Service) Reload(ctx context.Context) error {
	startT := time.Now()
	f, err := scene.Load(s.path)
	if err != nil {
		return err
	}
	w, err := Build(ctx, f)
	if err != nil {
		return err
	}
	s.current.Store(w)
	log.Printf("world: loaded %q from %s in %v", f.Name, s.path, time.Since(startT))

	s.mu.Lock()
	callbacks := slices.Clone(s.onReload)
	s.mu.Unlock()
	for _, fn := range callbacks {
		fn(w)
	}
	return nil
}

func (s *Service) watchLoop(ctx context.Context, w *scene.Watcher) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Events:
			if !ok {
				return
			}
			if err := s.Reload(ctx); err != nil {
				log.Printf("world: reload failed, keeping previous scene: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("world: watcher: %v", err)
		}
	}
}
