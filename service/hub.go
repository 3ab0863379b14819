package service

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
)

var (
	ErrDuplicate  = errors.New("service: already registered")
	ErrMissingDep = errors.New("service: unregistered dependency")
	ErrCycle      = errors.New("service: circular dependency")
)

// Hub owns service instances and drives their lifecycle in dependency order
type Hub struct {
	mu       sync.RWMutex
	services map[string]Service
	sorted   []string // Dependency order, cached until the next Register
	inited   []string
	started  []string
}

func NewHub() *Hub {
	return &Hub{services: make(map[string]Service)}
}

// Register adds a service; names must be unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	h.services[name] = svc
	h.sorted = nil
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// Lookup retrieves a service by name and asserts its concrete type
func Lookup[T Service](h *Hub, name string) (T, error) {
	var zero T
	svc, ok := h.Get(name)
	if !ok {
		return zero, fmt.Errorf("service not found: %s", name)
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, fmt.Errorf("service %s: type mismatch, got %T", name, svc)
	}
	return typed, nil
}

// MustGet is Lookup that panics on failure, for wiring that cannot proceed without the service
func MustGet[T Service](h *Hub, name string) T {
	typed, err := Lookup[T](h, name)
	if err != nil {
		panic(err)
	}
	return typed
}

// InitAll initializes every service in dependency order, passing args to each
// On failure, already-initialized services are stopped in reverse order
func (h *Hub) InitAll(args ...any) error {
	h.mu.Lock()
	if h.sorted == nil {
		order, err := h.topologicalSort()
		if err != nil {
			h.mu.Unlock()
			return err
		}
		h.sorted = order
	}
	order := slices.Clone(h.sorted)
	h.mu.Unlock()

	// Lock released while Init runs so services can resolve peers through Get
	var inited []string
	for _, name := range order {
		svc, _ := h.Get(name)
		if err := svc.Init(args...); err != nil {
			h.stopReverse(inited)
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		inited = append(inited, name)
	}

	h.mu.Lock()
	h.inited = inited
	h.mu.Unlock()
	return nil
}

// StartAll starts every service in dependency order
// On failure, every initialized service is stopped in reverse order
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sorted == nil {
		return errors.New("service: StartAll before InitAll")
	}

	h.started = nil
	for _, name := range h.sorted {
		if err := h.services[name].Start(); err != nil {
			h.stopReverseLocked(h.inited)
			h.inited = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
	}
	return nil
}

// StopAll stops initialized services in reverse dependency order
// Errors are logged; every service gets its Stop call
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopReverseLocked(h.inited)
	h.inited = nil
	h.started = nil
}

func (h *Hub) stopReverse(names []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.stopReverseLocked(names)
}

func (h *Hub) stopReverseLocked(names []string) {
	for i := len(names) - 1; i >= 0; i-- {
		if svc, ok := h.services[names[i]]; ok {
			if err := svc.Stop(); err != nil {
				log.Printf("service: stop %s: %v", names[i], err)
			}
		}
	}
}

// topologicalSort orders services with Kahn's algorithm; ties break by name
func (h *Hub) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(h.services))
	dependents := make(map[string][]string)

	for name, svc := range h.services {
		inDegree[name] += 0
		for _, dep := range svc.Dependencies() {
			if _, exists := h.services[dep]; !exists {
				return nil, fmt.Errorf("%w: %s needs %s", ErrMissingDep, name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}
	slices.Sort(ready)

	result := make([]string, 0, len(h.services))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		result = append(result, name)

		var next []string
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		slices.Sort(next)
		ready = append(ready, next...)
	}

	if len(result) != len(h.services) {
		return nil, ErrCycle
	}
	return result, nil
}

// Names returns registered service names in sorted order
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
