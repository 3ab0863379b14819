package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/lixenwraith/sightgrid/service"
	"github.com/lixenwraith/sightgrid/world"
)

// ServiceName is the hub registration name
const ServiceName = "http"

// Service runs the HTTP listener once the world service is ready
type Service struct {
	cfg Config

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

func (s *Service) Name() string           { return ServiceName }
func (s *Service) Dependencies() []string { return []string{world.ServiceName} }

// Init resolves the world service through the hub passed in args
func (s *Service) Init(args ...any) error {
	hub, ok := service.HubFrom(args)
	if !ok {
		return errors.New("server: Init needs the service hub")
	}
	worlds, err := service.Lookup[*world.Service](hub, world.ServiceName)
	if err != nil {
		return err
	}

	h := NewHandler(worlds)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      NewRouter(s.cfg, h),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	// Hijacked WebSocket conns are outside Shutdown's reach
	s.srv.RegisterOnShutdown(h.CloseSessions)
	return nil
}

// Start binds the listener and serves in the background
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return errors.New("server: Start before Init")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.done = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		log.Printf("server: listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: serve: %v", err)
		}
	}(s.srv, s.done)
	return nil
}

// Addr returns the bound address, empty before Start
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop drains in-flight requests within the shutdown timeout
func (s *Service) Stop() error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	started := s.listener != nil
	s.listener = nil
	s.done = nil
	s.mu.Unlock()

	if !started {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(ctx)
	<-done
	return err
}
