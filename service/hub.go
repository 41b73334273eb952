package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrDuplicate         = errors.New("service already registered")
	ErrMissingDependency = errors.New("missing service dependency")
	ErrCycle             = errors.New("service dependency cycle")
)

// Hub owns the long-lived services and runs their lifecycle so that every
// service comes up after, and goes down before, the services it depends on
type Hub struct {
	mu      sync.Mutex
	byName  map[string]Service
	names   []string // Registration order, the tie-break for resolution
	order   []string // Resolved on InitAll
	running []string // Started, for reverse shutdown
}

// NewHub creates an empty service hub
func NewHub() *Hub {
	return &Hub{byName: make(map[string]Service)}
}

// Register adds services in order
func (h *Hub) Register(svcs ...Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, svc := range svcs {
		name := svc.Name()
		if _, ok := h.byName[name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, name)
		}
		h.byName[name] = svc
		h.names = append(h.names, name)
	}
	h.order = nil
	return nil
}

// InitAll initialises services in dependency order. A Binder receives its
// initialised dependencies just before its own Init; args maps a service
// name to its Init arguments. A failure stops what was already initialised.
func (h *Hub) InitAll(args map[string][]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	order, err := h.resolve()
	if err != nil {
		return err
	}
	h.order = order

	for i, name := range order {
		svc := h.byName[name]
		if err := h.initOne(svc, args[name]); err != nil {
			for j := i - 1; j >= 0; j-- {
				h.byName[order[j]].Stop()
			}
			return fmt.Errorf("service %s init: %w", name, err)
		}
	}
	return nil
}

func (h *Hub) initOne(svc Service, args []any) error {
	if b, ok := svc.(Binder); ok {
		deps := make(map[string]Service, len(svc.Dependencies()))
		for _, dep := range svc.Dependencies() {
			deps[dep] = h.byName[dep]
		}
		if err := b.Bind(deps); err != nil {
			return err
		}
	}
	return svc.Init(args...)
}

// StartAll starts services in dependency order, stopping the started ones
// again if any Start fails
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		return errors.New("service: StartAll before InitAll")
	}
	h.running = h.running[:0]
	for _, name := range h.order {
		if err := h.byName[name].Start(); err != nil {
			h.stopRunningLocked()
			return fmt.Errorf("service %s start: %w", name, err)
		}
		h.running = append(h.running, name)
	}
	return nil
}

// StopAll stops started services in reverse order
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopRunningLocked()
}

func (h *Hub) stopRunningLocked() {
	for i := len(h.running) - 1; i >= 0; i-- {
		h.byName[h.running[i]].Stop()
	}
	h.running = nil
}

// Order returns the resolved order, nil before InitAll
func (h *Hub) Order() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.order...)
}

// resolve walks dependencies depth first from each service in registration
// order; a service is placed once all of its dependencies are placed
func (h *Hub) resolve() ([]string, error) {
	const (
		visiting = iota + 1
		placed
	)
	state := make(map[string]int, len(h.names))
	order := make([]string, 0, len(h.names))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case placed:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(path, name), " -> "))
		}
		state[name] = visiting
		for _, dep := range h.byName[name].Dependencies() {
			if _, ok := h.byName[dep]; !ok {
				return fmt.Errorf("%w: %s needs %s", ErrMissingDependency, name, dep)
			}
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = placed
		order = append(order, name)
		return nil
	}

	for _, name := range h.names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
