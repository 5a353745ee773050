// Package storage persists whiteboard documents. The sqlite and file
// subpackages provide stores; Autosaver connects a store to an app's
// persist events.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"whiteboard/app"
	"whiteboard/document"
	"whiteboard/internal/logger"
)

// ErrNotFound is returned when a named document does not exist.
var ErrNotFound = errors.New("document not found")

// Store saves and loads documents by name.
type Store interface {
	Save(ctx context.Context, name string, m document.Model) error
	Load(ctx context.Context, name string) (document.Model, error)
}

// Autosaver writes the document on persist events, at most once per
// interval. A model arriving sooner is kept and written by Flush.
type Autosaver struct {
	store   Store
	name    string
	log     *logger.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	pending *document.Model
	saves   int
}

// NewAutosaver creates an autosaver for the document name. An interval of
// zero or less saves on every persist event.
func NewAutosaver(store Store, name string, interval time.Duration, log *logger.Logger) *Autosaver {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Autosaver{
		store:   store,
		name:    name,
		log:     log.WithPrefix("autosave"),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Attach subscribes the autosaver to a's persist events and returns the
// unsubscribe func.
func (s *Autosaver) Attach(ctx context.Context, a *app.App) func() {
	return a.Subscribe(app.EventPersist, func(e app.Event) {
		if e.Model == nil {
			return
		}
		if err := s.Persist(ctx, *e.Model); err != nil {
			s.log.Error("save %s: %v", s.name, err)
		}
	})
}

// Persist saves m now if the interval allows, otherwise holds it until the
// next Flush or Persist.
func (s *Autosaver) Persist(ctx context.Context, m document.Model) error {
	s.mu.Lock()
	if !s.limiter.Allow() {
		s.pending = &m
		s.mu.Unlock()
		s.log.Debug("deferred save of %s", s.name)
		return nil
	}
	s.pending = nil
	s.mu.Unlock()
	return s.save(ctx, m)
}

// Flush writes the held model, if any.
func (s *Autosaver) Flush(ctx context.Context) error {
	s.mu.Lock()
	m := s.pending
	s.pending = nil
	s.mu.Unlock()
	if m == nil {
		return nil
	}
	return s.save(ctx, *m)
}

// Pending reports whether a model is waiting for Flush.
func (s *Autosaver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Saves is the number of completed writes.
func (s *Autosaver) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Autosaver) save(ctx context.Context, m document.Model) error {
	if err := s.store.Save(ctx, s.name, m); err != nil {
		return err
	}
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	s.log.Debug("saved %s", s.name)
	return nil
}
