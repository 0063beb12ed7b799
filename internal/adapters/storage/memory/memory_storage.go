// Package memory disponibiliza um storage em memória para desenvolvimento e testes.
//
// Não é indicado para produção: o estado mora no processo e não sobrevive a
// restarts nem é compartilhado entre instâncias.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kaificial/likes-service/internal/core/ports"
)

type Storage struct {
	mu      sync.Mutex
	count   int64
	markers map[string]time.Time
	windows map[string][]time.Time

	now func() time.Time
}

var _ ports.Storage = (*Storage)(nil)

type Option func(*Storage)

// WithClock injeta a fonte de tempo (usado nos testes de expiração).
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

func New(opts ...Option) *Storage {
	s := &Storage{
		markers: make(map[string]time.Time),
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) GetCount(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, nil
}

func (s *Storage) IncrementCount(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return s.count, nil
}

func (s *Storage) HasMarker(_ context.Context, identity string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiration, ok := s.markers[identity]
	if !ok {
		return false, nil
	}
	if s.now().After(expiration) {
		delete(s.markers, identity)
		return false, nil
	}
	return true, nil
}

func (s *Storage) SetMarker(_ context.Context, identity string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[identity] = s.now().Add(ttl)
	return nil
}

func (s *Storage) CountWindow(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	kept := s.windows[key][:0]
	for _, at := range s.windows[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	kept = append(kept, now)
	s.windows[key] = kept

	return int64(len(kept)), kept[0], nil
}
