// Package stats disponibiliza implementações do registro de estatísticas de decisão.
package stats

import (
	"context"
	"sync"

	"github.com/kaificial/likes-service/internal/core/domain"
	"github.com/kaificial/likes-service/internal/core/ports"
)

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento; não faz expiração.
type MemoryStatsStore struct {
	mu        sync.Mutex
	total     int64
	byOutcome map[domain.StatsOutcome]int64
}

var _ ports.StatsStore = (*MemoryStatsStore)(nil)

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{
		byOutcome: make(map[domain.StatsOutcome]int64),
	}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.byOutcome[ev.Outcome]++
	return nil
}

func (s *MemoryStatsStore) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByOutcome() map[domain.StatsOutcome]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.StatsOutcome]int64, len(s.byOutcome))
	for k, v := range s.byOutcome {
		out[k] = v
	}
	return out
}
