package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kaificial/likes-service/internal/core/domain"
	"github.com/kaificial/likes-service/internal/core/ports"
)

// SlidingWindowLimiter implementa rate limiting por janela deslizante
// sobre o estado mantido pelo storage.
type SlidingWindowLimiter struct {
	storage ports.Storage
	rule    domain.RateLimitRule
	now     func() time.Time
}

var _ ports.RateLimiter = (*SlidingWindowLimiter)(nil)

// NewSlidingWindowLimiter cria uma nova instância do limiter.
func NewSlidingWindowLimiter(storage ports.Storage, rule domain.RateLimitRule) (*SlidingWindowLimiter, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if rule.Requests <= 0 || rule.Window <= 0 {
		return nil, fmt.Errorf("rate limit rule must have positive values")
	}

	return &SlidingWindowLimiter{storage: storage, rule: rule, now: time.Now}, nil
}

// Limit registra a tentativa e decide se ela cabe na janela.
//
// Toda chamada conta contra o orçamento, inclusive as que depois serão
// rejeitadas como duplicadas: spam de duplicatas também é estrangulado.
func (l *SlidingWindowLimiter) Limit(ctx context.Context, key string) (domain.RateLimitDecision, error) {
	count, oldest, err := l.storage.CountWindow(ctx, key, l.rule.Window)
	if err != nil {
		return domain.RateLimitDecision{}, err
	}

	decision := domain.RateLimitDecision{
		Limit:     l.rule.Requests,
		Remaining: l.rule.Requests - count,
		ResetAt:   l.resetAt(oldest),
	}
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	decision.Allowed = count <= l.rule.Requests

	return decision, nil
}

// resetAt é o primeiro instante em que uma nova tentativa pode ser aceita:
// a expiração do evento mais antigo ainda dentro da janela.
func (l *SlidingWindowLimiter) resetAt(oldest time.Time) time.Time {
	if oldest.IsZero() {
		return l.now().Add(l.rule.Window)
	}
	return oldest.Add(l.rule.Window)
}
