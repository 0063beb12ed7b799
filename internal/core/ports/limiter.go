// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"

	"github.com/kaificial/likes-service/internal/core/domain"
)

type RateLimiter interface {
	Limit(ctx context.Context, key string) (domain.RateLimitDecision, error)
}
