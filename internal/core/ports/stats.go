// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"

	"github.com/kaificial/likes-service/internal/core/domain"
)

// StatsStore é a estratégia de persistência das estatísticas de decisão.
//
// O serviço trata erros de gravação como best-effort (não derruba a request).
type StatsStore interface {
	Record(ctx context.Context, ev domain.StatsEvent) error
}
