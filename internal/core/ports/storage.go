// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"
	"time"
)

// Storage abstrai o armazenamento externo do contador, dos marcadores de
// dedup e do estado da janela do rate limiter.
//
// IncrementCount e SetMarker precisam ser atômicos na camada de storage:
// toda a coordenação entre instâncias concorrentes do serviço é delegada
// a essas primitivas.
type Storage interface {
	// GetCount lê o contador global. Chave ausente vale 0.
	GetCount(ctx context.Context) (int64, error)

	// IncrementCount incrementa o contador global em 1 e retorna o novo valor.
	IncrementCount(ctx context.Context) (int64, error)

	// HasMarker verifica se a identidade possui marcador de dedup vigente.
	HasMarker(ctx context.Context, identity string) (bool, error)

	// SetMarker grava o marcador de dedup com expiração.
	SetMarker(ctx context.Context, identity string, ttl time.Duration) error

	// CountWindow registra uma tentativa para a chave e retorna quantas
	// tentativas existem na janela deslizante, junto com o instante da
	// tentativa mais antiga ainda dentro da janela (para calcular o reset).
	CountWindow(ctx context.Context, key string, window time.Duration) (count int64, oldest time.Time, err error)
}
