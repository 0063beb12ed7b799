package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kaificial/likes-service/internal/core/domain"
	"github.com/kaificial/likes-service/internal/core/ports"
)

const limiterKeyPrefix = "likes:"

// Config agrega os parâmetros do serviço de likes.
type Config struct {
	// LikeTTL é a validade do marcador de dedup por identidade.
	LikeTTL time.Duration
}

// LikeService implementa a lógica central do contador de likes:
// leitura pública e submissão com rate limit e dedup por identidade.
type LikeService struct {
	storage ports.Storage
	limiter ports.RateLimiter
	stats   ports.StatsStore
	config  Config
}

// NewLikeService cria uma nova instância do serviço. stats é opcional.
func NewLikeService(storage ports.Storage, limiter ports.RateLimiter, stats ports.StatsStore, cfg Config) (*LikeService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("limiter is required")
	}
	if cfg.LikeTTL <= 0 {
		return nil, fmt.Errorf("like TTL must be positive")
	}

	return &LikeService{storage: storage, limiter: limiter, stats: stats, config: cfg}, nil
}

// GetCount lê o contador global. Chave ausente vale 0.
func (s *LikeService) GetCount(ctx context.Context) (int64, error) {
	return s.storage.GetCount(ctx)
}

// SubmitLike processa uma submissão para a identidade informada.
//
// Ordem: rate limit → dedup → incremento + marcador. O incremento é a
// operação de registro: se a gravação do marcador falhar depois de um
// incremento bem-sucedido, o like é mantido (viés de sobrecontagem,
// nunca de subcontagem).
func (s *LikeService) SubmitLike(ctx context.Context, identity string) (domain.LikeReceipt, domain.RateLimitDecision, error) {
	identity = normalizeIdentity(identity)

	decision, err := s.limiter.Limit(ctx, limiterKeyPrefix+identity)
	if err != nil {
		s.record(ctx, identity, domain.OutcomeError)
		return domain.LikeReceipt{}, domain.RateLimitDecision{}, err
	}
	if !decision.Allowed {
		s.record(ctx, identity, domain.OutcomeRateLimited)
		return domain.LikeReceipt{}, decision, domain.ErrRateLimited
	}

	hasLiked, err := s.storage.HasMarker(ctx, identity)
	if err != nil {
		s.record(ctx, identity, domain.OutcomeError)
		return domain.LikeReceipt{}, decision, err
	}
	if hasLiked {
		s.record(ctx, identity, domain.OutcomeDuplicate)
		return domain.LikeReceipt{}, decision, domain.ErrAlreadyLiked
	}

	count, err := s.storage.IncrementCount(ctx)
	if err != nil {
		s.record(ctx, identity, domain.OutcomeError)
		return domain.LikeReceipt{}, decision, err
	}

	if err := s.storage.SetMarker(ctx, identity, s.config.LikeTTL); err != nil {
		// O incremento já foi confirmado; não desfazemos nem propagamos.
		log.Printf("failed to set like marker for %q: %v", identity, err)
	}

	s.record(ctx, identity, domain.OutcomeCommitted)
	return domain.LikeReceipt{Count: count}, decision, nil
}

func (s *LikeService) record(ctx context.Context, identity string, outcome domain.StatsOutcome) {
	if s.stats == nil {
		return
	}
	ev := domain.StatsEvent{Identity: identity, Outcome: outcome, At: time.Now()}
	if err := s.stats.Record(ctx, ev); err != nil {
		log.Printf("failed to record stats event: %v", err)
	}
}

// normalizeIdentity garante uma identidade não vazia para que rate limit e
// dedup se apliquem uniformemente, sem caminho de bypass.
func normalizeIdentity(identity string) string {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "anonymous"
	}
	return identity
}
