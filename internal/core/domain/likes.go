// Package domain concentra entidades e estruturas centrais do contador de likes.
package domain

import "time"

// LikeReceipt é o resultado de uma submissão aceita.
type LikeReceipt struct {
	Count int64
}

// RateLimitRule descreve a janela deslizante aplicada por identidade.
type RateLimitRule struct {
	Requests int64
	Window   time.Duration
}

// RateLimitDecision carrega o resultado da consulta ao limiter,
// com os campos necessários para os headers X-RateLimit-*.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	// ResetAt é o instante em que a janela volta a aceitar requisições.
	ResetAt time.Time
}

// StatsOutcome classifica o destino de uma submissão para fins de analytics.
type StatsOutcome string

const (
	OutcomeCommitted   StatsOutcome = "committed"
	OutcomeRateLimited StatsOutcome = "rate_limited"
	OutcomeDuplicate   StatsOutcome = "duplicate"
	OutcomeError       StatsOutcome = "error"
)

// StatsEvent representa uma decisão tomada sobre uma submissão de like.
//
// O registro é best-effort: falhas de gravação não devem derrubar a request.
type StatsEvent struct {
	Identity string
	Outcome  StatsOutcome
	At       time.Time
}
