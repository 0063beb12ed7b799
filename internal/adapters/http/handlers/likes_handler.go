// Package handlers agrupa os handlers HTTP do contador de likes.
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kaificial/likes-service/internal/adapters/http/middleware"
	"github.com/kaificial/likes-service/internal/core/domain"
)

const (
	msgRateLimited = "Too many requests. Please try again later."
	msgDuplicate   = "You've already liked this site!"
	msgThanks      = "Thank you for liking!"
	msgGetFailed   = "Failed to fetch like count"
	msgPostFailed  = "Failed to process your like. Please try again later."
)

// LikeSubmitter é o contrato consumido pelos handlers.
type LikeSubmitter interface {
	GetCount(ctx context.Context) (int64, error)
	SubmitLike(ctx context.Context, identity string) (domain.LikeReceipt, domain.RateLimitDecision, error)
}

type LikesHandler struct {
	service LikeSubmitter
}

func NewLikesHandler(service LikeSubmitter) *LikesHandler {
	return &LikesHandler{service: service}
}

type countResponse struct {
	Count int64 `json:"count"`
}

type likeResponse struct {
	Count   int64  `json:"count"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	ResetAt string `json:"resetAt,omitempty"`
}

// GetLikes responde GET /api/likes com o contador atual.
func (h *LikesHandler) GetLikes(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.GetCount(r.Context())
	if err != nil {
		log.Printf("failed to fetch like count: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error", Message: msgGetFailed})
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

// PostLike responde POST /api/likes processando uma submissão.
func (h *LikesHandler) PostLike(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	receipt, decision, err := h.service.SubmitLike(r.Context(), identity)
	switch {
	case err == nil:
		log.Printf("new like from %s, total count: %d", identity, receipt.Count)
		writeJSON(w, http.StatusOK, likeResponse{Count: receipt.Count, Success: true, Message: msgThanks})

	case domain.IsRateLimitedError(err):
		log.Printf("rate limit exceeded for identity %s", identity)
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.UnixMilli(), 10))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:   "rate_limit",
			Message: msgRateLimited,
			ResetAt: decision.ResetAt.UTC().Format(time.RFC3339),
		})

	case domain.IsAlreadyLikedError(err):
		log.Printf("duplicate like attempt from identity %s", identity)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "already_liked", Message: msgDuplicate})

	default:
		log.Printf("failed to process like: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error", Message: msgPostFailed})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
