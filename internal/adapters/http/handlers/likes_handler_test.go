package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	httpMiddleware "github.com/kaificial/likes-service/internal/adapters/http/middleware"
	"github.com/kaificial/likes-service/internal/adapters/storage/memory"
	"github.com/kaificial/likes-service/internal/core/domain"
	"github.com/kaificial/likes-service/internal/core/services"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	storage := memory.New()
	limiter, err := services.NewSlidingWindowLimiter(storage, domain.RateLimitRule{Requests: 5, Window: time.Minute})
	if err != nil {
		t.Fatalf("failed to create limiter: %v", err)
	}
	service, err := services.NewLikeService(storage, limiter, nil, services.Config{LikeTTL: 24 * time.Hour})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	h := NewLikesHandler(service)

	r := chi.NewRouter()
	r.Use(httpMiddleware.ClientIdentity)
	r.Get("/api/likes", h.GetLikes)
	r.Post("/api/likes", h.PostLike)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, forwardedFor string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, "/api/likes", nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestGetLikes_EmptyStoreReturnsZero(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["count"] != float64(0) {
		t.Fatalf("expected count 0, got %v", body["count"])
	}
}

func TestGetLikes_IsIdempotent(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "1.2.3.4")

	first := decodeBody(t, doRequest(t, router, http.MethodGet, ""))
	second := decodeBody(t, doRequest(t, router, http.MethodGet, ""))
	if first["count"] != second["count"] {
		t.Fatalf("expected identical counts with no intervening writes, got %v then %v", first["count"], second["count"])
	}
}

func TestPostLike_FreshLike(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "1.2.3.4")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Fatalf("expected count 1, got %v", body["count"])
	}
	if body["success"] != true {
		t.Fatalf("expected success true, got %v", body["success"])
	}
}

func TestPostLike_DuplicateLeavesCounterUnchanged(t *testing.T) {
	router := newTestRouter(t)

	if rec := doRequest(t, router, http.MethodPost, "1.2.3.4"); rec.Code != http.StatusOK {
		t.Fatalf("expected first like to succeed, got %d", rec.Code)
	}

	rec := doRequest(t, router, http.MethodPost, "1.2.3.4")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "already_liked" {
		t.Fatalf("expected already_liked error, got %v", body["error"])
	}

	get := decodeBody(t, doRequest(t, router, http.MethodGet, ""))
	if get["count"] != float64(1) {
		t.Fatalf("expected counter unchanged at 1, got %v", get["count"])
	}
}

func TestPostLike_SixthRequestInWindowIsThrottled(t *testing.T) {
	router := newTestRouter(t)

	// 1 fresh like + 4 duplicates exhaust the 5-request window.
	for i := 0; i < 5; i++ {
		doRequest(t, router, http.MethodPost, "6.6.6.6")
	}

	rec := doRequest(t, router, http.MethodPost, "6.6.6.6")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["error"] != "rate_limit" {
		t.Fatalf("expected rate_limit error, got %v", body["error"])
	}
	if _, err := time.Parse(time.RFC3339, body["resetAt"].(string)); err != nil {
		t.Fatalf("expected ISO-8601 resetAt, got %v: %v", body["resetAt"], err)
	}

	if got := rec.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("expected X-RateLimit-Limit 5, got %q", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected X-RateLimit-Remaining 0, got %q", got)
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatalf("expected X-RateLimit-Reset header")
	}
}

func TestPostLike_DistinctIdentitiesAreIndependent(t *testing.T) {
	router := newTestRouter(t)

	for i, id := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		rec := doRequest(t, router, http.MethodPost, id)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected like from %s to succeed, got %d", id, rec.Code)
		}
		if body := decodeBody(t, rec); body["count"] != float64(i+1) {
			t.Fatalf("expected count %d, got %v", i+1, body["count"])
		}
	}
}

func TestPostLike_MissingHeadersUseAnonymousSentinel(t *testing.T) {
	router := newTestRouter(t)

	if rec := doRequest(t, router, http.MethodPost, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected anonymous like to succeed, got %d", rec.Code)
	}

	// Dedup applies to the sentinel identity too.
	rec := doRequest(t, router, http.MethodPost, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for anonymous resubmission, got %d", rec.Code)
	}
}

func TestPostLike_StoreFailureReturnsServerError(t *testing.T) {
	service := failingService{}
	h := NewLikesHandler(service)

	r := chi.NewRouter()
	r.Use(httpMiddleware.ClientIdentity)
	r.Get("/api/likes", h.GetLikes)
	r.Post("/api/likes", h.PostLike)

	rec := doRequest(t, r, http.MethodPost, "1.2.3.4")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "server_error" {
		t.Fatalf("expected server_error, got %v", body["error"])
	}

	rec = doRequest(t, r, http.MethodGet, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on read, got %d", rec.Code)
	}
}

type failingService struct{}

func (failingService) GetCount(context.Context) (int64, error) {
	return 0, errStoreDown
}

func (failingService) SubmitLike(context.Context, string) (domain.LikeReceipt, domain.RateLimitDecision, error) {
	return domain.LikeReceipt{}, domain.RateLimitDecision{}, errStoreDown
}

var errStoreDown = errors.New("store unreachable")
