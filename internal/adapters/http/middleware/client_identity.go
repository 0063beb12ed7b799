// Package middleware disponibiliza middlewares HTTP específicos da aplicação.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

// AnonymousIdentity é a sentinela usada quando nenhum header de identidade
// está presente. Rate limit e dedup se aplicam a ela como a qualquer cliente.
const AnonymousIdentity = "anonymous"

type contextKey struct{}

var identityKey contextKey

// ClientIdentity extrai a identidade do cliente dos headers encaminhados e a
// injeta no contexto da request.
//
// Ordem de derivação: primeiro valor do X-Forwarded-For; senão X-Real-IP;
// senão a sentinela "anonymous".
func ClientIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := ExtractIdentity(r)
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractIdentity deriva a identidade diretamente da request.
func ExtractIdentity(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return AnonymousIdentity
}

// IdentityFromContext devolve a identidade injetada pelo middleware.
func IdentityFromContext(ctx context.Context) string {
	if identity, ok := ctx.Value(identityKey).(string); ok && identity != "" {
		return identity
	}
	return AnonymousIdentity
}
