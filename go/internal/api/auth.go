package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/api/respond"
)

// SessionVerifier resolves a bearer token to the acting user identity.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

type contextKey int

const identityKey contextKey = iota

// Authenticate resolves the request's Authorization header through the
// session collaborator and stores the user identity in the context. A
// nil verifier allows anonymous access, which is the development mode.
func Authenticate(sessions SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions == nil {
				next.ServeHTTP(w, r)
				return
			}
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				respond.Error(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token")
				return
			}
			userID, err := sessions.Verify(r.Context(), token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid session")
				return
			}
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), identityKey, userID)))
		})
	}
}

// IdentityFrom returns the authenticated user, if any.
func IdentityFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(identityKey).(uuid.UUID)
	return id, ok
}
