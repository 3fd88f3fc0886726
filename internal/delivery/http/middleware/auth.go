package middleware

import (
	"context"
	"net/http"
	"strings"

	"eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/domain"
)

type contextKey string

const (
	subjectIDKey contextKey = "subjectID"
	roleKey      contextKey = "role"
)

// SetPrincipal returns a context with the authenticated account ID and role set.
func SetPrincipal(ctx context.Context, subjectID, role string) context.Context {
	ctx = context.WithValue(ctx, subjectIDKey, subjectID)
	return context.WithValue(ctx, roleKey, role)
}

// PrincipalFromContext returns the authenticated account ID and role, if present.
func PrincipalFromContext(ctx context.Context) (subjectID, role string, ok bool) {
	subjectID, ok = ctx.Value(subjectIDKey).(string)
	if !ok {
		return "", "", false
	}
	role, ok = ctx.Value(roleKey).(string)
	return subjectID, role, ok
}

// RequireRole returns a wrapper that validates the Bearer token, checks the
// role claim, and sets the principal in the request context. Missing or
// invalid tokens get 401; a valid token with the wrong role gets 403.
func RequireRole(verifier domain.TokenVerifier, role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing token")
				return
			}
			subjectID, tokenRole, err := verifier.Verify(token)
			if err != nil {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			if tokenRole != role {
				helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
				return
			}
			r = r.WithContext(SetPrincipal(r.Context(), subjectID, tokenRole))
			next(w, r)
		}
	}
}

// RequireUser wraps a handler so only authenticated attendees reach it.
func RequireUser(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return RequireRole(verifier, domain.RoleUser)
}

// RequireOrganizer wraps a handler so only authenticated organizers reach it.
func RequireOrganizer(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return RequireRole(verifier, domain.RoleOrganizer)
}
