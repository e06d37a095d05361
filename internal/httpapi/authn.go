package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"taskhub.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// requireAuth is the request gate: it resolves an access token from the
// cookie or the Authorization header to a principal and attaches it to the
// context. An expired token always fails closed; the caller must use the
// refresh flow.
func (a *API) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessTokenFromRequest(r)
		if token == "" {
			a.writeError(w, r, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		principal, err := a.svc.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				a.writeError(w, r, http.StatusUnauthorized, "unauthorized", nil)
			} else {
				a.writeServiceError(w, r, err)
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
	})
}

func accessTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := strings.TrimSpace(r.Header.Get(authHeader))
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return ""
	}
	return strings.TrimSpace(header[len(bearer):])
}

// refreshTokenFromRequest reads the refresh token from the cookie, falling
// back to the request body field decoded by the caller.
func refreshTokenFromRequest(r *http.Request, bodyToken string) string {
	if c, err := r.Cookie(refreshTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(bodyToken)
}
