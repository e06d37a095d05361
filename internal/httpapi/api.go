// Package httpapi exposes the authentication service over HTTP and converts
// domain errors into the uniform response envelope.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"taskhub.org/internal/auth"
	"taskhub.org/internal/obs"
)

// ReadyProbe reports whether downstream dependencies are reachable.
type ReadyProbe struct {
	Ping func(ctx context.Context) error
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.Ping == nil {
		return nil
	}
	return rp.Ping(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	svc        *auth.Service
	readyProbe ReadyProbe
	version    string

	production  bool
	corsOrigins []string
	rateBurst   int
	ratePerSec  int
}

// Option configures the API.
type Option func(*API)

// WithProduction toggles production hardening (secure cookies, no stacks).
func WithProduction(on bool) Option {
	return func(a *API) { a.production = on }
}

// WithCORSOrigins sets the allowed cross-origin callers.
func WithCORSOrigins(origins []string) Option {
	return func(a *API) { a.corsOrigins = origins }
}

// WithRateLimit overrides the per-IP rate limit.
func WithRateLimit(burst, perSec int) Option {
	return func(a *API) {
		if burst > 0 {
			a.rateBurst = burst
		}
		if perSec > 0 {
			a.ratePerSec = perSec
		}
	}
}

// New wires the route table.
func New(svc *auth.Service, rp ReadyProbe, version string, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		svc:        svc,
		readyProbe: rp,
		version:    version,
		rateBurst:  20,
		ratePerSec: 10,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("GET /{$}", a.handleRoot)
	a.mux.HandleFunc("GET /healthcheck", a.handleHealthcheck)
	a.mux.HandleFunc("GET /readyz", a.handleReady)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /auth/register", a.handleRegister)
	a.mux.HandleFunc("POST /auth/login", a.handleLogin)
	a.mux.HandleFunc("GET /auth/verify-email/{token}", a.handleVerifyEmail)
	a.mux.HandleFunc("POST /auth/refresh-token", a.handleRefreshToken)
	a.mux.HandleFunc("POST /auth/forgot-password", a.handleForgotPassword)
	a.mux.HandleFunc("POST /auth/reset-password/{token}", a.handleResetPassword)

	a.mux.Handle("POST /auth/logout", a.requireAuth(a.handleLogout))
	a.mux.Handle("GET /auth/current-user", a.requireAuth(a.handleCurrentUser))
	a.mux.Handle("POST /auth/change-password", a.requireAuth(a.handleChangePassword))
	a.mux.Handle("GET /auth/resend-email-verification", a.requireAuth(a.handleResendVerification))

	return a
}

// Handler returns the full middleware chain around the route table.
func (a *API) Handler() http.Handler {
	h := http.Handler(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = a.CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "taskhub auth API", map[string]any{
		"version": a.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "API is healthy", map[string]any{
		"service": "taskhub-auth",
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		a.writeError(w, r, http.StatusServiceUnavailable, "not ready", []string{err.Error()})
		return
	}
	writeSuccess(w, http.StatusOK, "ready", nil)
}
