package httpapi

import (
	"net/http"
	"testing"
)

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "a@x.com", "secret123")
	login := ts.login(t, "alice", "secret123")
	access := cookieByName(login, accessTokenCookie).Value

	rec := ts.do(t, http.MethodGet, "/auth/current-user", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAuthMissingToken(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/auth/current-user", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env["success"] != false {
		t.Errorf("success = %v, want false", env["success"])
	}
}

func TestRequireAuthGarbageToken(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/auth/current-user", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-jwt")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsRefreshTokenAsAccess(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "a@x.com", "secret123")
	login := ts.login(t, "alice", "secret123")
	refresh := cookieByName(login, refreshTokenCookie).Value

	rec := ts.do(t, http.MethodGet, "/auth/current-user", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+refresh)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
