package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestRoot(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env["success"] != true {
		t.Errorf("success = %v, want true", env["success"])
	}
}

func TestRootOnlyMatchesExactPath(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/no-such-path", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthcheck(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if data := dataField(t, decodeEnvelope(t, rec)); data["version"] != "test" {
		t.Errorf("version = %v, want test", data["version"])
	}
}

func TestReadyWithoutProbe(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestReadyProbeFailure(t *testing.T) {
	probe := ReadyProbe{Ping: func(context.Context) error {
		return errors.New("mongo is down")
	}}
	ts := newTestServerWithProbe(t, probe)

	rec := ts.do(t, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
