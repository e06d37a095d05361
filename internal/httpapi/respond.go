package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"

	"taskhub.org/internal/audit"
	"taskhub.org/internal/auth"
)

// envelope is the uniform response shape. Failures always carry an errors
// array, even when empty; the stack field appears only outside production.
type envelope struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message,omitempty"`
	Data      any      `json:"data,omitempty"`
	Errors    []string `json:"errors"`
	RequestID string   `json:"request_id,omitempty"`
	Stack     string   `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, map[string]any{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, code int, message string, errs []string) {
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, code, envelope{
		Message:   message,
		Errors:    errs,
		RequestID: audit.RequestIDFromContext(r.Context()),
	})
}

// writeServiceError converts a domain error into the boundary envelope.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrAlreadyExists):
		a.writeError(w, r, http.StatusConflict, "user already exists", nil)
	case errors.Is(err, auth.ErrAlreadyVerified):
		a.writeError(w, r, http.StatusConflict, "email is already verified", nil)
	case errors.Is(err, auth.ErrNotFound):
		a.writeError(w, r, http.StatusNotFound, "user does not exist", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		a.writeError(w, r, http.StatusBadRequest, "password is incorrect", nil)
	case errors.Is(err, auth.ErrTokenInvalidOrExpired):
		a.writeError(w, r, http.StatusBadRequest, "invalid or expired token", nil)
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrSessionRevoked):
		a.writeError(w, r, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, auth.ErrInvalidInput):
		a.writeError(w, r, http.StatusUnprocessableEntity, "invalid input", nil)
	default:
		env := envelope{
			Message:   "internal error",
			Errors:    []string{},
			RequestID: audit.RequestIDFromContext(r.Context()),
		}
		if !a.production {
			env.Errors = []string{err.Error()}
			env.Stack = string(debug.Stack())
		}
		writeJSON(w, http.StatusInternalServerError, env)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
