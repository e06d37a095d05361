package httpapi

import (
	"errors"
	"fmt"
	netmail "net/mail"
	"net/http"
	"strings"

	"taskhub.org/internal/audit"
	"taskhub.org/internal/auth"
	"taskhub.org/internal/obs"
)

const minPasswordLength = 8

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var problems []string
	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		problems = append(problems, "username is required")
	case len(username) < 3:
		problems = append(problems, "username must be at least 3 characters")
	case username != strings.ToLower(username):
		problems = append(problems, "username must be lowercase")
	}
	problems = append(problems, emailProblems(req.Email)...)
	problems = append(problems, passwordProblems(req.Password)...)
	if len(problems) > 0 {
		a.writeError(w, r, http.StatusUnprocessableEntity, "validation failed", problems)
		return
	}

	pub, err := a.svc.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	obs.CountRegistration()
	_ = audit.LogEvent(r.Context(), "auth.user.registered", map[string]any{
		"user_id": pub.ID, "username": pub.Username,
	})
	writeSuccess(w, http.StatusCreated,
		"user registered successfully and verification email has been sent",
		map[string]any{"user": pub})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		a.writeError(w, r, http.StatusUnprocessableEntity, "validation failed", []string{"password is required"})
		return
	}

	pair, pub, err := a.svc.Login(r.Context(), auth.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrNotFound) {
			obs.CountLogin("invalid")
		} else {
			obs.CountLogin("error")
		}
		a.writeServiceError(w, r, err)
		return
	}

	obs.CountLogin("ok")
	_ = audit.LogEvent(r.Context(), "auth.user.login", map[string]any{
		"user_id": pub.ID, "username": pub.Username,
	})
	a.setAuthCookies(w, pair)
	writeSuccess(w, http.StatusOK, "user logged in successfully", map[string]any{
		"user":          pub,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	if err := a.svc.Logout(r.Context(), principal.ID); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.user.logout", nil)
	a.clearAuthCookies(w)
	writeSuccess(w, http.StatusOK, "user logged out successfully", nil)
}

func (a *API) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if err := a.svc.VerifyEmail(r.Context(), token); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.email.verified", nil)
	writeSuccess(w, http.StatusOK, "email verified successfully", map[string]any{
		"is_email_verified": true,
	})
}

func (a *API) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	if err := a.svc.ResendVerification(r.Context(), principal.ID); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "verification email has been sent", nil)
}

func (a *API) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			a.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	pair, pub, err := a.svc.Refresh(r.Context(), refreshTokenFromRequest(r, req.RefreshToken))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSessionRevoked):
			obs.CountRefresh("revoked")
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUnauthorized):
			obs.CountRefresh("invalid")
		}
		a.writeServiceError(w, r, err)
		return
	}

	obs.CountRefresh("ok")
	_ = audit.LogEvent(r.Context(), "auth.token.refreshed", map[string]any{
		"user_id": pub.ID,
	})
	a.setAuthCookies(w, pair)
	writeSuccess(w, http.StatusOK, "tokens refreshed", map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if problems := emailProblems(req.Email); len(problems) > 0 {
		a.writeError(w, r, http.StatusUnprocessableEntity, "validation failed", problems)
		return
	}

	if err := a.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	// The response is identical whether or not the account exists.
	writeSuccess(w, http.StatusOK, "if that email exists, a password reset link has been sent", nil)
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if problems := passwordProblems(req.Password); len(problems) > 0 {
		a.writeError(w, r, http.StatusUnprocessableEntity, "validation failed", problems)
		return
	}

	if err := a.svc.ResetPassword(r.Context(), r.PathValue("token"), req.Password); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.password.reset", nil)
	writeSuccess(w, http.StatusOK, "password reset successfully", nil)
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if problems := passwordProblems(req.Password); len(problems) > 0 {
		a.writeError(w, r, http.StatusUnprocessableEntity, "validation failed", problems)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	if err := a.svc.ChangePassword(r.Context(), principal.ID, req.Password); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.password.changed", nil)
	writeSuccess(w, http.StatusOK, "password changed successfully", nil)
}

func (a *API) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	pub, err := a.svc.CurrentUser(r.Context(), principal.ID)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "user found", map[string]any{"user": pub})
}

func emailProblems(email string) []string {
	email = strings.TrimSpace(email)
	if email == "" {
		return []string{"email is required"}
	}
	addr, err := netmail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return []string{"email is invalid"}
	}
	return nil
}

func passwordProblems(password string) []string {
	if strings.TrimSpace(password) == "" {
		return []string{"password is required"}
	}
	if len(password) < minPasswordLength {
		return []string{fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	return nil
}
