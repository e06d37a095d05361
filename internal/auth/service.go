// Package auth implements the authentication core: credential verification,
// token issuance and rotation, and the registration, verification and
// password-recovery flows.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskhub.org/internal/ids"
	"taskhub.org/internal/mail"
)

// Service orchestrates the authentication flows over a UserStore, an Issuer
// and an outbound mail sender. Mail delivery is at-least-attempt: a failed
// dispatch never rolls back the flow that requested it.
type Service struct {
	store        UserStore
	tokens       *Issuer
	mailer       mail.Sender
	baseURL      string
	singleUseTTL time.Duration
	now          func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithSingleUseTTL overrides the verification/reset token window.
func WithSingleUseTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.singleUseTTL = ttl
		}
	}
}

// NewService constructs the auth service. baseURL is the public origin
// embedded into verification and reset links.
func NewService(store UserStore, tokens *Issuer, mailer mail.Sender, baseURL string, opts ...ServiceOption) *Service {
	s := &Service{
		store:        store,
		tokens:       tokens,
		mailer:       mailer,
		baseURL:      strings.TrimRight(baseURL, "/"),
		singleUseTTL: 20 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries the registration request fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

// Register creates an unverified principal and dispatches the verification
// email. A duplicate username or email yields ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Public, error) {
	username := normalize(in.Username)
	email := normalize(in.Email)
	role := normalize(in.Role)
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleProjectAdmin && role != RoleAdmin {
		return Public{}, ErrInvalidInput
	}

	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return Public{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Public{}, err
	}
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return Public{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Public{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return Public{}, ErrInvalidInput
	}
	rawToken, digest, err := NewSingleUseToken()
	if err != nil {
		return Public{}, err
	}

	now := s.now().UTC()
	user := &User{
		ID:                 ids.New(),
		Username:           username,
		Email:              email,
		FullName:           strings.TrimSpace(in.FullName),
		AvatarURL:          DefaultAvatarURL,
		Role:               role,
		PasswordHash:       hash,
		IsEmailVerified:    false,
		VerificationDigest: digest,
		VerificationExpiry: now.Add(s.singleUseTTL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	// The store's uniqueness constraint is authoritative; the lookups above
	// only provide a friendlier fast path for the common case.
	if err := s.store.Create(ctx, user); err != nil {
		return Public{}, err
	}

	msg := mail.Verification(user.Email, user.Username, s.verifyURL(rawToken))
	_ = s.mailer.Send(ctx, msg)

	return user.Public(), nil
}

// LoginInput identifies a principal by username or email plus password.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Login verifies credentials and mints a fresh token pair. The new refresh
// token replaces any previously stored one, revoking the prior session.
func (s *Service) Login(ctx context.Context, in LoginInput) (TokenPair, Public, error) {
	username := normalize(in.Username)
	email := normalize(in.Email)
	if username == "" && email == "" {
		return TokenPair{}, Public{}, ErrNotFound
	}

	var (
		user *User
		err  error
	)
	if username != "" {
		user, err = s.store.FindByUsername(ctx, username)
	} else {
		user, err = s.store.FindByEmail(ctx, email)
	}
	if err != nil {
		return TokenPair{}, Public{}, err
	}

	if !CheckPassword(user.PasswordHash, in.Password) {
		return TokenPair{}, Public{}, ErrInvalidCredentials
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return TokenPair{}, Public{}, err
	}
	user.RefreshDigest = DigestToken(pair.RefreshToken)
	user.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, user); err != nil {
		return TokenPair{}, Public{}, err
	}
	return pair, user.Public(), nil
}

// Logout clears the stored refresh token. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if user.RefreshDigest == "" {
		return nil
	}
	user.RefreshDigest = ""
	user.UpdatedAt = s.now().UTC()
	return s.store.Update(ctx, user)
}

// VerifyEmail consumes a raw verification token. Clearing the stored digest on
// success makes the token single-use by construction.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ErrTokenInvalidOrExpired
	}
	user, err := s.store.FindByVerificationDigest(ctx, DigestToken(rawToken), s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return err
	}
	user.VerificationDigest = ""
	user.VerificationExpiry = time.Time{}
	user.IsEmailVerified = true
	user.UpdatedAt = s.now().UTC()
	return s.store.Update(ctx, user)
}

// ResendVerification issues a fresh verification token, invalidating any prior
// one, and dispatches a new email.
func (s *Service) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}
	rawToken, digest, err := NewSingleUseToken()
	if err != nil {
		return err
	}
	user.VerificationDigest = digest
	user.VerificationExpiry = s.now().UTC().Add(s.singleUseTTL)
	user.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, user); err != nil {
		return err
	}
	_ = s.mailer.Send(ctx, mail.Verification(user.Email, user.Username, s.verifyURL(rawToken)))
	return nil
}

// Refresh rotates a refresh token and mints a new pair. The presented token
// must be well-formed, unexpired, and equal to the one currently recorded on
// the principal; rotation is a compare-and-swap so two concurrent calls with
// the same token cannot both succeed.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (TokenPair, Public, error) {
	rawRefresh = strings.TrimSpace(rawRefresh)
	if rawRefresh == "" {
		return TokenPair{}, Public{}, ErrUnauthorized
	}
	claims, err := s.tokens.VerifyRefresh(rawRefresh)
	if err != nil {
		return TokenPair{}, Public{}, ErrInvalidToken
	}
	user, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, Public{}, ErrInvalidToken
		}
		return TokenPair{}, Public{}, err
	}

	presented := DigestToken(rawRefresh)
	if !DigestEqual(user.RefreshDigest, presented) {
		return TokenPair{}, Public{}, ErrSessionRevoked
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return TokenPair{}, Public{}, err
	}
	err = s.store.SwapRefreshDigest(ctx, user.ID, presented, DigestToken(pair.RefreshToken), s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, Public{}, ErrSessionRevoked
		}
		return TokenPair{}, Public{}, err
	}
	return pair, user.Public(), nil
}

// ForgotPassword issues a reset token and emails a reset link when the email
// matches a principal. The outcome is identical either way so callers cannot
// probe for account existence.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalize(email)
	if email == "" {
		return ErrInvalidInput
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	rawToken, digest, err := NewSingleUseToken()
	if err != nil {
		return err
	}
	user.ResetDigest = digest
	user.ResetExpiry = s.now().UTC().Add(s.singleUseTTL)
	user.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, user); err != nil {
		return err
	}
	_ = s.mailer.Send(ctx, mail.PasswordReset(user.Email, user.Username, s.resetURL(rawToken)))
	return nil
}

// ResetPassword consumes a raw reset token and replaces the password hash.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ErrTokenInvalidOrExpired
	}
	user, err := s.store.FindByResetDigest(ctx, DigestToken(rawToken), s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return ErrInvalidInput
	}
	user.PasswordHash = hash
	user.ResetDigest = ""
	user.ResetExpiry = time.Time{}
	user.UpdatedAt = s.now().UTC()
	return s.store.Update(ctx, user)
}

// ChangePassword replaces the password hash for an authenticated principal.
// No new tokens are issued; the current session stays valid.
func (s *Service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return ErrInvalidInput
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now().UTC()
	return s.store.Update(ctx, user)
}

// CurrentUser returns the public projection for an authenticated principal.
func (s *Service) CurrentUser(ctx context.Context, userID string) (Public, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return Public{}, err
	}
	return user.Public(), nil
}

// Authenticate resolves an access token to a principal for the request gate.
// Any verification failure, including expiry, fails closed with
// ErrUnauthorized; the gate never attempts a refresh.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (Public, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return Public{}, ErrUnauthorized
	}
	user, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Public{}, ErrUnauthorized
		}
		return Public{}, err
	}
	return user.Public(), nil
}

func (s *Service) mintPair(user *User) (TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *Service) verifyURL(rawToken string) string {
	return s.baseURL + "/auth/verify-email/" + rawToken
}

func (s *Service) resetURL(rawToken string) string {
	return s.baseURL + "/auth/reset-password/" + rawToken
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
