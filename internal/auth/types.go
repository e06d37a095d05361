package auth

import "time"

// Roles accepted at registration. The role is recorded but grants no elevated
// capability inside this service.
const (
	RoleUser         = "user"
	RoleProjectAdmin = "project_admin"
	RoleAdmin        = "admin"
)

// DefaultAvatarURL is assigned to principals created without an avatar.
const DefaultAvatarURL = "https://placehold.co/200?text=user&font=oswald"

// User is the persisted principal record. Secret and token-digest fields never
// leave the service; handlers only ever see the Public projection.
type User struct {
	ID        string `bson:"_id,omitempty"`
	Username  string `bson:"username"`
	Email     string `bson:"email"`
	FullName  string `bson:"full_name,omitempty"`
	AvatarURL string `bson:"avatar_url,omitempty"`
	Role      string `bson:"role"`

	PasswordHash string `bson:"password_hash"`

	IsEmailVerified    bool      `bson:"is_email_verified"`
	VerificationDigest string    `bson:"email_verification_digest,omitempty"`
	VerificationExpiry time.Time `bson:"email_verification_expiry,omitempty"`

	ResetDigest string    `bson:"forgot_password_digest,omitempty"`
	ResetExpiry time.Time `bson:"forgot_password_expiry,omitempty"`

	// RefreshDigest holds the digest of the single refresh token currently
	// valid for this principal. Overwriting it revokes the previous session.
	RefreshDigest string `bson:"refresh_token_digest,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Public is the projection of a principal safe to return to callers.
type Public struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name,omitempty"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Public strips password and token material from the record.
func (u *User) Public() Public {
	return Public{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FullName:        u.FullName,
		AvatarURL:       u.AvatarURL,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
