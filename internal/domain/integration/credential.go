package integration

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/morganchorlton3/order-tracker/internal/domain/order"
)

// AuthorizationState is the transient record created when an OAuth
// authorization flow starts. It holds the CSRF state token and the PKCE code
// verifier until the provider redirects back. A state is single-use: it is
// deleted when the callback consumes it, so a replayed callback finds nothing.
type AuthorizationState struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key"`
	State        string       `gorm:"type:varchar(128);not null;uniqueIndex"`
	CodeVerifier string       `gorm:"type:varchar(128);not null"`
	Source       order.Source `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time    `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (AuthorizationState) TableName() string {
	return "authorization_states"
}

// NewAuthorizationState generates a fresh CSRF state and PKCE verifier pair
func NewAuthorizationState(source order.Source) (*AuthorizationState, error) {
	state, err := randomURLToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	// 32 random bytes base64url-encode to a 43-character verifier, the
	// minimum length RFC 7636 allows.
	verifier, err := randomURLToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}

	return &AuthorizationState{
		ID:           uuid.New(),
		State:        state,
		CodeVerifier: verifier,
		Source:       source,
		CreatedAt:    time.Now(),
	}, nil
}

// CodeChallenge derives the S256 code challenge from the stored verifier:
// the base64url-encoded (unpadded) SHA-256 digest of the verifier.
func (s *AuthorizationState) CodeChallenge() string {
	return ChallengeS256(s.CodeVerifier)
}

// ChallengeS256 computes the PKCE S256 challenge for a code verifier
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// randomURLToken returns n cryptographically random bytes, base64url encoded
// without padding
func randomURLToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// OAuthCredential holds the OAuth tokens for one marketplace source. At most
// one live credential exists per source; a successful authorization replaces
// the prior one.
type OAuthCredential struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key"`
	Source       order.Source `gorm:"type:varchar(20);not null;uniqueIndex"`
	AccessToken  string       `gorm:"type:text;not null"`
	RefreshToken string       `gorm:"type:text"`
	TokenType    string       `gorm:"type:varchar(40);not null;default:'Bearer'"`
	ExpiresAt    *time.Time
	ShopID       string    `gorm:"type:varchar(100)"`
	ShopName     string    `gorm:"type:varchar(200)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (OAuthCredential) TableName() string {
	return "oauth_credentials"
}

// IsExpired reports whether the access token has passed its expiry. A
// credential without an expiry never expires.
func (c *OAuthCredential) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
