package auth

import (
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the decoded, transport-agnostic view of a session token.
type SessionObject struct {
	UserID         string         `json:"user_id,omitempty"`
	Email          string         `json:"email,omitempty"`
	Roles          []string       `json:"roles,omitempty"`
	Audience       []string       `json:"audience,omitempty"`
	Issuer         string         `json:"issuer,omitempty"`
	IssuedAt       *time.Time     `json:"issued_at,omitempty"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetRoles() []string {
	return s.Roles
}

func (s *SessionObject) GetAudience() []string {
	return s.Audience
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetData() map[string]any {
	return s.Data
}

// sessionFromAuthClaims converts validated claims into a SessionObject.
// Verification-only tokens are rejected: they never grant an API session.
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	if claims.HasScope(ScopeEmailVerify) {
		return nil, ErrUnableToDecodeSession
	}

	session := &SessionObject{
		UserID: claims.UserID(),
		Email:  claims.Email(),
		Roles:  claims.Roles(),
	}

	if issued := claims.IssuedAt(); !issued.IsZero() {
		issuedAt := issued
		session.IssuedAt = &issuedAt
	}

	if expires := claims.Expires(); !expires.IsZero() {
		expirationDate := expires
		session.ExpirationDate = &expirationDate
	}

	if jc, ok := claims.(*JWTClaims); ok {
		session.Issuer = jc.RegisteredClaims.Issuer
		session.Audience = jc.RegisteredClaims.Audience
	}

	return session, nil
}
