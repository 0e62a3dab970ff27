package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel           `bun:"table:users,alias:usr"`
	ID                      uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email                   string      `bun:"email,notnull,unique" json:"email,omitempty"`
	Username                string      `bun:"username" json:"username,omitempty"`
	FirstName               string      `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName                string      `bun:"last_name,notnull" json:"last_name,omitempty"`
	PasswordHash            string      `bun:"password_hash" json:"password_hash,omitempty"`
	Phone                   string      `bun:"phone_number" json:"phone_number,omitempty"`
	Picture                 string      `bun:"picture" json:"picture,omitempty"`
	Roles                   RoleList    `bun:"roles,notnull" json:"roles,omitempty"`
	Features                FeatureList `bun:"features" json:"features,omitempty"`
	Activated               bool        `bun:"activated" json:"activated,omitempty"`
	EmailVerified           bool        `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	Onboarded               bool        `bun:"onboarded" json:"onboarded,omitempty"`
	LockoutEnabled          bool        `bun:"lockout_enabled" json:"lockout_enabled,omitempty"`
	LockoutExpires          *time.Time  `bun:"lockout_expires,nullzero" json:"lockout_expires,omitempty"`
	AccessFailedCount       int         `bun:"access_failed_count" json:"access_failed_count,omitempty"`
	EmailVerificationToken  string      `bun:"email_verification_token" json:"email_verification_token,omitempty"`
	VerificationEmailSentAt *time.Time  `bun:"verification_email_sent_at,nullzero" json:"verification_email_sent_at,omitempty"`
	LastLoginAt             *time.Time  `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt               *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt               *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt               *time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsLockedOut reports whether a lockout is active at the given instant.
// A lockout is active only while the flag is set and the expiry lies in the
// future; a nil expiry means no lockout regardless of the flag.
func (u *User) IsLockedOut(now time.Time) bool {
	if u == nil || !u.LockoutEnabled || u.LockoutExpires == nil {
		return false
	}

	return u.LockoutExpires.After(now)
}

// IsDeleted reports whether the account has been soft deleted.
func (u *User) IsDeleted() bool {
	return u != nil && u.DeletedAt != nil
}

// CanAuthenticate reports whether the account holds at least one role
// permitted to log in through the basic auth path.
func (u *User) CanAuthenticate() bool {
	return u != nil && u.Roles.HasAny(LoginEligibleRoles...)
}

// FullName joins first and last name for notification templates.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}

	if u.FirstName == "" {
		return u.LastName
	}

	if u.LastName == "" {
		return u.FirstName
	}

	return u.FirstName + " " + u.LastName
}
