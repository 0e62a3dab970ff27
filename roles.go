package auth

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// UserRole is a role granted to a user account
type UserRole = string

const (
	// RoleClubOfficial manages a club (fixtures, squads, billing)
	RoleClubOfficial UserRole = "CLUB_OFFICIAL"
	// RolePlayer is a registered player account
	RolePlayer UserRole = "PLAYER"
	// RoleAdmin is a platform administrator
	RoleAdmin UserRole = "ADMIN"
	// RoleParent is a guardian account linked to a player
	RoleParent UserRole = "PARENT"
	// RoleSupporter is a follower account with read-only access
	RoleSupporter UserRole = "SUPPORTER"
)

// LoginEligibleRoles are the roles permitted to authenticate through the
// basic login path. Every other role authenticates through flows outside
// this package.
var LoginEligibleRoles = []UserRole{RoleClubOfficial, RolePlayer, RoleAdmin}

// IsValidRole checks the role against the known set
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleClubOfficial, RolePlayer, RoleAdmin, RoleParent, RoleSupporter:
		return true
	default:
		return false
	}
}

// RoleList is the set of roles on a user record. It is stored as a JSON
// array so the same column shape works across dialects.
type RoleList []UserRole

// Has checks membership of a single role
func (l RoleList) Has(role UserRole) bool {
	for _, r := range l {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny checks membership of any of the given roles
func (l RoleList) HasAny(roles ...UserRole) bool {
	for _, role := range roles {
		if l.Has(role) {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer
func (l RoleList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}

	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// Scan implements sql.Scanner
func (l *RoleList) Scan(src any) error {
	return scanJSONList((*[]string)(l), src)
}

// Feature is a product feature enabled on an account
type Feature = string

const (
	// FeaturePlayerInsights unlocks performance tracking for players
	FeaturePlayerInsights Feature = "PLAYER_INSIGHTS"
	// FeatureSurveys unlocks wellness surveys
	FeatureSurveys Feature = "SURVEYS"
)

// FeatureList is the set of product features on a user record, stored as a
// JSON array like RoleList.
type FeatureList []Feature

// Has checks membership of a single feature
func (l FeatureList) Has(feature Feature) bool {
	for _, f := range l {
		if f == feature {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer
func (l FeatureList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}

	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// Scan implements sql.Scanner
func (l *FeatureList) Scan(src any) error {
	return scanJSONList((*[]string)(l), src)
}

func scanJSONList(dst *[]string, src any) error {
	if src == nil {
		*dst = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported list column type %T", src)
	}

	if len(data) == 0 {
		*dst = nil
		return nil
	}

	return json.Unmarshal(data, dst)
}
