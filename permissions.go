package auth

import "context"

// PermissionSet carries the onboarding obligations attached to an account.
// The verification email deep-links into the insights flow when either
// obligation is outstanding.
type PermissionSet struct {
	RequiredPlayerInfo bool `json:"required_player_info"`
	RequiredSurvey     bool `json:"required_survey"`
}

// PermissionResolver computes the outstanding obligations for a user
type PermissionResolver interface {
	ResolvePermissions(ctx context.Context, user *User) (PermissionSet, error)
}

// featurePermissionResolver derives obligations from role and feature
// membership on the record itself.
type featurePermissionResolver struct{}

// NewPermissionResolver returns the default PermissionResolver
func NewPermissionResolver() PermissionResolver {
	return featurePermissionResolver{}
}

func (featurePermissionResolver) ResolvePermissions(ctx context.Context, user *User) (PermissionSet, error) {
	set := PermissionSet{}
	if user == nil {
		return set, nil
	}

	if user.Roles.Has(RolePlayer) && user.Features.Has(FeaturePlayerInsights) && !user.Onboarded {
		set.RequiredPlayerInfo = true
	}

	if user.Features.Has(FeatureSurveys) {
		set.RequiredSurvey = true
	}

	return set, nil
}
