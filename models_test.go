package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/auth"
)

func TestUserIsLockedOut(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name    string
		enabled bool
		expires *time.Time
		want    bool
	}{
		{"lockout disabled", false, &future, false},
		{"lockout active", true, &future, true},
		{"lockout expired", true, &past, false},
		{"flag without expiry is not a lockout", true, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &auth.User{
				LockoutEnabled: tt.enabled,
				LockoutExpires: tt.expires,
			}

			assert.Equal(t, tt.want, u.IsLockedOut(now))
		})
	}

	t.Run("nil receiver", func(t *testing.T) {
		var u *auth.User
		assert.False(t, u.IsLockedOut(now))
	})
}

func TestUserIsDeleted(t *testing.T) {
	deletedAt := time.Now()

	assert.False(t, (&auth.User{}).IsDeleted())
	assert.True(t, (&auth.User{DeletedAt: &deletedAt}).IsDeleted())

	var u *auth.User
	assert.False(t, u.IsDeleted())
}

func TestUserCanAuthenticate(t *testing.T) {
	tests := []struct {
		name  string
		roles auth.RoleList
		want  bool
	}{
		{"club official", auth.RoleList{auth.RoleClubOfficial}, true},
		{"player", auth.RoleList{auth.RolePlayer}, true},
		{"admin", auth.RoleList{auth.RoleAdmin}, true},
		{"parent", auth.RoleList{auth.RoleParent}, false},
		{"supporter", auth.RoleList{auth.RoleSupporter}, false},
		{"supporter with player", auth.RoleList{auth.RoleSupporter, auth.RolePlayer}, true},
		{"no roles", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &auth.User{Roles: tt.roles}
			assert.Equal(t, tt.want, u.CanAuthenticate())
		})
	}
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Jordan Reyes", (&auth.User{FirstName: "Jordan", LastName: "Reyes"}).FullName())
	assert.Equal(t, "Jordan", (&auth.User{FirstName: "Jordan"}).FullName())
	assert.Equal(t, "Reyes", (&auth.User{LastName: "Reyes"}).FullName())
	assert.Equal(t, "", (&auth.User{}).FullName())
}

func TestRoleList(t *testing.T) {
	t.Run("round trips through the driver value", func(t *testing.T) {
		roles := auth.RoleList{auth.RolePlayer, auth.RoleParent}

		value, err := roles.Value()
		require.NoError(t, err)
		assert.Equal(t, `["PLAYER","PARENT"]`, value)

		var decoded auth.RoleList
		require.NoError(t, decoded.Scan(value))
		assert.Equal(t, roles, decoded)
	})

	t.Run("nil list stores an empty array", func(t *testing.T) {
		var roles auth.RoleList

		value, err := roles.Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", value)
	})

	t.Run("scan accepts bytes and nil", func(t *testing.T) {
		var roles auth.RoleList
		require.NoError(t, roles.Scan([]byte(`["ADMIN"]`)))
		assert.True(t, roles.Has(auth.RoleAdmin))

		require.NoError(t, roles.Scan(nil))
		assert.Empty(t, roles)
	})

	t.Run("scan rejects unsupported column types", func(t *testing.T) {
		var roles auth.RoleList
		assert.Error(t, roles.Scan(42))
	})

	t.Run("membership helpers", func(t *testing.T) {
		roles := auth.RoleList{auth.RoleSupporter}

		assert.True(t, roles.Has(auth.RoleSupporter))
		assert.False(t, roles.Has(auth.RoleAdmin))
		assert.True(t, roles.HasAny(auth.RoleAdmin, auth.RoleSupporter))
		assert.False(t, roles.HasAny(auth.LoginEligibleRoles...))
	})
}

func TestFeatureList(t *testing.T) {
	features := auth.FeatureList{auth.FeaturePlayerInsights}

	value, err := features.Value()
	require.NoError(t, err)

	var decoded auth.FeatureList
	require.NoError(t, decoded.Scan(value))

	assert.True(t, decoded.Has(auth.FeaturePlayerInsights))
	assert.False(t, decoded.Has(auth.FeatureSurveys))
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []auth.UserRole{
		auth.RoleClubOfficial,
		auth.RolePlayer,
		auth.RoleAdmin,
		auth.RoleParent,
		auth.RoleSupporter,
	} {
		assert.True(t, auth.IsValidRole(role), role)
	}

	assert.False(t, auth.IsValidRole("SUPERUSER"))
	assert.False(t, auth.IsValidRole(""))
}
