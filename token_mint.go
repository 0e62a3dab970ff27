package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// Session and verification lifetimes mirror the product contract: a short
// session unless the user opted into an extended one, and a single day to
// act on a verification email.
const (
	SessionTokenTTL         = 10 * time.Hour
	ExtendedSessionTokenTTL = 7 * 24 * time.Hour
	VerificationTokenTTL    = 24 * time.Hour
)

type tokenDefaults struct {
	issuer   string
	audience jwt.ClaimStrings
}

type tokenDefaultsProvider interface {
	tokenDefaults() tokenDefaults
}

// MintSessionToken issues the API session credential for an authenticated
// user. rememberMe selects the extended lifetime.
func MintSessionToken(tokenService TokenService, user *User, rememberMe bool) (string, time.Time, error) {
	ttl := SessionTokenTTL
	if rememberMe {
		ttl = ExtendedSessionTokenTTL
	}

	return mintUserToken(tokenService, user, ttl, nil, rememberMe)
}

// MintVerificationToken issues the credential embedded in verification
// emails. It is scoped so it can never be replayed as an API session.
func MintVerificationToken(tokenService TokenService, user *User) (string, time.Time, error) {
	return mintUserToken(tokenService, user, VerificationTokenTTL, []string{ScopeEmailVerify}, false)
}

func mintUserToken(tokenService TokenService, user *User, ttl time.Duration, scopes []string, rememberMe bool) (string, time.Time, error) {
	if tokenService == nil {
		return "", time.Time{}, goerrors.New("token service is required", goerrors.CategoryBadInput)
	}
	if user == nil {
		return "", time.Time{}, goerrors.New("user is required", goerrors.CategoryBadInput)
	}

	var issuer string
	var audience jwt.ClaimStrings
	if defaultsProvider, ok := tokenService.(tokenDefaultsProvider); ok {
		defaults := defaultsProvider.tokenDefaults()
		issuer = defaults.issuer
		audience = defaults.audience
	}

	issuedAt := time.Now()
	expiresAt := issuedAt.Add(ttl)

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID.String(),
			Audience:  audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:        user.ID.String(),
		UserEmail:  user.Email,
		UserRoles:  []string(user.Roles),
		RememberMe: rememberMe,
	}

	if len(scopes) > 0 {
		claims.Scopes = append([]string(nil), scopes...)
	}

	ensureTokenID(&claims.RegisteredClaims)

	token, err := tokenService.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}
