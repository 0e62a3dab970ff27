package auth_test

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/pitchside/auth"
)

// MockUsers implements the login-flow slice of auth.Users. The embedded
// interface covers the generic repository surface; calling an un-stubbed
// method panics, which is the failure we want in tests.
type MockUsers struct {
	mock.Mock
	auth.Users
}

func (m *MockUsers) GetLoginCandidate(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepositoryManager implements auth.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Users() auth.Users {
	args := m.Called()
	return args.Get(0).(auth.Users)
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationEmail(ctx context.Context, msg auth.VerificationEmail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockPermissionResolver implements auth.PermissionResolver
type MockPermissionResolver struct {
	mock.Mock
}

func (m *MockPermissionResolver) ResolvePermissions(ctx context.Context, user *auth.User) (auth.PermissionSet, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(auth.PermissionSet), args.Error(1)
}

// testConfig implements auth.Config
type testConfig struct {
	signingKey string
	issuer     string
	audience   []string
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key",
		issuer:     "test-issuer",
		audience:   []string{"test:audience"},
	}
}

func (c testConfig) GetSigningKey() string { return c.signingKey }
func (c testConfig) GetIssuer() string     { return c.issuer }
func (c testConfig) GetAudience() []string { return c.audience }

var (
	testHashOnce sync.Once
	testHash     string
)

// testPasswordHash returns a hash of "password123" computed once; the cost
// factor makes per-test hashing too slow.
func testPasswordHash() string {
	testHashOnce.Do(func() {
		h, err := auth.HashPassword("password123")
		if err != nil {
			panic(err)
		}
		testHash = h
	})
	return testHash
}

func verifiedUser() *auth.User {
	return &auth.User{
		ID:            uuid.New(),
		Email:         "player@example.com",
		FirstName:     "Jordan",
		LastName:      "Reyes",
		PasswordHash:  testPasswordHash(),
		Roles:         auth.RoleList{auth.RolePlayer},
		Activated:     true,
		EmailVerified: true,
		Onboarded:     true,
	}
}
