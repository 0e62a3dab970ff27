package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// AuthBasicInput is the basic login payload
type AuthBasicInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// ResponseError is the wire shape of a single auth failure
type ResponseError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// AuthResponse is the login result: either a user with a session token or a
// non-empty error list, never both. The fields stay unexported so the only
// way to build one is through the constructors, which keep the invariant.
type AuthResponse struct {
	user  *User
	token string
	errs  []ResponseError
}

// NewAuthSuccess builds the success arm of the response union
func NewAuthSuccess(user *User, token string) *AuthResponse {
	return &AuthResponse{user: user, token: token}
}

// NewAuthFailure builds the failure arm of the response union
func NewAuthFailure(errs ...ResponseError) *AuthResponse {
	return &AuthResponse{errs: errs}
}

// Ok reports whether the response is the success arm
func (r *AuthResponse) Ok() bool {
	return len(r.errs) == 0
}

// User returns the authenticated user, nil on failure
func (r *AuthResponse) User() *User {
	if !r.Ok() {
		return nil
	}
	return r.user
}

// Token returns the session token, empty on failure
func (r *AuthResponse) Token() string {
	if !r.Ok() {
		return ""
	}
	return r.token
}

// Errors returns the failure list, nil on success
func (r *AuthResponse) Errors() []ResponseError {
	return r.errs
}

func responseErrorFrom(err error) ResponseError {
	message := "unable to process login"
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Message != "" {
		message = rich.Message
	}

	return ResponseError{
		Message: message,
		Code:    TextCode(err),
	}
}

// Auther orchestrates the basic login flow
type Auther struct {
	repo         RepositoryManager
	validator    *LoginValidator
	tokenService TokenService
	notifier     *VerificationNotifier
	logger       Logger
}

// NewAuthenticator returns a new Authenticator. It fails on a missing
// signing key; treat that error as fatal at startup.
func NewAuthenticator(repo RepositoryManager, opts Config) (*Auther, error) {
	tokenService, err := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)
	if err != nil {
		return nil, err
	}

	return &Auther{
		repo:         repo,
		validator:    NewLoginValidator(repo.Users()),
		tokenService: tokenService,
		notifier:     NewVerificationNotifier(repo, tokenService, nil, nil),
		logger:       defLogger{},
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
		s.validator.WithLogger(logger)
		s.notifier.WithLogger(logger)
	}
	return s
}

// WithMailer replaces the notifier's mail transport.
func (s *Auther) WithMailer(mailer Mailer) *Auther {
	if mailer != nil {
		s.notifier.mailer = mailer
	}
	return s
}

// WithPermissionResolver replaces the notifier's permission lookup.
func (s *Auther) WithPermissionResolver(resolver PermissionResolver) *Auther {
	if resolver != nil {
		s.notifier.permissions = resolver
	}
	return s
}

// WithNotifier replaces the whole verification side path.
func (s *Auther) WithNotifier(notifier *VerificationNotifier) *Auther {
	if notifier != nil {
		s.notifier = notifier
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Notifier returns the verification side path, mainly so callers can Drain
// it on shutdown.
func (s *Auther) Notifier() *VerificationNotifier {
	return s.notifier
}

// AuthBasic runs the end-to-end login cycle: candidate lookup, ordered
// credential checks, token issuance and last-login tracking on success, the
// verification side path on an unverified address. It always returns a
// response union, never an error: every failure degrades to the error list.
func (s *Auther) AuthBasic(ctx context.Context, input AuthBasicInput) *AuthResponse {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.repo.Users().GetLoginCandidate(ctx, email)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			s.logger.Error("AuthBasic candidate lookup for %s failed: %v", email, err)
			return NewAuthFailure(ResponseError{
				Message: "unable to process login",
				Code:    TextCodeInternal,
			})
		}
		// Missing account degrades to the validator's first check so the
		// failure shape is uniform.
		user = nil
	}

	if err := s.validator.Validate(ctx, user, input.Password); err != nil {
		if IsEmailUnverified(err) {
			s.notifier.Dispatch(user)
		}

		s.logger.Debug("AuthBasic rejected %s with %s", email, TextCode(err))
		return NewAuthFailure(responseErrorFrom(err))
	}

	token, _, err := MintSessionToken(s.tokenService, user, input.RememberMe)
	if err != nil {
		s.logger.Error("AuthBasic token mint for user %s failed: %v", user.ID, err)
		return NewAuthFailure(responseErrorFrom(err))
	}

	loggedIn, err := s.repo.Users().TrackSuccessfulLogin(ctx, user)
	if err != nil {
		// The credential check already passed; a tracking fault must not
		// reject the login.
		s.logger.Error("AuthBasic failed to track successful login for user %s: %v", user.ID, err)
		loggedIn = user
	}

	return NewAuthSuccess(loggedIn, token)
}

// SessionFromToken validates a session token and decodes it
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed: %v", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims: %v", err)
		return nil, err
	}

	return session, nil
}

var _ Authenticator = (*Auther)(nil)
