package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// loginCheck is one step of the credential validation sequence.
type loginCheck func(ctx context.Context, user *User, password string) error

// LoginValidator runs the ordered credential checks for basic login. The
// order is part of the contract: the first failing check decides the wire
// code and whether any side effect fires, so callers can rely on lockout
// being checked before the password and the password before verification.
type LoginValidator struct {
	store  Users
	logger Logger
	now    func() time.Time
}

// NewLoginValidator will create a new LoginValidator
func NewLoginValidator(store Users) *LoginValidator {
	return &LoginValidator{
		store:  store,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (v *LoginValidator) WithLogger(logger Logger) *LoginValidator {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// WithClock injects a custom clock (useful for tests).
func (v *LoginValidator) WithClock(clock func() time.Time) *LoginValidator {
	if clock != nil {
		v.now = clock
	}
	return v
}

// Validate checks the candidate password against the account record and its
// state flags. It succeeds silently or fails with a typed reason.
func (v *LoginValidator) Validate(ctx context.Context, user *User, password string) error {
	checks := []loginCheck{
		v.checkExists,
		v.checkAccountFlags,
		v.checkLockout,
		v.checkPassword,
		v.checkEmailVerified,
	}

	for _, check := range checks {
		if err := check(ctx, user, password); err != nil {
			return err
		}
	}

	return nil
}

func (v *LoginValidator) checkExists(ctx context.Context, user *User, password string) error {
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}

func (v *LoginValidator) checkAccountFlags(ctx context.Context, user *User, password string) error {
	if user.IsDeleted() {
		return ErrUserDeleted
	}

	if !user.Activated {
		return ErrUserDeactivated
	}

	return nil
}

func (v *LoginValidator) checkLockout(ctx context.Context, user *User, password string) error {
	if user.IsLockedOut(v.now()) {
		return ErrUserLockedOut
	}
	return nil
}

func (v *LoginValidator) checkPassword(ctx context.Context, user *User, password string) error {
	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if err2 := v.store.TrackAttemptedLogin(ctx, user); err2 != nil {
			return goerrors.Wrap(err2, goerrors.CategoryInternal, "failed to track login attempt")
		}

		return ErrInvalidCredentials
	}

	return nil
}

func (v *LoginValidator) checkEmailVerified(ctx context.Context, user *User, password string) error {
	if !user.EmailVerified {
		return ErrEmailUnverified
	}
	return nil
}
