package auth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// VerificationNotifier re-sends the email verification message when a login
// is rejected for an unverified address. It mints a dedicated verification
// token, persists it on the user record, and dispatches the email.
type VerificationNotifier struct {
	repo        RepositoryManager
	tokens      TokenService
	mailer      Mailer
	permissions PermissionResolver
	logger      Logger
	timeout     time.Duration
	wg          sync.WaitGroup
}

// NewVerificationNotifier will create a new VerificationNotifier
func NewVerificationNotifier(repo RepositoryManager, tokens TokenService, mailer Mailer, permissions PermissionResolver) *VerificationNotifier {
	if mailer == nil {
		mailer = LogMailer{}
	}

	if permissions == nil {
		permissions = NewPermissionResolver()
	}

	return &VerificationNotifier{
		repo:        repo,
		tokens:      tokens,
		mailer:      mailer,
		permissions: permissions,
		logger:      defLogger{},
		timeout:     time.Second * 10,
	}
}

func (n *VerificationNotifier) WithLogger(logger Logger) *VerificationNotifier {
	if logger != nil {
		n.logger = logger
	}
	return n
}

// Notify runs the full side path synchronously: mint, persist, resolve the
// referrer and insights flags, send. Exposed for callers that need the
// outcome; the login flow goes through Dispatch instead.
func (n *VerificationNotifier) Notify(ctx context.Context, user *User) error {
	if user == nil {
		return goerrors.New("user is required for verification notice", goerrors.CategoryBadInput)
	}

	token, _, err := MintVerificationToken(n.tokens, user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint verification token")
	}

	if err := n.repo.Users().SetVerificationToken(ctx, user.ID, token); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist verification token")
	}

	referrer := ReferrerSignup
	if user.Onboarded {
		referrer = ReferrerLogin
	}

	perms, err := n.permissions.ResolvePermissions(ctx, user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve user permissions")
	}

	msg := VerificationEmail{
		To:                     user.Email,
		Token:                  token,
		Referrer:               referrer,
		RequiresPlayerInsights: perms.RequiredPlayerInfo || perms.RequiredSurvey,
	}

	if err := n.mailer.SendVerificationEmail(ctx, msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to send verification email")
	}

	return nil
}

// Dispatch schedules Notify on a detached goroutine. The request handler
// returns before the side path completes; failures and panics are trapped
// here and logged, never surfaced to the caller.
func (n *VerificationNotifier) Dispatch(user *User) {
	n.wg.Add(1)

	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("verification notifier panic: %v", r)
			}
		}()

		// Detached from the request context so the dispatch survives the
		// response being written.
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.Notify(ctx, user); err != nil {
			email := ""
			if user != nil {
				email = user.Email
			}
			n.logger.Error("verification email dispatch failed for %s: %v", email, err)
		}
	}()
}

// Drain blocks until in-flight dispatches complete. Call on shutdown.
func (n *VerificationNotifier) Drain() {
	n.wg.Wait()
}
