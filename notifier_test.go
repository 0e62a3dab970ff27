package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/auth"
)

func newNotifierFixture(t *testing.T, users *MockUsers, mailer auth.Mailer, permissions auth.PermissionResolver) *auth.VerificationNotifier {
	t.Helper()

	repo := new(MockRepositoryManager)
	repo.On("Users").Return(users)

	return auth.NewVerificationNotifier(repo, newTestTokenService(t), mailer, permissions)
}

func TestVerificationNotifierNotify(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the token and sends the email", func(t *testing.T) {
		user := verifiedUser()
		user.EmailVerified = false

		var persisted string
		var sent auth.VerificationEmail

		users := new(MockUsers)
		users.On("SetVerificationToken", mock.Anything, user.ID, mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) {
				persisted = args.String(2)
			}).
			Return(nil).Once()

		mailer := new(MockMailer)
		mailer.On("SendVerificationEmail", mock.Anything, mock.AnythingOfType("auth.VerificationEmail")).
			Run(func(args mock.Arguments) {
				sent = args.Get(1).(auth.VerificationEmail)
			}).
			Return(nil).Once()

		notifier := newNotifierFixture(t, users, mailer, nil)

		err := notifier.Notify(ctx, user)
		require.NoError(t, err)

		users.AssertExpectations(t)
		mailer.AssertExpectations(t)

		// The persisted token and the emailed token are the same credential.
		assert.Equal(t, persisted, sent.Token)
		assert.Equal(t, user.Email, sent.To)
		assert.Equal(t, auth.ReferrerLogin, sent.Referrer)
	})

	t.Run("referrer reflects onboarding state", func(t *testing.T) {
		user := verifiedUser()
		user.EmailVerified = false
		user.Onboarded = false

		var sent auth.VerificationEmail

		users := new(MockUsers)
		users.On("SetVerificationToken", mock.Anything, user.ID, mock.AnythingOfType("string")).
			Return(nil).Once()

		mailer := new(MockMailer)
		mailer.On("SendVerificationEmail", mock.Anything, mock.AnythingOfType("auth.VerificationEmail")).
			Run(func(args mock.Arguments) {
				sent = args.Get(1).(auth.VerificationEmail)
			}).
			Return(nil).Once()

		notifier := newNotifierFixture(t, users, mailer, nil)

		require.NoError(t, notifier.Notify(ctx, user))
		assert.Equal(t, auth.ReferrerSignup, sent.Referrer)
	})

	t.Run("insights flag follows resolved permissions", func(t *testing.T) {
		user := verifiedUser()
		user.EmailVerified = false

		var sent auth.VerificationEmail

		users := new(MockUsers)
		users.On("SetVerificationToken", mock.Anything, user.ID, mock.AnythingOfType("string")).
			Return(nil).Once()

		mailer := new(MockMailer)
		mailer.On("SendVerificationEmail", mock.Anything, mock.AnythingOfType("auth.VerificationEmail")).
			Run(func(args mock.Arguments) {
				sent = args.Get(1).(auth.VerificationEmail)
			}).
			Return(nil).Once()

		permissions := new(MockPermissionResolver)
		permissions.On("ResolvePermissions", mock.Anything, user).
			Return(auth.PermissionSet{RequiredSurvey: true}, nil).Once()

		notifier := newNotifierFixture(t, users, mailer, permissions)

		require.NoError(t, notifier.Notify(ctx, user))
		assert.True(t, sent.RequiresPlayerInsights)
	})

	t.Run("nil user is rejected", func(t *testing.T) {
		notifier := newNotifierFixture(t, new(MockUsers), new(MockMailer), nil)

		assert.Error(t, notifier.Notify(ctx, nil))
	})

	t.Run("persistence failure stops the send", func(t *testing.T) {
		user := verifiedUser()

		users := new(MockUsers)
		users.On("SetVerificationToken", mock.Anything, user.ID, mock.AnythingOfType("string")).
			Return(errors.New("write failed")).Once()

		mailer := new(MockMailer)

		notifier := newNotifierFixture(t, users, mailer, nil)

		assert.Error(t, notifier.Notify(ctx, user))
		mailer.AssertNotCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything)
	})
}

func TestVerificationNotifierDispatch(t *testing.T) {
	t.Run("mailer failure is swallowed", func(t *testing.T) {
		user := verifiedUser()

		users := new(MockUsers)
		users.On("SetVerificationToken", mock.Anything, user.ID, mock.AnythingOfType("string")).
			Return(nil).Once()

		mailer := new(MockMailer)
		mailer.On("SendVerificationEmail", mock.Anything, mock.AnythingOfType("auth.VerificationEmail")).
			Return(errors.New("smtp unreachable")).Once()

		notifier := newNotifierFixture(t, users, mailer, nil)

		notifier.Dispatch(user)
		notifier.Drain()

		mailer.AssertExpectations(t)
	})

	t.Run("mailer panic is trapped", func(t *testing.T) {
		user := verifiedUser()

		users := new(MockUsers)
		users.On("SetVerificationToken", mock.Anything, user.ID, mock.AnythingOfType("string")).
			Return(nil).Once()

		mailer := new(MockMailer)
		mailer.On("SendVerificationEmail", mock.Anything, mock.AnythingOfType("auth.VerificationEmail")).
			Run(func(mock.Arguments) {
				panic("template blew up")
			}).
			Return(nil).Once()

		notifier := newNotifierFixture(t, users, mailer, nil)

		assert.NotPanics(t, func() {
			notifier.Dispatch(user)
			notifier.Drain()
		})
	})

	t.Run("nil user does not panic", func(t *testing.T) {
		notifier := newNotifierFixture(t, new(MockUsers), new(MockMailer), nil)

		assert.NotPanics(t, func() {
			notifier.Dispatch(nil)
			notifier.Drain()
		})
	})
}
