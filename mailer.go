package auth

import "context"

// Verification email referrer contexts. The email template deep-links back
// into the flow the user came from.
const (
	ReferrerLogin  = "login"
	ReferrerSignup = "signup"
)

// VerificationEmail is the outbound verification message
type VerificationEmail struct {
	To                     string `json:"to"`
	Token                  string `json:"token"`
	Referrer               string `json:"referrer"`
	RequiresPlayerInsights bool   `json:"requires_player_insights"`
}

// Mailer dispatches transactional email. Delivery mechanics live behind
// this interface; the default implementation only logs.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, msg VerificationEmail) error
}

// LogMailer writes the notification to the logger instead of sending it.
type LogMailer struct {
	Logger Logger
}

func (m LogMailer) SendVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	logger := m.Logger
	if logger == nil {
		logger = defLogger{}
	}

	logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	logger.Info("to: %s", msg.To)
	logger.Info("link: /verify-email/%s?referrer=%s&requirePlayerInsights=%t",
		msg.Token, msg.Referrer, msg.RequiresPlayerInsights)

	return nil
}

var _ Mailer = LogMailer{}
