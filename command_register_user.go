package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// defaultPhoneRegion is used when the payload carries a national number.
const defaultPhoneRegion = "GB"

type RegisterUserMessage struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	PhoneRegion string     `json:"phone_region"`
	Password    string     `json:"password"`
	Roles       []UserRole `json:"roles"`
	UseHashid   bool
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	repo RepositoryManager
}

// NewRegisterUserHandler will create a new RegisterUserHandler
func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	for _, role := range event.Roles {
		if !IsValidRole(role) {
			return goerrors.New("user has an unknown or invalid role", goerrors.CategoryValidation).
				WithTextCode("INVALID_ROLE").
				WithMetadata(map[string]any{"role": role, "email": event.Email})
		}
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = strings.ToLower(strings.TrimSpace(event.Email))
		user.FirstName = event.FirstName
		user.LastName = event.LastName
		user.Username = getUsername(event.Username, event.Email)
		user.Roles = RoleList(event.Roles)

		if event.Phone != "" {
			phone, err := normalizePhone(event.Phone, event.PhoneRegion)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number provided")
			}
			user.Phone = phone
		}

		if event.UseHashid {
			if id, err := hashid.NewUUID(user.Email); err == nil {
				user.ID = id
			}
		}

		if _, err := h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to register user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to execute user registration")
	}

	return nil
}

func getUsername(username, email string) string {
	username = strings.TrimSpace(username)
	if username != "" {
		return username
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}

	return email
}

// normalizePhone stores numbers in E.164 so lookups are format-independent.
func normalizePhone(raw, region string) (string, error) {
	if region == "" {
		region = defaultPhoneRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", err
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
