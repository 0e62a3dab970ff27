package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the user store. Beyond the generic repository surface it carries
// the login-flow operations: candidate lookup, attempt tracking, last-login
// tracking, and verification token persistence.
type Users interface {
	repository.Repository[*User]

	GetLoginCandidate(ctx context.Context, email string) (*User, error)
	GetLoginCandidateTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) (*User, error)
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error
	SetVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.CreateTx(ctx, tx, user)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) GetLoginCandidate(ctx context.Context, email string) (*User, error) {
	return a.GetLoginCandidateTx(ctx, a.db, email)
}

// GetLoginCandidateTx finds the single account matching the email
// case-insensitively and holding a login-eligible role. Soft deleted rows
// are included on purpose: the validator reports deletion as its own
// failure, distinct from a missing account.
func (a *users) GetLoginCandidateTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	record := &User{}
	err := tx.NewSelect().
		Model(record).
		WhereAllWithDeleted().
		Where("lower(?TableAlias.email) = ?", email).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			// roles is a JSON array column; probe for the quoted role value.
			for _, role := range LoginEligibleRoles {
				q = q.WhereOr("?TableAlias.roles LIKE ?", "%\""+role+"\"%")
			}
			return q
		}).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	// The LIKE probe can match values embedded in other strings; confirm
	// eligibility on the decoded list.
	if !record.CanAuthenticate() {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	return record, nil
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	return a.TrackAttemptedLoginTx(ctx, a.db, user)
}

func (a *users) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"access_failed_count" = "access_failed_count" + 1
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, user.ID).Exec(ctx)

	return err
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) (*User, error) {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

// TrackSuccessfulLoginTx stamps last_login_at, clears the failed-attempt
// counter, and returns the refreshed record.
func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	lastLoginAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"last_login_at" = ?,
			"access_failed_count" = 0
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, lastLoginAt, user.ID).Exec(ctx)

	if err != nil {
		return nil, err
	}

	record := &User{}
	if err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", user.ID).
		Limit(1).
		Scan(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (a *users) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	return a.SetVerificationTokenTx(ctx, a.db, id, token)
}

func (a *users) SetVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	sentAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"email_verification_token" = ?,
			"verification_email_sent_at" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, token, sentAt, id).Exec(ctx)

	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = strings.ToLower(strings.TrimSpace(record.Email))

	if len(record.Roles) == 0 {
		record.Roles = RoleList{RoleSupporter}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
