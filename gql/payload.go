package gql

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// AuthBasicPayload is the authBasic mutation input after argument
// coercion, validated before the orchestrator runs.
type AuthBasicPayload struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (p AuthBasicPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// Masked returns a copy safe for debug output.
func (p AuthBasicPayload) Masked() AuthBasicPayload {
	p.Password = "********"
	return p
}
