// Package validation checks registration, login and profile payloads and
// reports the first rule they break.
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error carries the human-readable message of the first violated rule.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"min=3,max=1000"`
	Email    string `json:"email" form:"email" validate:"email,max=100"`
	Password string `json:"password" form:"password" validate:"min=6,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"email,max=100"`
	Password string `json:"password" form:"password" validate:"min=6,max=100"`
}

type usernameInput struct {
	Username string `validate:"min=3,max=1000"`
}

type passwordInput struct {
	Password string `validate:"min=6,max=100"`
}

var messages = map[string]string{
	"Username.min": "username must be at least 3 characters",
	"Username.max": "username must be smaller than 1000 characters",
	"Email.email":  "please enter a valid email id",
	"Email.max":    "email must be smaller than 100 characters",
	"Password.min": "password must be at least 6 characters long",
	"Password.max": "password must be no more than 100 characters",
}

var validate = validator.New()

// Register trims username and email, then validates the payload.
func Register(in RegisterInput) (RegisterInput, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	return in, check(in)
}

// Login trims the email, then validates the payload.
func Login(in LoginInput) (LoginInput, error) {
	in.Email = strings.TrimSpace(in.Email)
	return in, check(in)
}

// Username returns the trimmed username if it satisfies the length rule.
func Username(username string) (string, error) {
	in := usernameInput{Username: strings.TrimSpace(username)}
	return in.Username, check(in)
}

func Password(password string) error {
	return check(passwordInput{Password: password})
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Message: "invalid input provided, please check your fields"}
	}
	first := fieldErrs[0]
	msg, ok := messages[first.StructField()+"."+first.Tag()]
	if !ok {
		msg = "invalid " + strings.ToLower(first.StructField())
	}
	return &Error{Field: strings.ToLower(first.StructField()), Message: msg}
}
