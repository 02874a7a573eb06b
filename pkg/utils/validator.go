package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"lms-backend/internal/domain/user"
	appErrors "lms-backend/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("user_role", validateUserRole); err != nil {
		panic(fmt.Sprintf("register user_role validation: %v", err))
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateUserRole(fl validator.FieldLevel) bool {
	_, err := user.ParseRole(fl.Field().String())
	return err == nil
}

// fieldMessages holds the client-facing text for a failed rule, keyed by
// "<Field>.<tag>".
var fieldMessages = map[string]string{
	"Name.min":        "Name must be at least 5 characters",
	"Name.max":        "Name must not exceed 50 characters",
	"Email.email":     "Please fill in a valid email address",
	"Password.min":    "Password must be at least 8 characters",
	"Password.max":    "Password must not exceed 72 characters",
	"NewPassword.min": "Password must be at least 8 characters",
	"NewPassword.max": "Password must not exceed 72 characters",
	"Role.user_role":  "Role must be USER or ADMIN",
}

// ValidationMessage turns a validator error into the single message shown to
// the client. Any missing required field yields ErrMissingFields.
func ValidationMessage(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fallback
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return appErrors.ErrMissingFields.Error()
		}
	}

	fe := verrs[0]
	if msg, ok := fieldMessages[fe.StructField()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field()))
}
