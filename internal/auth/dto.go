package auth

import (
	errors "github.com/frahmantamala/courseware-platform/internal"
	"github.com/frahmantamala/courseware-platform/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterDTO struct {
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Password string  `json:"password"`
}

func (d LoginDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("username", d.Username).Required()
	validator.Field("password", d.Password).Required()
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d RegisterDTO) Validate() error {
	if appErr := validation.ValidateUsername(d.Username); appErr != nil {
		return appErr
	}
	if appErr := validation.ValidatePassword(d.Password); appErr != nil {
		return appErr
	}
	if d.Email != nil && *d.Email == "" {
		return errors.NewValidationFieldError("email", "email must not be empty when provided", errors.ErrCodeValidationFailed)
	}
	return nil
}
