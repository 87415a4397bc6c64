package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates the request carries no usable session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the session lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrExpiredToken indicates a verification or reset token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
	ErrEmptyCart    = errors.New("cart is empty")
	// ErrNothingSelected is returned when a checkout selection matches no cart line.
	ErrNothingSelected = errors.New("nothing selected")
	// ErrInvalidTransition is returned when an order cannot move to the requested status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrExternalService wraps failures of email or bot-verification calls.
	ErrExternalService = errors.New("external service failure")
	// ErrInvalidQuantity is returned for cart quantities below one.
	ErrInvalidQuantity = &ValidationError{Message: "Invalid quantity"}
)

// ValidationError carries a message that is safe to show on the originating form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}
