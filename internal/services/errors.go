package services

import "errors"

// Failure modes surfaced to the HTTP layer. Handlers translate these with
// errors.Is; anything unrecognized is reported as an internal error.
var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("user already exists with this email")
	ErrUserNotFound         = errors.New("user not found")
	ErrCodeExpired          = errors.New("verification code is expired")
	ErrCodeInvalid          = errors.New("verification code is incorrect")
	ErrNotVerified          = errors.New("account is not verified")
	ErrBadCredentials       = errors.New("incorrect password")
	ErrNotAcceptingMessages = errors.New("user is not accepting messages")
	ErrMessageNotFound      = errors.New("message not found")
	ErrDeliveryFailed       = errors.New("failed to send verification email")
)
