package application

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailNotVerified     = errors.New("please verify your email before signing in")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("user with this email already exists")
	ErrAlreadyVerified      = errors.New("email is already verified")
	ErrVerificationNotFound = errors.New("no verification request found for this email")
	ErrVerificationExpired  = errors.New("verification token has expired")
	ErrEmailDelivery        = errors.New("failed to send verification email")
	ErrSessionNotFound      = errors.New("session not found")
	ErrCardNotFound         = errors.New("card not found")
	ErrSetNotFound          = errors.New("set not found")
	ErrUserCardNotFound     = errors.New("user card not found")
	ErrNotConfigured        = errors.New("not configured")
)
