package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account has no active practice membership")
	ErrUnauthorized       = errors.New("invalid or expired session")
	ErrNoPracticeAccess   = errors.New("no active membership in this practice")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrOTPInvalid         = errors.New("verification code is incorrect")
	ErrOTPExpired         = errors.New("verification code has expired")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or already used")
	ErrResetTokenExpired  = errors.New("reset token has expired")
	ErrSessionNotFound    = errors.New("session not found")
)
