package owner

import "errors"

var (
	ErrBootstrapClosed  = errors.New("an owner account already exists")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrNotFound         = errors.New("owner not found")
	ErrLastOwner        = errors.New("the last owner account cannot be removed")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)
