package practice

import "errors"

var (
	ErrNotFound     = errors.New("practice not found")
	ErrNameMissing  = errors.New("practice name is required")
	ErrInvalidPhone = errors.New("invalid phone number")
)
