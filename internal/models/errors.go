package models

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
)
