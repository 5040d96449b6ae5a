package domain

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrSecretNotFound       = errors.New("secret not found")
	ErrInvalidSecretRef     = errors.New("invalid secret reference")
	ErrInvalidProxy         = errors.New("invalid proxy")
	ErrUnknownAction        = errors.New("unknown action")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrDriverUnavailable    = errors.New("session driver unavailable")
)
