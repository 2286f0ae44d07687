package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRateLimited        = errors.New("generation limit reached")
	ErrNoChunks           = errors.New("document not processed")
	ErrInvalidResponse    = errors.New("model response could not be parsed")
	ErrNoValidQuestions   = errors.New("no valid questions generated")
)
