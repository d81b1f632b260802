package usecase

import "errors"

// ErrInvalidRequest marks malformed input that never reached the domain.
var ErrInvalidRequest = errors.New("invalid request")
