package auth

import "errors"

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrTenantRequired = errors.New("token carries no tenant")
)
