package domain

import "errors"

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrBadCredentials     = errors.New("bad credentials")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrMalformedToken     = errors.New("malformed token")
	ErrRoleAlreadyGranted = errors.New("role already granted")
)
