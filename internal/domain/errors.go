package domain

import "errors"

var (
	ErrNotFound   = errors.New("resource not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrLastAdmin  = errors.New("cannot remove the last admin for this tenant")
)
