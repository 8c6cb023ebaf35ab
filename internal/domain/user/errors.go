package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is inactive")
	ErrEmailTaken   = errors.New("email already registered")

	// ErrSoleHouseOwner blocks deactivating a user who is the only owner
	// of some house, which would leave it without an administrator.
	ErrSoleHouseOwner = errors.New("user is the sole owner of a house")
)
