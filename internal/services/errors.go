package services

import "errors"

var (
	// ErrUsernameTaken is returned when registering a username that exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned on a failed login attempt. It does
	// not say whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials is returned when registration input is empty.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrUserNotFound is returned when a username lookup misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrFileNotFound is returned when a download target does not exist or
	// is not owned by the requesting user.
	ErrFileNotFound = errors.New("file not found")
	// ErrBadFilename is returned when an uploaded filename is empty or
	// reduces to nothing after sanitization.
	ErrBadFilename = errors.New("invalid filename")
)
