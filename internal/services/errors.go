package services

import "errors"

// ErrValidation is the base error for user-input failures. Handlers map
// anything wrapping it to HTTP 400 with the message shown inline.
var ErrValidation = errors.New("validation failed")

// ErrImport is returned for a malformed settings import file. The import is
// rejected as a whole; nothing is partially applied.
var ErrImport = errors.New("settings import failed")

// ErrEmailExists is returned when an attempt is made to use an email that already exists.
var ErrEmailExists = errors.New("email already in use by another account")

// ErrInvalidCredentials is returned on sign-in with a wrong email/password pair.
var ErrInvalidCredentials = errors.New("invalid email or password")
