package service

import "errors"

// ErrInvalidCredentials is returned for every login failure. It deliberately
// does not say whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when a create or update would violate email
// uniqueness.
var ErrEmailTaken = errors.New("email already registered")
