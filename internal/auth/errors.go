// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package auth

import "errors"

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("missing bearer token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrNoPendingOTP       = errors.New("no pending registration for this email")
	ErrOTPExpired         = errors.New("verification code has expired")
	ErrInvalidOTP         = errors.New("invalid verification code")
	ErrTooManyAttempts    = errors.New("too many invalid codes, register again")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidWeight      = errors.New("weight must be between 20 and 400 kg")
)
