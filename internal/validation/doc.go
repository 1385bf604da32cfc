// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by all handlers. Field names in
// errors use the json tag so clients see the names they sent. Two custom
// tags are registered:
//
//   - notblank: the string must contain a non-whitespace character
//   - otp: exactly six ASCII digits
//
// Usage:
//
//	type VerifyOTPRequest struct {
//	    Email string `json:"email" validate:"required,email"`
//	    Code  string `json:"code" validate:"required,otp"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code, apiErr.Message, apiErr.Details
//	}
package validation
