// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Request bodies with go-playground/validator tags. Field names in
// validation errors follow the json tags.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/flyfitness/internal/validation"
)

// maxJSONBodyBytes caps JSON request bodies.
const maxJSONBodyBytes = 1 << 20

// RegisterRequest starts a sign-up.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// VerifyOTPRequest confirms a sign-up with the emailed code.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,otp"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest edits the caller's profile. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,notblank,max=100"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	ProfileImage *string `json:"profileImage,omitempty" validate:"omitempty,max=2048"`
}

// WeightRequest appends a weight log entry.
type WeightRequest struct {
	WeightKg float64 `json:"weightKg" validate:"required,gt=0"`
}

// CreatePostRequest is the JSON form of a text-only post.
type CreatePostRequest struct {
	Content string `json:"content" validate:"max=2000"`
}

// CommentRequest adds a comment.
type CommentRequest struct {
	Text string `json:"text" validate:"required,notblank,max=1000"`
}

// SubscribeRequest registers a browser push subscription.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
}

// UnsubscribeRequest removes a browser push subscription.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

// BroadcastRequest sends an announcement to every member.
type BroadcastRequest struct {
	Message string `json:"message" validate:"required,notblank,max=280"`
}

// decodeJSON decodes a bounded JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrInvalidJSON)
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr
	}
	return nil
}
