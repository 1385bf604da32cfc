// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/flyfitness/internal/auth"
	"github.com/tomtom215/flyfitness/internal/content"
	"github.com/tomtom215/flyfitness/internal/feed"
	"github.com/tomtom215/flyfitness/internal/notify"
	"github.com/tomtom215/flyfitness/internal/push"
	"github.com/tomtom215/flyfitness/internal/store"
	"github.com/tomtom215/flyfitness/internal/validation"
)

var (
	// ErrInvalidJSON is returned for bodies that fail to decode.
	ErrInvalidJSON = errors.New("request body must be valid JSON")

	// ErrCannotDeleteSelf stops an administrator from deleting their own account.
	ErrCannotDeleteSelf = errors.New("administrators cannot delete their own account")
)

// errorMapping is the HTTP form of a domain error.
type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order with errors.Is.
var errorMappings = []errorMapping{
	{feed.ErrPostNotFound, http.StatusNotFound, ErrCodeNotFound},
	{feed.ErrCommentNotFound, http.StatusNotFound, ErrCodeNotFound},
	{feed.ErrMediaNotFound, http.StatusNotFound, ErrCodeNotFound},
	{notify.ErrNotificationNotFound, http.StatusNotFound, ErrCodeNotFound},
	{content.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{auth.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound},
	{store.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},

	{feed.ErrPostExpired, http.StatusGone, ErrCodeGone},
	{feed.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{ErrCannotDeleteSelf, http.StatusForbidden, ErrCodeForbidden},
	{feed.ErrMediaTooLarge, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge},

	{feed.ErrEmptyPost, http.StatusBadRequest, ErrCodeBadRequest},
	{feed.ErrEmptyComment, http.StatusBadRequest, ErrCodeBadRequest},
	{feed.ErrUnsupportedMedia, http.StatusBadRequest, ErrCodeBadRequest},
	{notify.ErrEmptyContent, http.StatusBadRequest, ErrCodeBadRequest},
	{notify.ErrInvalidType, http.StatusBadRequest, ErrCodeBadRequest},
	{content.ErrInvalidKind, http.StatusBadRequest, ErrCodeBadRequest},
	{content.ErrMissingTitle, http.StatusBadRequest, ErrCodeBadRequest},
	{auth.ErrInvalidWeight, http.StatusBadRequest, ErrCodeBadRequest},
	{push.ErrInvalidSubscription, http.StatusBadRequest, ErrCodeBadRequest},
	{ErrInvalidJSON, http.StatusBadRequest, ErrCodeBadRequest},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
	{auth.ErrEmailTaken, http.StatusConflict, ErrCodeConflict},
	{store.ErrConflict, http.StatusConflict, ErrCodeConflict},
	{auth.ErrNoPendingOTP, http.StatusBadRequest, ErrCodeOTPInvalid},
	{auth.ErrInvalidOTP, http.StatusBadRequest, ErrCodeOTPInvalid},
	{auth.ErrOTPExpired, http.StatusBadRequest, ErrCodeOTPExpired},
	{auth.ErrTooManyAttempts, http.StatusTooManyRequests, ErrCodeTooManyRequests},
}

// ServiceError maps a service error onto the envelope. Unknown errors are
// logged and reported as 500 without leaking their text.
func (rw *ResponseWriter) ServiceError(err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			rw.Error(m.status, m.code, m.target.Error())
			return
		}
	}
	rw.InternalError(err)
}
