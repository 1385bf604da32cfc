// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"net/http"
)

// Register starts a sign-up and emails a verification code.
//
// @Summary Register and send OTP
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Sign-up details"
// @Success 202 {object} Response "Verification code sent"
// @Failure 400 {object} Response "Validation failed"
// @Failure 409 {object} Response "Email already registered"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.ServiceError(err)
		return
	}
	if err := h.Auth.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Accepted(map[string]string{
		"email":   req.Email,
		"message": "verification code sent",
	})
}

// VerifyOTP confirms a sign-up and returns a session.
//
// @Summary Verify registration code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Email and code"
// @Success 201 {object} Response{data=auth.Session}
// @Failure 400 {object} Response "Invalid or expired code"
// @Failure 429 {object} Response "Too many attempts"
// @Router /auth/verify-otp [post]
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req VerifyOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.ServiceError(err)
		return
	}
	session, err := h.Auth.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Created(session)
}

// Login authenticates with email and password.
//
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} Response{data=auth.Session}
// @Failure 401 {object} Response "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.ServiceError(err)
		return
	}
	session, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(session)
}
