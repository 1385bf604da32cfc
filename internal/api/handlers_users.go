// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"net/http"

	"github.com/tomtom215/flyfitness/internal/auth"
)

// GetProfile returns the caller's profile.
//
// @Summary Current user profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Router /users/me [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)
	user, err := h.Auth.Profile(r.Context(), claims.UserID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(user)
}

// UpdateProfile edits name, phone or profile image.
//
// @Summary Update profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} Response{data=models.User}
// @Router /users/me [patch]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.ServiceError(err)
		return
	}
	user, err := h.Auth.UpdateProfile(r.Context(), claims.UserID, auth.ProfileUpdate{
		Name:         req.Name,
		Phone:        req.Phone,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(user)
}

// WeightLog returns the caller's weight progress.
//
// @Summary Weight progress
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.WeightEntry}
// @Router /users/me/weight [get]
func (h *Handler) WeightLog(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)
	entries, err := h.Auth.WeightLog(r.Context(), claims.UserID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(entries)
}

// AddWeight records a weight measurement.
//
// @Summary Record weight
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WeightRequest true "Weight in kg"
// @Success 201 {object} Response{data=[]models.WeightEntry}
// @Router /users/me/weight [post]
func (h *Handler) AddWeight(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var req WeightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.ServiceError(err)
		return
	}
	entries, err := h.Auth.AddWeight(r.Context(), claims.UserID, req.WeightKg)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Created(entries)
}
