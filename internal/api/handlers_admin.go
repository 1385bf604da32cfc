// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/logging"
)

// BroadcastResult describes an accepted or delivered broadcast.
type BroadcastResult struct {
	ID        string `json:"id"`
	Queued    bool   `json:"queued"`
	Delivered int    `json:"delivered,omitempty"`
}

// ListUsers returns every registered user.
//
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.User}
// @Router /admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(users)
}

// DeleteUser removes a user account.
//
// @Summary Delete user
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} Response "Cannot delete yourself"
// @Failure 404 {object} Response "User not found"
// @Router /admin/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if id == claims.UserID {
		rw.ServiceError(ErrCannotDeleteSelf)
		return
	}
	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		rw.ServiceError(err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("deleted_user_id", id).Msg("User deleted by administrator")
	rw.NoContent()
}

// Broadcast sends an announcement to every member as a notification and a
// push message. With an event bus the fan-out runs asynchronously.
//
// @Summary Broadcast notification
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BroadcastRequest true "Message"
// @Success 202 {object} Response{data=BroadcastResult} "Queued for delivery"
// @Success 200 {object} Response{data=BroadcastResult} "Delivered synchronously"
// @Router /admin/notifications/broadcast [post]
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var req BroadcastRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.ServiceError(err)
		return
	}

	e := events.New(events.TopicBroadcast, h.timeFunc())
	e.ActorID = claims.UserID
	e.ActorName = claims.Name
	e.Text = req.Message

	if h.Publisher != nil {
		err := h.Publisher.Publish(r.Context(), e)
		if err == nil {
			rw.Accepted(BroadcastResult{ID: e.ID, Queued: true})
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Broadcast publish failed, delivering inline")
	}

	n, err := h.Notify.Broadcast(r.Context(), e.ID, req.Message)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(BroadcastResult{ID: e.ID, Delivered: n})
}

// Performance returns request latency statistics from the in-process monitor.
//
// @Summary API performance statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]middleware.EndpointStats}
// @Router /admin/performance [get]
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.Monitor.GetStats())
}
