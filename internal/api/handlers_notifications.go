// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UnreadCountResult is the body of GET /notifications/unread-count.
type UnreadCountResult struct {
	Count int `json:"count"`
}

// ListNotifications returns the caller's notifications, newest first.
//
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Notification}
// @Router /notifications [get]
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)
	list, err := h.Notify.List(r.Context(), claims.UserID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(list)
}

// UnreadCount returns how many notifications are unread. Clients poll this
// and refresh the full list only when it changes.
//
// @Summary Unread notification count
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=UnreadCountResult}
// @Router /notifications/unread-count [get]
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)
	n, err := h.Notify.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(UnreadCountResult{Count: n})
}

// MarkNotificationRead marks one notification as read.
//
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} Response "updated is false when it was already read"
// @Failure 404 {object} Response "Notification not found"
// @Router /notifications/{id}/read [put]
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)
	changed, err := h.Notify.MarkRead(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(map[string]bool{"updated": changed})
}

// MarkAllNotificationsRead marks every unread notification as read.
//
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "updated is the number of notifications changed"
// @Router /notifications/read-all [put]
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)
	n, err := h.Notify.MarkAllRead(r.Context(), claims.UserID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(map[string]int{"updated": n})
}

// DeleteNotification removes a notification.
//
// @Summary Delete notification
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} Response "Notification not found"
// @Router /notifications/{id} [delete]
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)
	if err := h.Notify.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		rw.ServiceError(err)
		return
	}
	rw.NoContent()
}
