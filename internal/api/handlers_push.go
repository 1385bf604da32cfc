// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"net/http"

	"github.com/tomtom215/flyfitness/internal/models"
)

// PushPublicKey returns the VAPID application server key browsers subscribe with.
//
// @Summary Push public key
// @Tags Push
// @Produce json
// @Success 200 {object} Response "publicKey"
// @Failure 503 {object} Response "Push disabled"
// @Router /push/vapid-public-key [get]
func (h *Handler) PushPublicKey(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.capabilities().Features[models.FeaturePush] {
		rw.ServiceUnavailable("push notifications are not enabled")
		return
	}
	rw.Success(map[string]string{"publicKey": h.VAPIDPublicKey})
}

// Subscribe registers the caller's browser push subscription.
//
// @Summary Register push subscription
// @Tags Push
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubscribeRequest true "PushSubscription JSON"
// @Success 201 {object} Response
// @Router /push/subscribe [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var req SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.ServiceError(err)
		return
	}
	sub := models.PushSubscription{
		Endpoint:  req.Endpoint,
		Keys:      models.PushKeys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth},
		UserAgent: r.UserAgent(),
	}
	if err := h.Registry.Subscribe(r.Context(), claims.UserID, sub); err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Created(map[string]string{"endpoint": sub.Endpoint})
}

// Unsubscribe removes the caller's push subscription. Unknown endpoints succeed.
//
// @Summary Remove push subscription
// @Tags Push
// @Accept json
// @Security BearerAuth
// @Param request body UnsubscribeRequest true "Endpoint"
// @Success 204
// @Router /push/unsubscribe [post]
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var req UnsubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.ServiceError(err)
		return
	}
	if err := h.Registry.Unsubscribe(r.Context(), claims.UserID, req.Endpoint); err != nil {
		rw.ServiceError(err)
		return
	}
	rw.NoContent()
}
