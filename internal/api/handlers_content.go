// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/flyfitness/internal/content"
	"github.com/tomtom215/flyfitness/internal/models"
)

// contentKind resolves the {kind} URL parameter, accepting plurals.
func contentKind(r *http.Request) (models.ContentKind, bool) {
	return models.ParseContentKind(chi.URLParam(r, "kind"))
}

// ListContent returns the public items of one kind.
//
// @Summary List gym content
// @Tags Content
// @Produce json
// @Param kind path string true "trainers, classes, testimonials or messages"
// @Success 200 {object} Response{data=[]models.ContentItem}
// @Failure 400 {object} Response "Unknown kind"
// @Router /content/{kind} [get]
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	kind, ok := contentKind(r)
	if !ok {
		rw.ServiceError(content.ErrInvalidKind)
		return
	}
	items, err := h.Content.List(r.Context(), kind)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(items)
}

// CreateContent adds a content item.
//
// @Summary Create gym content
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Content kind"
// @Param request body content.Input true "Item"
// @Success 201 {object} Response{data=models.ContentItem}
// @Router /admin/content/{kind} [post]
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	kind, ok := contentKind(r)
	if !ok {
		rw.ServiceError(content.ErrInvalidKind)
		return
	}

	var in content.Input
	if err := decodeJSON(w, r, &in); err != nil {
		rw.ServiceError(err)
		return
	}
	item, err := h.Content.Create(r.Context(), kind, in)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Created(item)
}

// UpdateContent replaces a content item.
//
// @Summary Update gym content
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Content kind"
// @Param id path string true "Item ID"
// @Param request body content.Input true "Item"
// @Success 200 {object} Response{data=models.ContentItem}
// @Router /admin/content/{kind}/{id} [put]
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	kind, ok := contentKind(r)
	if !ok {
		rw.ServiceError(content.ErrInvalidKind)
		return
	}

	var in content.Input
	if err := decodeJSON(w, r, &in); err != nil {
		rw.ServiceError(err)
		return
	}
	item, err := h.Content.Update(r.Context(), kind, chi.URLParam(r, "id"), in)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(item)
}

// DeleteContent removes a content item.
//
// @Summary Delete gym content
// @Tags Admin
// @Security BearerAuth
// @Param kind path string true "Content kind"
// @Param id path string true "Item ID"
// @Success 204
// @Router /admin/content/{kind}/{id} [delete]
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	kind, ok := contentKind(r)
	if !ok {
		rw.ServiceError(content.ErrInvalidKind)
		return
	}
	if err := h.Content.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		rw.ServiceError(err)
		return
	}
	rw.NoContent()
}
