// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/flyfitness/internal/feed"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/models"
)

const (
	// multipartMemory is how much of a multipart body is buffered in RAM.
	multipartMemory = 8 << 20

	// multipartOverhead allows for form fields and boundaries on top of the file.
	multipartOverhead = 1 << 20

	defaultMaxUploadBytes = 50 << 20
)

// PostView is a post as returned to a particular viewer.
type PostView struct {
	models.Post
	LikeCount     int    `json:"likeCount"`
	LikedByMe     bool   `json:"likedByMe"`
	TimeRemaining string `json:"timeRemaining"`
}

// LikeResult is the response to a like toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

func (h *Handler) viewPost(p *models.Post, viewerID string, now time.Time) PostView {
	return PostView{
		Post:          *p,
		LikeCount:     len(p.Likes),
		LikedByMe:     p.LikedBy(viewerID),
		TimeRemaining: feed.TimeRemaining(p.CreatedAt, now),
	}
}

// ListPosts returns live posts, newest first.
//
// @Summary List feed posts
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]PostView}
// @Router /feed/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	posts, err := h.Feed.ListPosts(r.Context())
	if err != nil {
		rw.ServiceError(err)
		return
	}
	now := h.timeFunc()
	views := make([]PostView, len(posts))
	for i := range posts {
		views[i] = h.viewPost(&posts[i], claims.UserID, now)
	}
	rw.Success(views)
}

// CreatePost publishes a post. Multipart bodies carry "content" and an
// optional "media" file; JSON bodies carry text only.
//
// @Summary Create a post
// @Tags Feed
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param content formData string false "Post text"
// @Param media formData file false "Image or video"
// @Success 201 {object} Response{data=PostView}
// @Failure 400 {object} Response "Post needs content or media"
// @Failure 413 {object} Response "Media too large"
// @Router /feed/posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var (
		text   string
		upload *feed.MediaUpload
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		limit := h.Config.Media.MaxUploadBytes
		if limit <= 0 {
			limit = defaultMaxUploadBytes
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				rw.ServiceError(feed.ErrMediaTooLarge)
				return
			}
			rw.BadRequest("invalid multipart form")
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		text = r.FormValue("content")
		file, header, err := r.FormFile("media")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			// text-only post
		case err != nil:
			rw.BadRequest("invalid media attachment")
			return
		default:
			defer file.Close()
			upload = &feed.MediaUpload{
				Reader:      file,
				ContentType: uploadContentType(header.Header.Get("Content-Type"), header.Filename),
			}
		}
	default:
		var req CreatePostRequest
		if err := decodeJSON(w, r, &req); err != nil {
			rw.ServiceError(err)
			return
		}
		text = req.Content
	}

	post, err := h.Feed.CreatePost(r.Context(), claims.UserRef(), text, upload)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Created(h.viewPost(post, claims.UserID, h.timeFunc()))
}

// uploadContentType prefers the part header and falls back to the file extension.
func uploadContentType(declared, filename string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return declared
}

// ToggleLike likes or unlikes a post for the caller.
//
// @Summary Toggle like
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} Response{data=LikeResult}
// @Failure 404 {object} Response "Post not found"
// @Failure 410 {object} Response "Post expired"
// @Router /feed/posts/{id}/like [post]
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	liked, count, err := h.Feed.ToggleLike(r.Context(), chi.URLParam(r, "id"), claims.UserRef())
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(LikeResult{Liked: liked, Likes: count})
}

// AddComment appends a comment to a post.
//
// @Summary Add comment
// @Tags Feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body CommentRequest true "Comment text"
// @Success 201 {object} Response{data=models.Comment}
// @Failure 410 {object} Response "Post expired"
// @Router /feed/posts/{id}/comments [post]
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var req CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.ServiceError(err)
		return
	}
	comment, err := h.Feed.AddComment(r.Context(), chi.URLParam(r, "id"), claims.UserRef(), req.Text)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Created(comment)
}

// DeleteComment removes a comment. Allowed for the comment author and the post author.
//
// @Summary Delete comment
// @Tags Feed
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param commentID path string true "Comment ID"
// @Success 204
// @Failure 403 {object} Response "Not allowed"
// @Router /feed/posts/{id}/comments/{commentID} [delete]
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	err := h.Feed.DeleteComment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "commentID"), claims.UserID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.NoContent()
}

// DeletePost removes one of the caller's posts.
//
// @Summary Delete post
// @Tags Feed
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 403 {object} Response "Not the author"
// @Router /feed/posts/{id} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	if err := h.Feed.DeletePost(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		rw.ServiceError(err)
		return
	}
	rw.NoContent()
}

// Media streams a post attachment.
//
// @Summary Get media
// @Tags Feed
// @Produce octet-stream
// @Param id path string true "Media ID"
// @Success 200 {file} binary
// @Failure 404 {object} Response "Media not found"
// @Router /media/{id} [get]
func (h *Handler) Media(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.Feed.OpenMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		NewResponseWriter(w, r).ServiceError(err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	// Attachments are immutable once stored.
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Media stream interrupted")
	}
}
