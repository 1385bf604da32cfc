// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package feed

import "errors"

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrMediaNotFound    = errors.New("media not found")
	ErrPostExpired      = errors.New("post has expired")
	ErrForbidden        = errors.New("not allowed to modify this resource")
	ErrEmptyPost        = errors.New("post needs content or media")
	ErrEmptyComment     = errors.New("comment text is required")
	ErrUnsupportedMedia = errors.New("media must be an image or a video")
	ErrMediaTooLarge    = errors.New("media exceeds the upload limit")
)
