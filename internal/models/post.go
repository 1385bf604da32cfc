// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package models

import (
	"slices"
	"strings"
	"time"
)

// PostLifetime is how long a feed post stays visible after creation.
// Fixed for every post.
const PostLifetime = 24 * time.Hour

// MediaKind is the type of a post attachment.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo
}

// MediaKindFromContentType maps a MIME type to a media kind.
// Returns "" for anything that is not an image or a video.
func MediaKindFromContentType(contentType string) MediaKind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaImage
	case strings.HasPrefix(contentType, "video/"):
		return MediaVideo
	default:
		return ""
	}
}

// UserRef is the author summary embedded in posts and comments.
type UserRef struct {
	ID           string `json:"id" bson:"id"`
	Name         string `json:"name" bson:"name"`
	ProfileImage string `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
}

// Media is a single post attachment.
type Media struct {
	// ID identifies the stored blob (badger key or GridFS file id).
	ID          string    `json:"id" bson:"id"`
	URL         string    `json:"url" bson:"url"`
	Kind        MediaKind `json:"kind" bson:"kind"`
	ContentType string    `json:"contentType,omitempty" bson:"contentType,omitempty"`
	Size        int64     `json:"size,omitempty" bson:"size,omitempty"`
}

// Comment is an entry in a post's comment thread.
type Comment struct {
	ID        string    `json:"id" bson:"id"`
	Author    UserRef   `json:"author" bson:"author"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Post is an ephemeral feed entry.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	Author    UserRef   `json:"author" bson:"author"`
	Content   string    `json:"content,omitempty" bson:"content,omitempty"`
	Media     *Media    `json:"media" bson:"media,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
	Likes     []string  `json:"likes" bson:"likes"`
	Comments  []Comment `json:"comments" bson:"comments"`
}

// ExpiresAtFor returns the expiry instant for a post created at createdAt.
func ExpiresAtFor(createdAt time.Time) time.Time {
	return createdAt.Add(PostLifetime)
}

// HasBody reports whether the post satisfies the content-or-media rule.
func (p *Post) HasBody() bool {
	return strings.TrimSpace(p.Content) != "" || p.Media != nil
}

// Expired reports whether the post has outlived PostLifetime at now.
func (p *Post) Expired(now time.Time) bool {
	return !now.Before(ExpiresAtFor(p.CreatedAt))
}

// LikedBy reports whether userID has liked the post.
func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// ToggleLike flips userID's membership in Likes and reports the new state.
func (p *Post) ToggleLike(userID string) bool {
	if i := slices.Index(p.Likes, userID); i >= 0 {
		p.Likes = slices.Delete(p.Likes, i, i+1)
		return false
	}
	p.Likes = append(p.Likes, userID)
	return true
}

// Comment returns the comment with the given id.
func (p *Post) Comment(commentID string) (Comment, bool) {
	for _, c := range p.Comments {
		if c.ID == commentID {
			return c, true
		}
	}
	return Comment{}, false
}

// RemoveComment deletes the comment with the given id and reports whether it existed.
func (p *Post) RemoveComment(commentID string) bool {
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = slices.Delete(p.Comments, i, i+1)
			return true
		}
	}
	return false
}

// CanDeleteComment reports whether userID may delete the comment: the
// comment's author and the post's author both may.
func (p *Post) CanDeleteComment(commentID, userID string) bool {
	c, ok := p.Comment(commentID)
	if !ok || userID == "" {
		return false
	}
	return c.Author.ID == userID || p.Author.ID == userID
}

// CanDelete reports whether userID may delete the post.
func (p *Post) CanDelete(userID string) bool {
	return userID != "" && p.Author.ID == userID
}

// Normalize replaces nil collections with empty ones so the wire format
// always carries arrays.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	if p.ExpiresAt.IsZero() && !p.CreatedAt.IsZero() {
		p.ExpiresAt = ExpiresAtFor(p.CreatedAt)
	}
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() Post {
	cp := *p
	cp.Likes = slices.Clone(p.Likes)
	cp.Comments = slices.Clone(p.Comments)
	if p.Media != nil {
		m := *p.Media
		cp.Media = &m
	}
	return cp
}
