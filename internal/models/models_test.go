// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package models

import (
	"testing"
	"time"
)

func TestPost_HasBody(t *testing.T) {
	tests := []struct {
		name string
		post Post
		want bool
	}{
		{"text only", Post{Content: "Leg day done!"}, true},
		{"media only", Post{Media: &Media{Kind: MediaImage}}, true},
		{"whitespace", Post{Content: "  \n\t"}, false},
		{"empty", Post{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.post.HasBody(); got != tt.want {
				t.Errorf("HasBody() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPost_Expired(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	p := Post{CreatedAt: created}

	if p.Expired(created.Add(23 * time.Hour)) {
		t.Error("post should be live after 23h")
	}
	if !p.Expired(created.Add(PostLifetime)) {
		t.Error("post should be expired at exactly 24h")
	}
	if !p.Expired(created.Add(25 * time.Hour)) {
		t.Error("post should be expired after 25h")
	}
}

func TestPost_ToggleLike(t *testing.T) {
	p := Post{}
	if !p.ToggleLike("u1") || !p.LikedBy("u1") {
		t.Fatal("first toggle should like")
	}
	if p.ToggleLike("u1") || p.LikedBy("u1") {
		t.Fatal("second toggle should unlike")
	}
	if len(p.Likes) != 0 {
		t.Errorf("Likes = %v, want empty", p.Likes)
	}
}

func TestPost_CanDeleteComment(t *testing.T) {
	p := Post{
		Author: UserRef{ID: "owner"},
		Comments: []Comment{
			{ID: "c1", Author: UserRef{ID: "commenter"}},
		},
	}

	tests := []struct {
		user string
		want bool
	}{
		{"commenter", true},
		{"owner", true},
		{"stranger", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := p.CanDeleteComment("c1", tt.user); got != tt.want {
			t.Errorf("CanDeleteComment(c1, %q) = %v, want %v", tt.user, got, tt.want)
		}
	}
	if p.CanDeleteComment("missing", "owner") {
		t.Error("missing comment should not be deletable")
	}
}

func TestPost_CloneIsDeep(t *testing.T) {
	p := Post{Likes: []string{"a"}, Comments: []Comment{{ID: "c"}}, Media: &Media{URL: "x"}}
	cp := p.Clone()
	cp.Likes[0] = "b"
	cp.Comments[0].ID = "d"
	cp.Media.URL = "y"

	if p.Likes[0] != "a" || p.Comments[0].ID != "c" || p.Media.URL != "x" {
		t.Error("Clone shares state with the original")
	}
}

func TestPost_Normalize(t *testing.T) {
	created := time.Now()
	p := Post{CreatedAt: created}
	p.Normalize()
	if p.Likes == nil || p.Comments == nil {
		t.Error("Normalize should allocate empty slices")
	}
	if !p.ExpiresAt.Equal(created.Add(24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v, want createdAt+24h", p.ExpiresAt)
	}
}

func TestMediaKindFromContentType(t *testing.T) {
	tests := map[string]MediaKind{
		"image/png":       MediaImage,
		"video/mp4":       MediaVideo,
		"application/pdf": "",
	}
	for ct, want := range tests {
		if got := MediaKindFromContentType(ct); got != want {
			t.Errorf("MediaKindFromContentType(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestParseContentKind(t *testing.T) {
	tests := []struct {
		in   string
		want ContentKind
		ok   bool
	}{
		{"trainer", ContentTrainer, true},
		{"trainers", ContentTrainer, true},
		{"classes", ContentClass, true},
		{"testimonials", ContentTestimonial, true},
		{"message", ContentMessage, true},
		{"fees", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseContentKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseContentKind(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestUnreadCount(t *testing.T) {
	list := []Notification{{Read: false}, {Read: true}, {Read: false}}
	if got := UnreadCount(list); got != 2 {
		t.Errorf("UnreadCount() = %d, want 2", got)
	}
}

func TestNotificationType_Valid(t *testing.T) {
	if !NotificationAchievement.Valid() {
		t.Error("achievement should be valid")
	}
	if NotificationType("spam").Valid() {
		t.Error("spam should be invalid")
	}
}
