// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package badgerstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to open in-memory BadgerDB: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newPost(id, authorID string, createdAt time.Time) *models.Post {
	return &models.Post{
		ID:        id,
		Author:    models.UserRef{ID: authorID, Name: authorID},
		Content:   "post " + id,
		CreatedAt: createdAt,
		ExpiresAt: models.ExpiresAtFor(createdAt),
	}
}

func TestStore_CreateAndGetPost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.CreatePost(ctx, newPost("p1", "alice", now)); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if err := s.CreatePost(ctx, newPost("p1", "alice", now)); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate CreatePost() error = %v, want ErrConflict", err)
	}

	got, err := s.GetPost(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if got.Content != "post p1" || got.Likes == nil || got.Comments == nil {
		t.Errorf("GetPost() = %+v", got)
	}

	if _, err := s.GetPost(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetPost(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListPostsExcludesExpiredNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, p := range []*models.Post{
		newPost("old", "a", now.Add(-2*time.Hour)),
		newPost("new", "a", now.Add(-time.Minute)),
		newPost("expired", "a", now.Add(-25*time.Hour)),
	} {
		if err := s.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost(%s) error = %v", p.ID, err)
		}
	}

	posts, err := s.ListPosts(ctx, now)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("ListPosts() returned %d posts, want 2", len(posts))
	}
	if posts[0].ID != "new" || posts[1].ID != "old" {
		t.Errorf("order = [%s %s], want [new old]", posts[0].ID, posts[1].ID)
	}
}

func TestStore_ToggleLike(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.CreatePost(ctx, newPost("p1", "alice", time.Now())); err != nil {
		t.Fatal(err)
	}

	liked, count, err := s.ToggleLike(ctx, "p1", "bob")
	if err != nil || !liked || count != 1 {
		t.Fatalf("first ToggleLike() = %v, %d, %v; want true, 1, nil", liked, count, err)
	}
	liked, count, err = s.ToggleLike(ctx, "p1", "bob")
	if err != nil || liked || count != 0 {
		t.Fatalf("second ToggleLike() = %v, %d, %v; want false, 0, nil", liked, count, err)
	}

	if _, _, err := s.ToggleLike(ctx, "missing", "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ToggleLike(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_ToggleLikeConcurrentUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.CreatePost(ctx, newPost("p1", "alice", time.Now())); err != nil {
		t.Fatal(err)
	}

	const users = 8
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, _, err := s.ToggleLike(ctx, "p1", string(rune('a'+i))); err != nil {
				t.Errorf("ToggleLike() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	post, err := s.GetPost(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(post.Likes) != users {
		t.Errorf("likes = %d, want %d (lost update)", len(post.Likes), users)
	}
}

func TestStore_Comments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.CreatePost(ctx, newPost("p1", "alice", time.Now())); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"c1", "c2", "c3"} {
		c := models.Comment{ID: id, Author: models.UserRef{ID: "bob"}, Text: id, CreatedAt: time.Now()}
		if err := s.AddComment(ctx, "p1", c); err != nil {
			t.Fatalf("AddComment(%s) error = %v", id, err)
		}
	}
	if err := s.DeleteComment(ctx, "p1", "c2"); err != nil {
		t.Fatalf("DeleteComment() error = %v", err)
	}
	if err := s.DeleteComment(ctx, "p1", "c2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second DeleteComment() error = %v, want ErrNotFound", err)
	}

	post, _ := s.GetPost(ctx, "p1")
	if len(post.Comments) != 2 || post.Comments[0].ID != "c1" || post.Comments[1].ID != "c3" {
		t.Errorf("comments = %+v, want [c1 c3] in insertion order", post.Comments)
	}
}

func TestStore_DeleteExpiredPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.CreatePost(ctx, newPost("live", "a", now)); err != nil {
		t.Fatal(err)
	}
	if err := s.CreatePost(ctx, newPost("dead", "a", now.Add(-30*time.Hour))); err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteExpiredPosts(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredPosts() error = %v", err)
	}
	if len(removed) != 1 || removed[0].ID != "dead" {
		t.Errorf("removed = %+v, want [dead]", removed)
	}
	if _, err := s.GetPost(ctx, "dead"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expired post still present: %v", err)
	}
	if _, err := s.GetPost(ctx, "live"); err != nil {
		t.Errorf("live post removed: %v", err)
	}
}

func TestStore_Media(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	payload := []byte("\x89PNG fake image")

	n, err := s.SaveMedia(ctx, "m1", "image/png", bytes.NewReader(payload))
	if err != nil || n != int64(len(payload)) {
		t.Fatalf("SaveMedia() = %d, %v", n, err)
	}

	rc, ct, err := s.OpenMedia(ctx, "m1")
	if err != nil {
		t.Fatalf("OpenMedia() error = %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, payload) || ct != "image/png" {
		t.Errorf("OpenMedia() = %q, %q", got, ct)
	}

	if err := s.DeleteMedia(ctx, "m1"); err != nil {
		t.Fatalf("DeleteMedia() error = %v", err)
	}
	if _, _, err := s.OpenMedia(ctx, "m1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("OpenMedia after delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_MediaInMemoryLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if s.MaxMediaBytes() != InMemoryMaxMediaBytes {
		t.Fatalf("MaxMediaBytes() = %d", s.MaxMediaBytes())
	}
	fits := bytes.Repeat([]byte{0xff}, int(InMemoryMaxMediaBytes)-1024)
	if _, err := s.SaveMedia(ctx, "fits", "video/mp4", bytes.NewReader(fits)); err != nil {
		t.Fatalf("SaveMedia() under the limit error = %v", err)
	}

	big := bytes.Repeat([]byte{0xff}, 2<<20)
	if _, err := s.SaveMedia(ctx, "big", "video/mp4", bytes.NewReader(big)); !errors.Is(err, store.ErrTooLarge) {
		t.Errorf("SaveMedia(2MB) error = %v, want ErrTooLarge", err)
	}
	if _, _, err := s.OpenMedia(ctx, "big"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("rejected media stored: %v", err)
	}
}

func TestStore_Users(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{ID: "u1", Name: "Alice", Email: "Alice@Example.com", Role: models.RoleUser, CreatedAt: time.Now()}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	dup := &models.User{ID: "u2", Email: "alice@example.com"}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate email error = %v, want ErrConflict", err)
	}

	got, err := s.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil || got.ID != "u1" {
		t.Fatalf("GetUserByEmail() = %+v, %v", got, err)
	}

	got.Email = "alice@new.example"
	got.WeightLog = append(got.WeightLog, models.WeightEntry{WeightKg: 70.5, RecordedAt: time.Now()})
	if err := s.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if _, err := s.GetUserByEmail(ctx, "alice@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("old email index still resolves: %v", err)
	}
	reloaded, _ := s.GetUser(ctx, "u1")
	if len(reloaded.WeightLog) != 1 {
		t.Errorf("WeightLog = %+v", reloaded.WeightLog)
	}

	users, _ := s.ListUsers(ctx)
	if len(users) != 1 {
		t.Errorf("ListUsers() = %d users, want 1", len(users))
	}

	if err := s.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := s.GetUser(ctx, "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUser after delete error = %v", err)
	}
}

func TestStore_UserPasswordHashPersists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const hash = "$2a$10$abcdefghijklmnopqrstuv"
	u := &models.User{ID: "u1", Name: "Alice", Email: "alice@example.com", PasswordHash: hash, Role: models.RoleUser}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail.PasswordHash != hash {
		t.Errorf("GetUserByEmail() PasswordHash = %q, want %q", byEmail.PasswordHash, hash)
	}

	// A profile edit that does not carry the hash must not erase it.
	edit := &models.User{ID: "u1", Name: "Alice B", Email: "alice@example.com", Role: models.RoleUser}
	if err := s.UpdateUser(ctx, edit); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	byID, _ := s.GetUser(ctx, "u1")
	if byID.PasswordHash != hash || byID.Name != "Alice B" {
		t.Errorf("GetUser() after update = %+v", byID)
	}

	users, _ := s.ListUsers(ctx)
	if len(users) != 1 || users[0].PasswordHash != hash {
		t.Errorf("ListUsers() lost the hash: %+v", users)
	}
}

func TestStore_PendingRegistration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	reg := &models.PendingRegistration{Email: "new@example.com", OTPHash: "h", ExpiresAt: time.Now().Add(10 * time.Minute)}
	if err := s.SavePendingRegistration(ctx, reg); err != nil {
		t.Fatalf("SavePendingRegistration() error = %v", err)
	}
	got, err := s.GetPendingRegistration(ctx, "NEW@example.com")
	if err != nil || got.OTPHash != "h" {
		t.Fatalf("GetPendingRegistration() = %+v, %v", got, err)
	}
	if err := s.DeletePendingRegistration(ctx, "new@example.com"); err != nil {
		t.Fatalf("DeletePendingRegistration() error = %v", err)
	}

	expired := &models.PendingRegistration{Email: "x@example.com", ExpiresAt: time.Now().Add(-time.Second)}
	if err := s.SavePendingRegistration(ctx, expired); err == nil {
		t.Error("expected error saving an already expired registration")
	}
}

func TestStore_Notifications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"n1", "n2", "n3"} {
		n := &models.Notification{ID: id, UserID: "u1", Type: models.NotificationLike, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := s.CreateNotification(ctx, n); err != nil {
			t.Fatal(err)
		}
	}
	other := &models.Notification{ID: "x1", UserID: "u2", CreatedAt: base}
	if err := s.CreateNotification(ctx, other); err != nil {
		t.Fatal(err)
	}

	list, _ := s.ListNotifications(ctx, "u1")
	if len(list) != 3 || list[0].ID != "n3" {
		t.Fatalf("ListNotifications() = %+v, want 3 newest first", list)
	}

	changed, err := s.MarkRead(ctx, "u1", "n1")
	if err != nil || !changed {
		t.Fatalf("MarkRead() = %v, %v", changed, err)
	}
	changed, _ = s.MarkRead(ctx, "u1", "n1")
	if changed {
		t.Error("second MarkRead() should not report a transition")
	}
	if _, err := s.MarkRead(ctx, "u1", "x1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("MarkRead on another user's notification error = %v, want ErrNotFound", err)
	}

	n, _ := s.MarkAllRead(ctx, "u1")
	if n != 2 {
		t.Errorf("MarkAllRead() = %d, want 2", n)
	}
	unread, _ := s.CountUnread(ctx, "u1")
	if unread != 0 {
		t.Errorf("CountUnread() = %d, want 0", unread)
	}
	if otherUnread, _ := s.CountUnread(ctx, "u2"); otherUnread != 1 {
		t.Errorf("other user's unread = %d, want 1", otherUnread)
	}

	if err := s.DeleteNotification(ctx, "u1", "n2"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteNotification(ctx, "u1", "n2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_PushSubscriptions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := &models.PushSubscription{Endpoint: "https://push.example/abc", UserID: "u1", Keys: models.PushKeys{P256dh: "k", Auth: "a"}}
	if err := s.SaveSubscription(ctx, sub); err != nil {
		t.Fatal(err)
	}
	// Re-registering the same endpoint replaces it.
	sub.UserID = "u2"
	if err := s.SaveSubscription(ctx, sub); err != nil {
		t.Fatal(err)
	}

	all, _ := s.ListAllSubscriptions(ctx)
	if len(all) != 1 {
		t.Fatalf("ListAllSubscriptions() = %d, want 1", len(all))
	}
	mine, _ := s.ListSubscriptions(ctx, "u2")
	if len(mine) != 1 {
		t.Errorf("ListSubscriptions(u2) = %d, want 1", len(mine))
	}

	if err := s.DeleteSubscription(ctx, sub.Endpoint); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSubscription(ctx, sub.Endpoint); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_Content(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := &models.ContentItem{ID: "t1", Kind: models.ContentTrainer, Title: "Coach Kim", CreatedAt: time.Now()}
	if err := s.CreateContent(ctx, item); err != nil {
		t.Fatal(err)
	}
	item.Title = "Coach Kim Lee"
	if err := s.UpdateContent(ctx, item); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetContent(ctx, models.ContentTrainer, "t1")
	if err != nil || got.Title != "Coach Kim Lee" {
		t.Fatalf("GetContent() = %+v, %v", got, err)
	}
	if classes, _ := s.ListContent(ctx, models.ContentClass); len(classes) != 0 {
		t.Errorf("kinds leak across partitions: %+v", classes)
	}

	missing := &models.ContentItem{ID: "nope", Kind: models.ContentClass}
	if err := s.UpdateContent(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateContent(missing) error = %v", err)
	}
	if err := s.DeleteContent(ctx, models.ContentTrainer, "t1"); err != nil {
		t.Fatal(err)
	}
}
