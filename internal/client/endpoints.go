// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/tomtom215/flyfitness/internal/models"
)

// Session is a successful login or registration.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// MediaFile is an attachment for a new post.
type MediaFile struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Capabilities returns the server's feature flags. No credential needed.
func (c *Client) Capabilities(ctx context.Context) (*models.Capabilities, error) {
	var caps models.Capabilities
	if err := c.call(ctx, http.MethodGet, "/capabilities", nil, &caps); err != nil {
		return nil, fmt.Errorf("get capabilities: %w", err)
	}
	return &caps, nil
}

// Register starts a sign-up. The server mails a one-time code.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	payload := map[string]string{"name": name, "email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/auth/register", payload, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// VerifyOTP completes a sign-up with the mailed code.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	var sess Session
	payload := map[string]string{"email": email, "otp": code}
	if err := c.call(ctx, http.MethodPost, "/auth/verify-otp", payload, &sess); err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	return &sess, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var sess Session
	payload := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/auth/login", payload, &sess); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &sess, nil
}

// Profile returns the current user.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &user, nil
}

// ListPosts returns the live feed in server order.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.call(ctx, http.MethodGet, "/feed/posts", nil, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// CreatePost uploads a post as multipart/form-data. media may be nil.
func (c *Client) CreatePost(ctx context.Context, content string, media *MediaFile) (*models.Post, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("content", content); err != nil {
		return nil, fmt.Errorf("write content field: %w", err)
	}
	if media != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename=%q`, media.Filename))
		if media.ContentType != "" {
			hdr.Set("Content-Type", media.ContentType)
		}
		part, err := mw.CreatePart(hdr)
		if err != nil {
			return nil, fmt.Errorf("create media part: %w", err)
		}
		if _, err := io.Copy(part, media.Reader); err != nil {
			return nil, fmt.Errorf("copy media: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var post models.Post
	req := request{
		method:      http.MethodPost,
		path:        "/feed/posts",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	if err := c.do(ctx, req, &post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// ToggleLike flips the caller's like and returns the server's state.
func (c *Client) ToggleLike(ctx context.Context, postID string) (bool, int, error) {
	var res struct {
		Liked bool `json:"liked"`
		Likes int  `json:"likes"`
	}
	if err := c.call(ctx, http.MethodPost, "/feed/posts/"+url.PathEscape(postID)+"/like", nil, &res); err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}
	return res.Liked, res.Likes, nil
}

// AddComment posts a comment and returns it as stored.
func (c *Client) AddComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	var comment models.Comment
	payload := map[string]string{"text": text}
	if err := c.call(ctx, http.MethodPost, "/feed/posts/"+url.PathEscape(postID)+"/comments", payload, &comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return &comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	path := "/feed/posts/" + url.PathEscape(postID) + "/comments/" + url.PathEscape(commentID)
	if err := c.call(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	if err := c.call(ctx, http.MethodDelete, "/feed/posts/"+url.PathEscape(postID), nil, nil); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Notifications lists the caller's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var list []models.Notification
	if err := c.call(ctx, http.MethodGet, "/notifications", nil, &list); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// UnreadCount returns the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var res struct {
		Count int `json:"count"`
	}
	if err := c.call(ctx, http.MethodGet, "/notifications/unread-count", nil, &res); err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return res.Count, nil
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read", nil, nil); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead marks every notification read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	if err := c.call(ctx, http.MethodPut, "/notifications/read-all", nil, nil); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// DeleteNotification removes a notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// VAPIDPublicKey returns the key browsers subscribe with. No credential needed.
func (c *Client) VAPIDPublicKey(ctx context.Context) (string, error) {
	var res struct {
		PublicKey string `json:"publicKey"`
	}
	if err := c.call(ctx, http.MethodGet, "/push/vapid-public-key", nil, &res); err != nil {
		return "", fmt.Errorf("get vapid public key: %w", err)
	}
	return res.PublicKey, nil
}

// SubscribePush registers a push subscription for the caller.
func (c *Client) SubscribePush(ctx context.Context, sub models.PushSubscription) error {
	payload := map[string]any{"endpoint": sub.Endpoint, "keys": sub.Keys}
	if err := c.call(ctx, http.MethodPost, "/push/subscribe", payload, nil); err != nil {
		return fmt.Errorf("subscribe push: %w", err)
	}
	return nil
}

// UnsubscribePush removes a push subscription.
func (c *Client) UnsubscribePush(ctx context.Context, endpoint string) error {
	payload := map[string]string{"endpoint": endpoint}
	if err := c.call(ctx, http.MethodPost, "/push/unsubscribe", payload, nil); err != nil {
		return fmt.Errorf("unsubscribe push: %w", err)
	}
	return nil
}
