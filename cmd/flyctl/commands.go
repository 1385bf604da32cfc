// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tomtom215/flyfitness/internal/client"
	"github.com/tomtom215/flyfitness/internal/client/feed"
	"github.com/tomtom215/flyfitness/internal/client/notifications"
	"github.com/tomtom215/flyfitness/internal/client/session"
)

func (a *app) requireSession() error {
	if !a.sess.IsAuthenticated() {
		return session.ErrNotAuthenticated
	}
	if a.sess.TokenExpired(time.Now()) {
		_ = a.sess.Logout()
		return fmt.Errorf("session expired, run flyctl login: %w", session.ErrNotAuthenticated)
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: login EMAIL PASSWORD", ErrUsage)
	}
	s, err := a.api.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.sess.Login(ctx, s.Token, s.User); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s <%s>\n", s.User.Name, s.User.Email)
	return nil
}

func (a *app) logout() error {
	if err := a.sess.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) whoami() error {
	u := a.sess.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s\n", u.Name, u.Email, u.Role)
	if a.sess.TokenExpired(time.Now()) {
		fmt.Fprintln(a.out, "Session expired, run flyctl login")
	}
	return nil
}

// loadFeed fetches posts so that mutations find them locally.
func (a *app) loadFeed(ctx context.Context) (*feed.Store, error) {
	posts := feed.NewStore(a.api, a.sess.UserID)
	if _, err := posts.FetchPosts(ctx); err != nil {
		return nil, err
	}
	return posts, nil
}

func (a *app) feed(ctx context.Context) error {
	posts, err := a.loadFeed(ctx)
	if err != nil {
		return err
	}
	if posts.ShowingSamples() {
		fmt.Fprintln(a.out, "The feed is unavailable on this server. Showing sample posts.")
	}
	views := posts.Views()
	if len(views) == 0 {
		fmt.Fprintln(a.out, "No posts in the last 24 hours")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAUTHOR\tLIKES\tCOMMENTS\tLEFT\tCONTENT")
	for _, v := range views {
		likes := fmt.Sprint(v.LikeCount)
		if v.LikedByViewer {
			likes += "*"
		}
		content := oneLine(v.Content, 60)
		if v.Media != nil {
			content = strings.TrimSpace("[" + string(v.Media.Kind) + "] " + content)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			v.ID, v.Author.Name, likes, len(v.Comments), v.TimeRemaining, content)
	}
	return tw.Flush()
}

func (a *app) post(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	mediaPath := fs.String("media", "", "photo or video to attach")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: post [-media FILE] TEXT", ErrUsage)
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	var media *client.MediaFile
	if *mediaPath != "" {
		f, err := os.Open(*mediaPath)
		if err != nil {
			return fmt.Errorf("open media: %w", err)
		}
		defer f.Close()
		media = &client.MediaFile{
			Filename:    filepath.Base(*mediaPath),
			ContentType: mime.TypeByExtension(filepath.Ext(*mediaPath)),
			Reader:      f,
		}
	}

	posts, err := a.loadFeed(ctx)
	if err != nil {
		return err
	}
	p, err := posts.CreatePost(ctx, strings.Join(fs.Args(), " "), media)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Posted %s, visible until %s\n", p.ID, p.ExpiresAt.Local().Format(time.Kitchen))
	return nil
}

func (a *app) like(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: like POST_ID", ErrUsage)
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	posts, err := a.loadFeed(ctx)
	if err != nil {
		return err
	}
	liked, count, err := posts.ToggleLike(ctx, args[0])
	if err != nil {
		return err
	}
	verb := "Unliked"
	if liked {
		verb = "Liked"
	}
	fmt.Fprintf(a.out, "%s %s (%d likes)\n", verb, args[0], count)
	return nil
}

func (a *app) comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: comment POST_ID TEXT", ErrUsage)
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	posts, err := a.loadFeed(ctx)
	if err != nil {
		return err
	}
	c, err := posts.AddComment(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Commented %s on %s\n", c.ID, args[0])
	return nil
}

func (a *app) loadInbox(ctx context.Context) (*notifications.Store, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}
	inbox := notifications.NewStore(a.api)
	if err := inbox.Refresh(ctx); err != nil {
		return nil, err
	}
	return inbox, nil
}

func (a *app) notifications(ctx context.Context) error {
	inbox, err := a.loadInbox(ctx)
	if err != nil {
		return err
	}
	items := inbox.Items()
	fmt.Fprintf(a.out, "%d unread\n", inbox.UnreadCount())
	if len(items) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, n := range items {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, n.ID, n.Type, oneLine(n.Content, 70))
	}
	return tw.Flush()
}

func (a *app) read(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: read ID|all", ErrUsage)
	}
	inbox, err := a.loadInbox(ctx)
	if err != nil {
		return err
	}
	if args[0] == "all" {
		err = inbox.MarkAllAsRead(ctx)
	} else {
		err = inbox.MarkAsRead(ctx, args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d unread\n", inbox.UnreadCount())
	return nil
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
