// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Command flyctl is a terminal client for a Fly Fitness Zone server.
//
// Usage:
//
//	flyctl [-server URL] [-session FILE] <command> [args]
//
// Commands:
//
//	login EMAIL PASSWORD     sign in and store the session
//	logout                   forget the stored session
//	whoami                   show the signed-in member
//	feed                     list live posts with time remaining
//	post [-media FILE] TEXT  share a post, optionally with a photo or video
//	like POST_ID             toggle your like on a post
//	comment POST_ID TEXT     comment on a post
//	notifications            list notifications, newest first
//	read ID|all              mark one or every notification read
//
// The server defaults to $FLYFITNESS_SERVER or http://localhost:8080. The
// session is kept in the user config directory so that every invocation
// shares it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tomtom215/flyfitness/internal/client"
	"github.com/tomtom215/flyfitness/internal/client/session"
	"github.com/tomtom215/flyfitness/internal/logging"
)

const defaultServer = "http://localhost:8080"

// ErrUsage is returned for unknown commands and missing arguments.
var ErrUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "flyctl:", err)
		os.Exit(1)
	}
}

// run parses global flags, opens the session and dispatches one command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	logging.Init(logging.Config{Level: "warn", Format: "console", Output: stderr})

	fs := flag.NewFlagSet("flyctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", envOr("FLYFITNESS_SERVER", defaultServer), "server base URL")
	sessionPath := fs.String("session", defaultSessionPath(), "session file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	a, err := newApp(*server, *sessionPath, stdout)
	if err != nil {
		return err
	}
	return a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".flyfitness-session.json"
	}
	return filepath.Join(dir, "flyfitness", "session.json")
}

// app holds the SDK objects one invocation works with.
type app struct {
	api  *client.Client
	sess *session.Context
	out  io.Writer
}

func newApp(server, sessionPath string, out io.Writer) (*app, error) {
	if err := os.MkdirAll(filepath.Dir(sessionPath), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	sess, err := session.New(session.NewFileStorage(sessionPath))
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	api := client.New(server,
		client.WithTokenSource(sess),
		client.WithUnauthorizedHandler(func() { _ = sess.Logout() }),
	)
	return &app{api: api, sess: sess, out: out}, nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "feed":
		return a.feed(ctx)
	case "post":
		return a.post(ctx, args)
	case "like":
		return a.like(ctx, args)
	case "comment":
		return a.comment(ctx, args)
	case "notifications":
		return a.notifications(ctx)
	case "read":
		return a.read(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}
