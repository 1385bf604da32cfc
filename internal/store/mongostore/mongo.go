// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package mongostore implements store.Store on MongoDB, with post media kept
// in a GridFS bucket. Expiring documents are additionally covered by TTL indexes.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/flyfitness/internal/store"
)

// Collection names
const (
	postsCollection         = "posts"
	usersCollection         = "users"
	pendingCollection       = "pending_registrations"
	notificationsCollection = "notifications"
	pushCollection          = "push_subscriptions"
	contentCollection       = "content"
)

// postTTLGrace keeps expired posts around long enough for the sweeper to
// release their GridFS media before the TTL monitor removes them.
const postTTLGrace = time.Hour

// Options configures Connect.
type Options struct {
	URI            string
	Database       string
	MediaBucket    string
	ConnectTimeout time.Duration
}

// Store implements store.Store on MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	bucket *gridfs.Bucket

	posts         *mongo.Collection
	users         *mongo.Collection
	pending       *mongo.Collection
	notifications *mongo.Collection
	push          *mongo.Collection
	content       *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect dials MongoDB, verifies the connection and ensures indexes exist.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.MediaBucket == "" {
		opts.MediaBucket = "media"
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s, err := newStore(client, opts.Database, opts.MediaBucket)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func newStore(client *mongo.Client, database, bucketName string) (*Store, error) {
	db := client.Database(database)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &Store{
		client:        client,
		db:            db,
		bucket:        bucket,
		posts:         db.Collection(postsCollection),
		users:         db.Collection(usersCollection),
		pending:       db.Collection(pendingCollection),
		notifications: db.Collection(notificationsCollection),
		push:          db.Collection(pushCollection),
		content:       db.Collection(contentCollection),
	}, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.posts, mongo.IndexModel{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(postTTLGrace.Seconds())),
		}},
		{s.posts, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.pending, mongo.IndexModel{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		}},
		{s.notifications, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{s.push, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}},
		{s.content, mongo.IndexModel{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "createdAt", Value: 1}}}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// Ping verifies the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mapErr translates driver errors into store errors.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrConflict
	default:
		return err
	}
}

// decodeAll drains a cursor into a slice, never returning nil.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
