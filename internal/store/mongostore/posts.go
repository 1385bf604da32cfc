// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// CreatePost inserts a new post document.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	post.Normalize()
	_, err := s.posts.InsertOne(ctx, post)
	return mapErr(err)
}

// GetPost retrieves a post by ID.
func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, mapErr(err)
	}
	post.Normalize()
	return &post, nil
}

// ListPosts returns live posts, newest first.
func (s *Store) ListPosts(ctx context.Context, now time.Time) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.posts.Find(ctx, bson.M{"expiresAt": bson.M{"$gt": now}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	posts, err := decodeAll[models.Post](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

// toggleLikePipeline removes userID from likes when present and appends it otherwise,
// in a single server-side update.
func toggleLikePipeline(userID string) mongo.Pipeline {
	likes := bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"likes": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{userID, likes}},
				bson.M{"$filter": bson.M{
					"input": likes,
					"cond":  bson.M{"$ne": bson.A{"$$this", userID}},
				}},
				bson.M{"$concatArrays": bson.A{likes, bson.A{userID}}},
			}},
		}}},
	}
}

// ToggleLike flips the user's like with one atomic pipeline update.
func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var result struct {
		Likes []string `bson:"likes"`
	}
	err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": postID}, toggleLikePipeline(userID), opts).Decode(&result)
	if err != nil {
		return false, 0, mapErr(err)
	}

	liked := false
	for _, id := range result.Likes {
		if id == userID {
			liked = true
			break
		}
	}
	return liked, len(result.Likes), nil
}

// AddComment pushes a comment onto the post's thread.
func (s *Store) AddComment(ctx context.Context, postID string, comment models.Comment) error {
	res, err := s.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return fmt.Errorf("push comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteComment pulls a comment from the post's thread.
func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"comments": bson.M{"id": commentID}}},
	)
	if err != nil {
		return fmt.Errorf("pull comment: %w", err)
	}
	if res.MatchedCount == 0 || res.ModifiedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeletePost removes a post document.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteExpiredPosts removes posts whose expiresAt has passed and returns them.
func (s *Store) DeleteExpiredPosts(ctx context.Context, now time.Time) ([]models.Post, error) {
	filter := bson.M{"expiresAt": bson.M{"$lte": now}}
	cur, err := s.posts.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find expired posts: %w", err)
	}
	expired, err := decodeAll[models.Post](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode expired posts: %w", err)
	}
	if len(expired) == 0 {
		return nil, nil
	}

	ids := make(bson.A, 0, len(expired))
	for i := range expired {
		ids = append(ids, expired[i].ID)
	}
	if _, err := s.posts.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("delete expired posts: %w", err)
	}
	return expired, nil
}

// SaveMedia streams an attachment into GridFS under the given id.
func (s *Store) SaveMedia(_ context.Context, id, contentType string, r io.Reader) (int64, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	stream, err := s.bucket.OpenUploadStreamWithID(id, id, opts)
	if err != nil {
		return 0, fmt.Errorf("open upload stream: %w", err)
	}
	n, err := io.Copy(stream, r)
	if err != nil {
		_ = stream.Abort()
		return 0, fmt.Errorf("upload media: %w", err)
	}
	if err := stream.Close(); err != nil {
		return 0, fmt.Errorf("finish upload: %w", err)
	}
	return n, nil
}

// OpenMedia opens a GridFS download stream.
func (s *Store) OpenMedia(_ context.Context, id string) (io.ReadCloser, string, error) {
	stream, err := s.bucket.OpenDownloadStream(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", store.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("open download stream: %w", err)
	}

	contentType := ""
	if meta := stream.GetFile().Metadata; meta != nil {
		if v, ok := meta.Lookup("contentType").StringValueOK(); ok {
			contentType = v
		}
	}
	return stream, contentType, nil
}

// DeleteMedia removes a GridFS file. Missing files are not an error.
func (s *Store) DeleteMedia(_ context.Context, id string) error {
	err := s.bucket.Delete(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil
	}
	return err
}
