// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package mongostore

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// CreateUser inserts a user; the unique email index reports duplicates.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	_, err := s.users.InsertOne(ctx, user)
	return mapErr(err)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

// UpdateUser replaces an existing user document.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return decodeAll[models.User](ctx, cur)
}

// DeleteUser removes a user document.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SavePendingRegistration upserts a pending sign-up keyed by email.
func (s *Store) SavePendingRegistration(ctx context.Context, reg *models.PendingRegistration) error {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	_, err := s.pending.ReplaceOne(ctx, bson.M{"_id": reg.Email}, reg, options.Replace().SetUpsert(true))
	return mapErr(err)
}

// GetPendingRegistration retrieves a pending sign-up.
func (s *Store) GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error) {
	var reg models.PendingRegistration
	if err := s.pending.FindOne(ctx, bson.M{"_id": strings.ToLower(email)}).Decode(&reg); err != nil {
		return nil, mapErr(err)
	}
	return &reg, nil
}

// DeletePendingRegistration removes a pending sign-up.
func (s *Store) DeletePendingRegistration(ctx context.Context, email string) error {
	res, err := s.pending.DeleteOne(ctx, bson.M{"_id": strings.ToLower(email)})
	if err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
