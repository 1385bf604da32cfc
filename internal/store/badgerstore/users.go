// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// userRecord is the stored form of a user, including the password hash that
// models.User omits from JSON. An update without a hash keeps the stored one.
type userRecord struct {
	models.User
	Hash string `json:"passwordHash"`
}

func newUserRecord(u *models.User) *userRecord {
	return &userRecord{User: *u, Hash: u.PasswordHash}
}

func (r *userRecord) user() *models.User {
	u := r.User
	u.PasswordHash = r.Hash
	return &u
}

func emailKey(email string) string {
	return userEmailKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new user and its email index.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(emailKey(user.Email))); err == nil {
			return store.ErrConflict
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := setJSON(txn, userKeyPrefix+user.ID, newUserRecord(user), 0); err != nil {
			return err
		}
		return txn.Set([]byte(emailKey(user.Email)), []byte(user.ID))
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	var rec userRecord
	if err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKeyPrefix+id, &rec)
	}); err != nil {
		return nil, err
	}
	return rec.user(), nil
}

// GetUserByEmail retrieves a user through the email index.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(emailKey(email)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, userKeyPrefix+string(id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.user(), nil
}

// UpdateUser replaces an existing user record. Email changes move the index.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var existing userRecord
		if err := getJSON(txn, userKeyPrefix+user.ID, &existing); err != nil {
			return err
		}
		if !strings.EqualFold(existing.Email, user.Email) {
			if _, err := txn.Get([]byte(emailKey(user.Email))); err == nil {
				return store.ErrConflict
			}
			if err := txn.Delete([]byte(emailKey(existing.Email))); err != nil {
				return err
			}
			if err := txn.Set([]byte(emailKey(user.Email)), []byte(user.ID)); err != nil {
				return err
			}
		}
		rec := newUserRecord(user)
		if rec.Hash == "" {
			rec.Hash = existing.Hash
		}
		return setJSON(txn, userKeyPrefix+user.ID, rec, 0)
	})
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, userKeyPrefix, func(r userRecord) error {
			users = append(users, *r.user())
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// DeleteUser removes a user and its email index.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var user userRecord
		if err := getJSON(txn, userKeyPrefix+id, &user); err != nil {
			return err
		}
		if err := txn.Delete([]byte(userKeyPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(emailKey(user.Email)))
	})
}

// SavePendingRegistration stores a sign-up until its OTP expires.
func (s *Store) SavePendingRegistration(ctx context.Context, reg *models.PendingRegistration) error {
	ttl := reg.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("pending registration already expired")
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, pendingKeyPrefix+strings.ToLower(reg.Email), reg, ttl)
	})
}

// GetPendingRegistration retrieves a pending sign-up by email.
func (s *Store) GetPendingRegistration(_ context.Context, email string) (*models.PendingRegistration, error) {
	var reg models.PendingRegistration
	if err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, pendingKeyPrefix+strings.ToLower(email), &reg)
	}); err != nil {
		return nil, err
	}
	return &reg, nil
}

// DeletePendingRegistration removes a pending sign-up.
func (s *Store) DeletePendingRegistration(ctx context.Context, email string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return deleteKey(txn, pendingKeyPrefix+strings.ToLower(email))
	})
}
