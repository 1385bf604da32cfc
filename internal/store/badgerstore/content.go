// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package badgerstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

func contentKey(kind models.ContentKind, id string) string {
	return contentKeyPrefix + string(kind) + ":" + id
}

// CreateContent stores a new content item.
func (s *Store) CreateContent(ctx context.Context, item *models.ContentItem) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(contentKey(item.Kind, item.ID))); err == nil {
			return store.ErrConflict
		}
		return setJSON(txn, contentKey(item.Kind, item.ID), item, 0)
	})
}

// GetContent retrieves a content item.
func (s *Store) GetContent(_ context.Context, kind models.ContentKind, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, contentKey(kind, id), &item)
	}); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListContent returns items of one kind, oldest first.
func (s *Store) ListContent(_ context.Context, kind models.ContentKind) ([]models.ContentItem, error) {
	items := make([]models.ContentItem, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, contentKeyPrefix+string(kind)+":", func(item models.ContentItem) error {
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// UpdateContent replaces an existing content item.
func (s *Store) UpdateContent(ctx context.Context, item *models.ContentItem) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(contentKey(item.Kind, item.ID))); err != nil {
			return store.ErrNotFound
		}
		return setJSON(txn, contentKey(item.Kind, item.ID), item, 0)
	})
}

// DeleteContent removes a content item.
func (s *Store) DeleteContent(ctx context.Context, kind models.ContentKind, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return deleteKey(txn, contentKey(kind, id))
	})
}
