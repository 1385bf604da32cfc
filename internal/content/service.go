// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package content manages the public gym content shown on the marketing
// pages: trainers, classes, testimonials and motivational messages. Content
// is readable by anyone and edited by administrators.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

var (
	ErrNotFound     = errors.New("content item not found")
	ErrInvalidKind  = errors.New("unknown content kind")
	ErrMissingTitle = errors.New("title is required")
)

// Input carries the editable fields of a content item.
type Input struct {
	Title      string            `json:"title" validate:"required,notblank,max=200"`
	Body       string            `json:"body,omitempty" validate:"max=5000"`
	ImageURL   string            `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Service implements content CRUD.
type Service struct {
	store store.ContentStore

	// timeFunc allows injecting a custom time source for testing
	timeFunc func() time.Time
}

// NewService creates a content service.
func NewService(s store.ContentStore) *Service {
	return &Service{store: s, timeFunc: time.Now}
}

func checkKind(kind models.ContentKind) error {
	for _, k := range models.ContentKinds {
		if k == kind {
			return nil
		}
	}
	return ErrInvalidKind
}

// List returns every item of kind, oldest first.
func (s *Service) List(ctx context.Context, kind models.ContentKind) ([]models.ContentItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	items, err := s.store.ListContent(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return items, nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, kind models.ContentKind, id string) (*models.ContentItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	item, err := s.store.GetContent(ctx, kind, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return item, nil
}

// Create adds an item of kind.
func (s *Service) Create(ctx context.Context, kind models.ContentKind, in Input) (*models.ContentItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrMissingTitle
	}
	now := s.timeFunc().UTC()
	item := &models.ContentItem{
		ID:         uuid.NewString(),
		Kind:       kind,
		Title:      strings.TrimSpace(in.Title),
		Body:       strings.TrimSpace(in.Body),
		ImageURL:   strings.TrimSpace(in.ImageURL),
		Attributes: in.Attributes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateContent(ctx, item); err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	return item, nil
}

// Update replaces the editable fields of an item.
func (s *Service) Update(ctx context.Context, kind models.ContentKind, id string, in Input) (*models.ContentItem, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrMissingTitle
	}
	item, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	item.Title = strings.TrimSpace(in.Title)
	item.Body = strings.TrimSpace(in.Body)
	item.ImageURL = strings.TrimSpace(in.ImageURL)
	item.Attributes = in.Attributes
	item.UpdatedAt = s.timeFunc().UTC()

	err = s.store.UpdateContent(ctx, item)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}
	return item, nil
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, kind models.ContentKind, id string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	err := s.store.DeleteContent(ctx, kind, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

// Seed loads the sample catalog for every kind that has no items yet.
func (s *Service) Seed(ctx context.Context) error {
	for _, kind := range models.ContentKinds {
		existing, err := s.List(ctx, kind)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		for _, in := range sampleContent[kind] {
			if _, err := s.Create(ctx, kind, in); err != nil {
				return err
			}
		}
		logging.Ctx(ctx).Info().Str("kind", string(kind)).Int("items", len(sampleContent[kind])).Msg("Seeded sample content")
	}
	return nil
}
