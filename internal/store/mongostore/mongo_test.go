// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package mongostore

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tomtom215/flyfitness/internal/store"
)

func TestMapErr(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	other := errors.New("network down")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no documents", mongo.ErrNoDocuments, store.ErrNotFound},
		{"wrapped no documents", fmt.Errorf("find: %w", mongo.ErrNoDocuments), store.ErrNotFound},
		{"duplicate key", dup, store.ErrConflict},
		{"passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErr(tt.in)
			if !errors.Is(got, tt.want) && got != tt.want {
				t.Errorf("mapErr(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToggleLikePipeline(t *testing.T) {
	p := toggleLikePipeline("alice")
	if len(p) != 1 {
		t.Fatalf("pipeline stages = %d, want 1", len(p))
	}

	raw, err := bson.Marshal(p[0])
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}

	var stage bson.M
	if err := bson.Unmarshal(raw, &stage); err != nil {
		t.Fatalf("bson.Unmarshal() error = %v", err)
	}

	set, ok := stage["$set"].(bson.M)
	if !ok {
		t.Fatalf("stage = %v, want $set", stage)
	}
	likes, ok := set["likes"].(bson.M)
	if !ok {
		t.Fatalf("$set = %v, want likes expression", set)
	}
	cond, ok := likes["$cond"].(bson.A)
	if !ok || len(cond) != 3 {
		t.Fatalf("likes = %v, want $cond with 3 branches", likes)
	}
}
