// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxLedgerEntries bounds the ledger. Finished entries are dropped oldest
// first; pending ones are never dropped.
const maxLedgerEntries = 256

// MutationKind names an optimistic operation.
type MutationKind string

const (
	KindCreatePost    MutationKind = "create_post"
	KindToggleLike    MutationKind = "toggle_like"
	KindAddComment    MutationKind = "add_comment"
	KindDeleteComment MutationKind = "delete_comment"
	KindDeletePost    MutationKind = "delete_post"
)

// MutationState is where a mutation is in its lifecycle.
type MutationState string

const (
	StatePending    MutationState = "pending"
	StateCommitted  MutationState = "committed"
	StateRolledBack MutationState = "rolled-back"
)

// Mutation is one ledger entry.
type Mutation struct {
	RequestID  string
	Kind       MutationKind
	PostID     string
	State      MutationState
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

type ledger struct {
	mu      sync.Mutex
	limit   int
	entries []*Mutation
}

func newLedger(limit int) *ledger {
	return &ledger{limit: limit}
}

func (l *ledger) begin(kind MutationKind, postID string) *Mutation {
	m := &Mutation{
		RequestID: uuid.NewString(),
		Kind:      kind,
		PostID:    postID,
		State:     StatePending,
		StartedAt: time.Now(),
	}
	l.mu.Lock()
	l.entries = append(l.entries, m)
	l.trimLocked()
	l.mu.Unlock()
	return m
}

func (l *ledger) setPost(m *Mutation, postID string) {
	l.mu.Lock()
	m.PostID = postID
	l.mu.Unlock()
}

func (l *ledger) finish(m *Mutation, state MutationState, err error) {
	l.mu.Lock()
	m.State = state
	m.Err = err
	m.FinishedAt = time.Now()
	l.trimLocked()
	l.mu.Unlock()
}

func (l *ledger) trimLocked() {
	for over := len(l.entries) - l.limit; over > 0; over-- {
		i := 0
		for i < len(l.entries) && l.entries[i].State == StatePending {
			i++
		}
		if i == len(l.entries) {
			return
		}
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
}

func (l *ledger) snapshot() []Mutation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Mutation, len(l.entries))
	for i, m := range l.entries {
		out[i] = *m
	}
	return out
}

// Pending returns the mutations still waiting on the server.
func (s *Store) Pending() []Mutation {
	var out []Mutation
	for _, m := range s.ledger.snapshot() {
		if m.State == StatePending {
			out = append(out, m)
		}
	}
	return out
}
