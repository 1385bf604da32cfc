// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/flyfitness/internal/models"
)

// LocalPlatform is an in-process Platform. It generates real P-256
// subscription keys, so the subscriptions it returns are accepted by the
// server, but nothing is ever delivered to it. Useful for CLIs and tests.
type LocalPlatform struct {
	// Answer is what RequestPermission resolves to.
	Answer Permission
	// EndpointBase prefixes generated endpoints.
	EndpointBase string
	// Unsupported makes Supported report false.
	Unsupported bool

	mu         sync.Mutex
	permission Permission
	prompts    int
	workers    int
	sub        *models.PushSubscription
}

// NewLocalPlatform creates a platform that grants permission when asked.
func NewLocalPlatform() *LocalPlatform {
	return &LocalPlatform{
		Answer:       PermissionGranted,
		EndpointBase: "https://push.invalid/",
		permission:   PermissionDefault,
	}
}

func (p *LocalPlatform) Supported() bool { return !p.Unsupported }

func (p *LocalPlatform) RegisterWorker(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.workers++
	return nil
}

func (p *LocalPlatform) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

// SetPermission forces the permission state.
func (p *LocalPlatform) SetPermission(perm Permission) {
	p.mu.Lock()
	p.permission = perm
	p.mu.Unlock()
}

func (p *LocalPlatform) RequestPermission(context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts++
	p.permission = p.Answer
	return p.permission, nil
}

// Prompts returns how many times permission was requested.
func (p *LocalPlatform) Prompts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts
}

// WorkerRegistrations returns how many times RegisterWorker ran.
func (p *LocalPlatform) WorkerRegistrations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

func (p *LocalPlatform) Subscription(context.Context) (*models.PushSubscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sub == nil {
		return nil, nil
	}
	cp := *p.sub
	return &cp, nil
}

func (p *LocalPlatform) Subscribe(_ context.Context, applicationServerKey string) (*models.PushSubscription, error) {
	if applicationServerKey == "" {
		return nil, errors.New("application server key is required")
	}
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}

	sub := &models.PushSubscription{
		Endpoint: p.EndpointBase + uuid.NewString(),
		Keys: models.PushKeys{
			P256dh: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(secret),
		},
		CreatedAt: time.Now().UTC(),
	}

	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()
	cp := *sub
	return &cp, nil
}

func (p *LocalPlatform) Unsubscribe(context.Context) error {
	p.mu.Lock()
	p.sub = nil
	p.mu.Unlock()
	return nil
}
