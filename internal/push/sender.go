// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/flyfitness/internal/config"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/metrics"
	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// Delivery results recorded in metrics.
const (
	resultSent    = "sent"
	resultPruned  = "pruned"
	resultFailed  = "failed"
	resultSkipped = "circuit_open"
)

// Payload is the JSON document handed to the service worker.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Result summarizes one fan-out.
type Result struct {
	Sent   int `json:"sent"`
	Pruned int `json:"pruned"`
	Failed int `json:"failed"`
}

// SenderConfig configures a Sender.
type SenderConfig struct {
	Keys VAPIDKeys

	// Subject is the VAPID contact, a mailto: or https: URI.
	Subject string

	// TTL is how long the push service retains undelivered messages.
	TTL time.Duration

	// RatePerSecond limits deliveries. Zero disables limiting.
	RatePerSecond float64

	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration

	// HTTPClient overrides the client used to reach push services.
	HTTPClient webpush.HTTPClient
}

// SenderConfigFromConfig maps push settings onto SenderConfig.
func SenderConfigFromConfig(cfg *config.PushConfig, keys VAPIDKeys) SenderConfig {
	return SenderConfig{
		Keys:               keys,
		Subject:            cfg.Subject,
		TTL:                cfg.TTL,
		RatePerSecond:      cfg.RatePerSecond,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerTimeout:     cfg.BreakerTimeout,
	}
}

// errPushService marks responses that count against the circuit breaker.
var errPushService = errors.New("push service error")

// Sender delivers Web Push notifications.
type Sender struct {
	store   store.PushStore
	cfg     SenderConfig
	breaker *gobreaker.CircuitBreaker[int]
	limiter *rate.Limiter
}

// NewSender creates a sender.
func NewSender(s store.PushStore, cfg SenderConfig) *Sender {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	maxFailures := cfg.BreakerMaxFailures
	breaker := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        "webpush",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, errPushService)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Push circuit breaker state changed")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := int(cfg.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Sender{store: s, cfg: cfg, breaker: breaker, limiter: limiter}
}

// PublicKey returns the VAPID application server key for clients.
func (s *Sender) PublicKey() string {
	return s.cfg.Keys.Public
}

// SendToUser delivers payload to every subscription of userID.
func (s *Sender) SendToUser(ctx context.Context, userID string, payload Payload) (Result, error) {
	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("list subscriptions: %w", err)
	}
	return s.fanOut(ctx, subs, payload)
}

// Broadcast delivers payload to every registered subscription.
func (s *Sender) Broadcast(ctx context.Context, payload Payload) (Result, error) {
	subs, err := s.store.ListAllSubscriptions(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list subscriptions: %w", err)
	}
	metrics.PushSubscriptions.Set(float64(len(subs)))
	return s.fanOut(ctx, subs, payload)
}

func (s *Sender) fanOut(ctx context.Context, subs []models.PushSubscription, payload Payload) (Result, error) {
	var res Result
	if len(subs) == 0 {
		return res, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return res, fmt.Errorf("encode payload: %w", err)
	}

	for i := range subs {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return res, err
			}
		}

		switch result := s.deliver(ctx, &subs[i], body); result {
		case resultSent:
			res.Sent++
		case resultPruned:
			res.Pruned++
		default:
			res.Failed++
		}
	}
	return res, nil
}

// deliver sends one message and returns its metrics result.
func (s *Sender) deliver(ctx context.Context, sub *models.PushSubscription, body []byte) string {
	log := logging.Ctx(ctx).With().Str("endpoint_host", endpointHost(sub.Endpoint)).Logger()

	status, err := s.breaker.Execute(func() (int, error) {
		resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
		}, &webpush.Options{
			HTTPClient:      s.cfg.HTTPClient,
			Subscriber:      s.cfg.Subject,
			TTL:             int(s.cfg.TTL.Seconds()),
			Urgency:         webpush.UrgencyNormal,
			VAPIDPublicKey:  s.cfg.Keys.Public,
			VAPIDPrivateKey: s.cfg.Keys.Private,
		})
		if err != nil {
			return 0, fmt.Errorf("%w: %w", errPushService, err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return resp.StatusCode, fmt.Errorf("%w: status %d", errPushService, resp.StatusCode)
		}
		return resp.StatusCode, nil
	})

	result := resultSent
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = resultSkipped
	case err != nil:
		log.Warn().Err(err).Msg("Push delivery failed")
		result = resultFailed
	case status == http.StatusNotFound || status == http.StatusGone:
		if derr := s.store.DeleteSubscription(ctx, sub.Endpoint); derr != nil && !errors.Is(derr, store.ErrNotFound) {
			log.Warn().Err(derr).Msg("Failed to prune expired push subscription")
		}
		log.Info().Int("status", status).Msg("Pruned expired push subscription")
		result = resultPruned
	case status >= 400:
		log.Warn().Int("status", status).Msg("Push service rejected message")
		result = resultFailed
	}

	metrics.RecordPushDelivery(result)
	return result
}
