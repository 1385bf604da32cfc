// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package push

import (
	"errors"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/tomtom215/flyfitness/internal/config"
)

// VAPIDKeys is a base64url encoded P-256 key pair.
type VAPIDKeys struct {
	Public  string
	Private string
}

// LoadKeys returns the configured key pair, generating a fresh one when none
// is configured. generated reports the latter; such keys change on restart
// and invalidate every existing browser subscription.
func LoadKeys(cfg *config.PushConfig) (keys VAPIDKeys, generated bool, err error) {
	switch {
	case cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "":
		return VAPIDKeys{Public: cfg.VAPIDPublicKey, Private: cfg.VAPIDPrivateKey}, false, nil
	case cfg.VAPIDPublicKey != "" || cfg.VAPIDPrivateKey != "":
		return VAPIDKeys{}, false, errors.New("both VAPID keys must be set")
	}

	private, public, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return VAPIDKeys{}, false, fmt.Errorf("generate VAPID keys: %w", err)
	}
	return VAPIDKeys{Public: public, Private: private}, true, nil
}
