// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/flyfitness/internal/config"
	"github.com/tomtom215/flyfitness/internal/models"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func newTestJWTManager(t *testing.T, timeout time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: timeout})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		wantErr bool
	}{
		{"valid secret", &config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: time.Hour}, false},
		{"default timeout", &config.SecurityConfig{JWTSecret: testSecret}, false},
		{"empty secret", &config.SecurityConfig{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewJWTManager(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewJWTManager() unexpected error = %v", err)
			}
			if m.timeout <= 0 {
				t.Errorf("timeout = %v, want positive", m.timeout)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)

	tests := []struct {
		name string
		user *models.User
	}{
		{"member", &models.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}},
		{"admin", &models.User{ID: "u2", Name: "Coach", Email: "coach@example.com", Role: models.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, expiresAt, err := m.GenerateToken(tt.user)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			if time.Until(expiresAt) <= 0 {
				t.Errorf("expiresAt = %v, want future", expiresAt)
			}

			claims, err := m.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.UserID != tt.user.ID || claims.Email != tt.user.Email || claims.Role != tt.user.Role {
				t.Errorf("claims = %+v, want user %+v", claims, tt.user)
			}
			if claims.IsAdmin() != tt.user.IsAdmin() {
				t.Errorf("IsAdmin() = %v, want %v", claims.IsAdmin(), tt.user.IsAdmin())
			}
			if ref := claims.UserRef(); ref.ID != tt.user.ID || ref.Name != tt.user.Name {
				t.Errorf("UserRef() = %+v", ref)
			}
		})
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	user := &models.User{ID: "u1", Role: models.RoleUser}

	expired := newTestJWTManager(t, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}

	other, err := NewJWTManager(&config.SecurityConfig{JWTSecret: "a_completely_different_secret_value_0987654321"})
	if err != nil {
		t.Fatal(err)
	}
	foreignToken, _, err := other.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"garbage":       "not.a.jwt",
		"empty":         "",
		"expired":       expiredToken,
		"wrong secret":  foreignToken,
		"alg none":      noneToken,
		"missing parts": "eyJhbGciOiJIUzI1NiJ9",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
