// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package auth

import (
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	bcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestHashAndCheckSecret(t *testing.T) {
	hash, err := HashSecret("squat-rack-42")
	if err != nil {
		t.Fatalf("HashSecret() error = %v", err)
	}
	if hash == "squat-rack-42" {
		t.Fatal("hash equals plaintext")
	}

	tests := []struct {
		name   string
		hash   string
		secret string
		want   bool
	}{
		{"match", hash, "squat-rack-42", true},
		{"mismatch", hash, "squat-rack-43", false},
		{"empty hash", "", "squat-rack-42", false},
		{"malformed hash", "xyz", "squat-rack-42", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckSecret(tt.hash, tt.secret); got != tt.want {
				t.Errorf("CheckSecret() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP() error = %v", err)
		}
		if len(code) != OTPLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), OTPLength)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 190 {
		t.Errorf("only %d distinct codes out of 200", len(seen))
	}
}
