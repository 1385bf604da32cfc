// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package models

import "time"

// Role is a user's authorization role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// WeightEntry is one point on a member's weight progress chart.
type WeightEntry struct {
	WeightKg   float64   `json:"weightKg" bson:"weightKg"`
	RecordedAt time.Time `json:"recordedAt" bson:"recordedAt"`
}

// User is a registered gym member or administrator.
type User struct {
	ID           string        `json:"id" bson:"_id"`
	Name         string        `json:"name" bson:"name"`
	Email        string        `json:"email" bson:"email"`
	PasswordHash string        `json:"-" bson:"passwordHash"`
	Role         Role          `json:"role" bson:"role"`
	ProfileImage string        `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	Phone        string        `json:"phone,omitempty" bson:"phone,omitempty"`
	WeightLog    []WeightEntry `json:"weightLog,omitempty" bson:"weightLog,omitempty"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Ref returns the author summary for this user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PendingRegistration holds a sign-up awaiting OTP confirmation.
type PendingRegistration struct {
	Email        string    `json:"email" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	PasswordHash string    `json:"passwordHash" bson:"passwordHash"`
	OTPHash      string    `json:"otpHash" bson:"otpHash"`
	Attempts     int       `json:"attempts" bson:"attempts"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt" bson:"expiresAt"`
}

// Expired reports whether the code can no longer be redeemed.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
