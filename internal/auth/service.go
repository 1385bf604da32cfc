// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/flyfitness/internal/config"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/mail"
	"github.com/tomtom215/flyfitness/internal/metrics"
	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// Weight bounds accepted by AddWeight.
const (
	minWeightKg = 20
	maxWeightKg = 400
)

// Options configures a Service.
type Options struct {
	// OTPTTL is how long a registration code stays valid. Default 10m.
	OTPTTL time.Duration

	// OTPMaxAttempts wrong codes discard the pending registration. Default 5.
	OTPMaxAttempts int

	// AdminEmail is granted the admin role when it registers.
	AdminEmail string
}

// OptionsFromConfig maps security settings onto Options.
func OptionsFromConfig(cfg *config.SecurityConfig) Options {
	return Options{
		OTPTTL:         cfg.OTPTTL,
		OTPMaxAttempts: cfg.OTPMaxAttempts,
		AdminEmail:     cfg.AdminEmail,
	}
}

// Session is the result of a successful login or verification.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name         *string
	Phone        *string
	ProfileImage *string
}

// Service implements registration, login and profile management.
type Service struct {
	users  store.UserStore
	tokens *JWTManager
	mailer mail.Sender
	opts   Options

	// timeFunc allows injecting a custom time source for testing
	timeFunc func() time.Time
}

// NewService creates an auth service.
func NewService(users store.UserStore, tokens *JWTManager, mailer mail.Sender, opts Options) *Service {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 10 * time.Minute
	}
	if opts.OTPMaxAttempts <= 0 {
		opts.OTPMaxAttempts = 5
	}
	if mailer == nil {
		mailer = mail.LogSender{}
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		opts:     opts,
		timeFunc: time.Now,
	}
}

// SetTimeFunc replaces the clock. Intended for tests.
func (s *Service) SetTimeFunc(fn func() time.Time) {
	s.timeFunc = fn
}

func (s *Service) now() time.Time {
	return s.timeFunc().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register starts a sign-up: it stores a pending registration and mails a
// one-time code. Registering again for the same email replaces the code.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}
	otpHash, err := HashSecret(code)
	if err != nil {
		return err
	}
	pwHash, err := HashSecret(password)
	if err != nil {
		return err
	}

	now := s.now()
	reg := &models.PendingRegistration{
		Email:        email,
		Name:         name,
		PasswordHash: pwHash,
		OTPHash:      otpHash,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.opts.OTPTTL),
	}
	if err := s.users.SavePendingRegistration(ctx, reg); err != nil {
		return fmt.Errorf("save pending registration: %w", err)
	}

	msg := mail.Message{
		To:      email,
		Subject: "Your Fly Fitness Zone verification code",
		Body: fmt.Sprintf("Hi %s,\n\nYour verification code is %s.\nIt expires in %d minutes.\n",
			name, code, int(s.opts.OTPTTL.Minutes())),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}

	logging.Ctx(ctx).Info().Str("email", email).Msg("Registration code issued")
	return nil
}

// VerifyOTP redeems a registration code, creates the account and signs the user in.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	email = normalizeEmail(email)

	reg, err := s.users.GetPendingRegistration(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		metrics.RecordAuthAttempt("otp", false)
		return nil, ErrNoPendingOTP
	}
	if err != nil {
		return nil, fmt.Errorf("get pending registration: %w", err)
	}

	if reg.Expired(s.now()) {
		s.discardPending(ctx, email)
		metrics.RecordAuthAttempt("otp", false)
		return nil, ErrOTPExpired
	}

	if !CheckSecret(reg.OTPHash, strings.TrimSpace(code)) {
		metrics.RecordAuthAttempt("otp", false)
		reg.Attempts++
		if reg.Attempts >= s.opts.OTPMaxAttempts {
			s.discardPending(ctx, email)
			return nil, ErrTooManyAttempts
		}
		if err := s.users.SavePendingRegistration(ctx, reg); err != nil {
			return nil, fmt.Errorf("record attempt: %w", err)
		}
		return nil, ErrInvalidOTP
	}

	now := s.now()
	role := models.RoleUser
	if s.opts.AdminEmail != "" && normalizeEmail(s.opts.AdminEmail) == email {
		role = models.RoleAdmin
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         reg.Name,
		Email:        email,
		PasswordHash: reg.PasswordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.discardPending(ctx, email)

	metrics.RecordAuthAttempt("otp", true)
	logging.Ctx(ctx).Info().Str("user_id", user.ID).Msg("Account verified")
	return s.issue(user)
}

// Login exchanges credentials for a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		metrics.RecordAuthAttempt("password", false)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !CheckSecret(user.PasswordHash, password) {
		metrics.RecordAuthAttempt("password", false)
		logging.Ctx(ctx).Warn().Str("user_id", user.ID).Msg("Login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	metrics.RecordAuthAttempt("password", true)
	return s.issue(user)
}

func (s *Service) issue(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) discardPending(ctx context.Context, email string) {
	if err := s.users.DeletePendingRegistration(ctx, email); err != nil && !errors.Is(err, store.ErrNotFound) {
		logging.Ctx(ctx).Warn().Err(err).Str("email", email).Msg("Failed to discard pending registration")
	}
}

// Profile returns the user's account.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		if name := strings.TrimSpace(*update.Name); name != "" {
			user.Name = name
		}
	}
	if update.Phone != nil {
		user.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.ProfileImage != nil {
		user.ProfileImage = strings.TrimSpace(*update.ProfileImage)
	}
	user.UpdatedAt = s.now()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// AddWeight appends a weight entry and returns the full log, oldest first.
func (s *Service) AddWeight(ctx context.Context, userID string, weightKg float64) ([]models.WeightEntry, error) {
	if weightKg < minWeightKg || weightKg > maxWeightKg {
		return nil, ErrInvalidWeight
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user.WeightLog = append(user.WeightLog, models.WeightEntry{WeightKg: weightKg, RecordedAt: now})
	user.UpdatedAt = now

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user.WeightLog, nil
}

// WeightLog returns the user's weight entries, oldest first.
func (s *Service) WeightLog(ctx context.Context, userID string) ([]models.WeightEntry, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.WeightLog == nil {
		return []models.WeightEntry{}, nil
	}
	return user.WeightLog, nil
}

// EnsureAdmin creates the configured admin account when it does not exist.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := HashSecret(password)
	if err != nil {
		return err
	}
	now := s.now()
	admin := &models.User{
		ID:           uuid.NewString(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, admin); err != nil && !errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("create admin: %w", err)
	}
	logging.Ctx(ctx).Info().Str("email", email).Msg("Admin account created")
	return nil
}
