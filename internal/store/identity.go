package store

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ksagna/import-tracker/internal/kvstore"
)

// The PIN is stored as a salted one-way bcrypt hash and only ever compared,
// never decoded. A mismatch is a boolean failure with no state change.

func (s *Store) loadIdentity() error {
	if user, ok, err := s.kv.Get(kvstore.KeyUser); err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	} else if ok {
		s.user = user
	}

	if hash, ok, err := s.kv.Get(kvstore.KeyPIN); err != nil {
		return fmt.Errorf("failed to load pin digest: %w", err)
	} else if ok {
		s.pinHash = hash
	}

	return nil
}

// Onboarded reports whether an owner has been set up.
func (s *Store) Onboarded() bool {
	return s.user != ""
}

// User returns the owner's display name.
func (s *Store) User() string {
	return s.user
}

// CompleteOnboarding records the owner's name, PIN and reminder threshold.
func (s *Store) CompleteOnboarding(name, pin string, reminderDays int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}

	if err := s.kv.Set(kvstore.KeyUser, name); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	if err := s.kv.Set(kvstore.KeyPIN, string(hash)); err != nil {
		return fmt.Errorf("failed to persist pin digest: %w", err)
	}
	if err := s.kv.Set(kvstore.KeyReminderDays, strconv.Itoa(reminderDays)); err != nil {
		return fmt.Errorf("failed to persist reminder days: %w", err)
	}
	if err := s.kv.Set(kvstore.KeyLang, s.settings.Lang); err != nil {
		return fmt.Errorf("failed to persist language: %w", err)
	}

	s.user = name
	s.pinHash = string(hash)
	s.settings.ReminderDays = reminderDays
	return nil
}

// UpdateUser changes the owner's display name.
func (s *Store) UpdateUser(name string) error {
	if err := s.kv.Set(kvstore.KeyUser, name); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	s.user = name
	return nil
}

// ValidatePIN checks a PIN attempt. A mismatch is a boolean failure, never
// an error, and changes no state.
func (s *Store) ValidatePIN(pin string) bool {
	if s.pinHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.pinHash), []byte(pin)) == nil
}

// UpdatePIN replaces the PIN after verifying the old one. It reports false
// on an old-PIN mismatch and leaves the stored digest alone.
func (s *Store) UpdatePIN(oldPIN, newPIN string) bool {
	if !s.ValidatePIN(oldPIN) {
		return false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPIN), bcrypt.DefaultCost)
	if err != nil {
		s.log.Warn("failed to hash new pin", zap.Error(err))
		return false
	}
	if err := s.kv.Set(kvstore.KeyPIN, string(hash)); err != nil {
		s.log.Warn("new pin digest not persisted", zap.Error(err))
	}
	s.pinHash = string(hash)
	return true
}
