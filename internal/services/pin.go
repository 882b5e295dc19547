package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidPIN is returned for a PIN that is not 4 to 6 digits.
	ErrInvalidPIN = errors.New("PIN must be 4 to 6 digits")
	// ErrWrongPIN is returned when a PIN does not match the stored one.
	ErrWrongPIN = errors.New("wrong PIN")
	// ErrNoPIN is returned when verifying or clearing while no PIN is set.
	ErrNoPIN = errors.New("no PIN set")
)

// PINStore keeps the bcrypt hash of the app lock PIN.
type PINStore interface {
	PINHash(ctx context.Context) (string, error)
	SetPINHash(ctx context.Context, hash string) error
}

// PINService guards the app with an optional numeric PIN. Only the bcrypt
// hash is stored.
type PINService struct {
	store PINStore
	cost  int
}

func NewPINService(store PINStore) *PINService {
	return &PINService{store: store, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost for new hashes. Costs outside bcrypt's range
// fall back to the default.
func (s *PINService) WithCost(cost int) *PINService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	s.cost = cost
	return s
}

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsSet reports whether a PIN is configured.
func (s *PINService) IsSet(ctx context.Context) (bool, error) {
	hash, err := s.store.PINHash(ctx)
	if err != nil {
		return false, fmt.Errorf("read PIN: %w", err)
	}
	return hash != "", nil
}

// Set stores a new PIN. Changing an existing PIN requires the current one.
func (s *PINService) Set(ctx context.Context, pin, current string) error {
	if !validPIN(pin) {
		return invalid(ErrInvalidPIN)
	}
	set, err := s.IsSet(ctx)
	if err != nil {
		return err
	}
	if set {
		if err := s.Verify(ctx, current); err != nil {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
	if err != nil {
		return fmt.Errorf("hash PIN: %w", err)
	}
	if err := s.store.SetPINHash(ctx, string(hash)); err != nil {
		return fmt.Errorf("save PIN: %w", err)
	}
	slog.InfoContext(ctx, "PIN updated", "replaced", set)
	return nil
}

// Verify returns nil when pin matches, ErrWrongPIN when it does not and
// ErrNoPIN when the app is not locked.
func (s *PINService) Verify(ctx context.Context, pin string) error {
	hash, err := s.store.PINHash(ctx)
	if err != nil {
		return fmt.Errorf("read PIN: %w", err)
	}
	if hash == "" {
		return ErrNoPIN
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrWrongPIN
		}
		return fmt.Errorf("compare PIN: %w", err)
	}
	return nil
}

// Clear removes the PIN after checking it.
func (s *PINService) Clear(ctx context.Context, pin string) error {
	if err := s.Verify(ctx, pin); err != nil {
		return err
	}
	if err := s.store.SetPINHash(ctx, ""); err != nil {
		return fmt.Errorf("clear PIN: %w", err)
	}
	slog.InfoContext(ctx, "PIN cleared")
	return nil
}
