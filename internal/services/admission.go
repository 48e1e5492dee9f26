package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventflow/internal/domain"
)

// maxAdmissionAttempts bounds transparent retries of a conflicted admission
// transaction. Retries are safe: the operation is a pure function of current
// state and every precondition is re-evaluated on each attempt.
const maxAdmissionAttempts = 3

type admissionService struct {
	rsvpRepo domain.RSVPRepository
}

// NewAdmissionService creates an AdmissionService backed by the given repository.
func NewAdmissionService(rsvpRepo domain.RSVPRepository) domain.AdmissionService {
	return &admissionService{
		rsvpRepo: rsvpRepo,
	}
}

func (s *admissionService) Join(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	// A malformed id cannot reference any event; reject before opening a
	// transaction.
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, domain.ErrNotFound
	}

	var lastErr error
	for attempt := 0; attempt < maxAdmissionAttempts; attempt++ {
		rsvp, err := s.rsvpRepo.Join(ctx, eventID, userID)
		if err == nil {
			return rsvp, nil
		}
		if !errors.Is(err, domain.ErrTxConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("join after %d attempts: %w", maxAdmissionAttempts, lastErr)
}

func (s *admissionService) Leave(ctx context.Context, eventID, userID string) error {
	if _, err := uuid.Parse(eventID); err != nil {
		return domain.ErrNotFound
	}

	var lastErr error
	for attempt := 0; attempt < maxAdmissionAttempts; attempt++ {
		err := s.rsvpRepo.Leave(ctx, eventID, userID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTxConflict) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("leave after %d attempts: %w", maxAdmissionAttempts, lastErr)
}
