package domain

import (
	"context"
	"time"
)

// RSVP is a membership record asserting that a user holds one of an event's
// seats. The (event, user) pair is unique, enforced by the storage engine.
// An RSVP exists or it does not; leaving deletes the row.
// swagger:model RSVP
type RSVP struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RSVPRepository defines the atomic admission operations against storage.
//
// Join and Leave each run as a single transaction: either every write of the
// operation commits or none does. Implementations must rely on the storage
// engine's row locking and uniqueness constraint rather than in-process
// synchronization, so admission stays correct across server processes.
type RSVPRepository interface {
	// Join admits the user to the event. Returns ErrAlreadyJoined when a
	// membership already exists (the unique constraint is authoritative),
	// ErrNotFound when the event does not exist, ErrEventFull when
	// rsvp_count has reached capacity, and ErrTxConflict when a concurrent
	// writer aborted the transaction.
	Join(ctx context.Context, eventID, userID string) (*RSVP, error)

	// Leave removes the user's membership and decrements the event's
	// counter, never below zero. Returns ErrNotJoined when no membership
	// row exists and ErrTxConflict on a lost race.
	Leave(ctx context.Context, eventID, userID string) error

	// Exists reports whether the user currently holds a seat at the event.
	Exists(ctx context.Context, eventID, userID string) (bool, error)

	// ListEventsByUserID returns the events the user is attending, soonest first.
	ListEventsByUserID(ctx context.Context, userID string) ([]*Event, error)
}

// AdmissionService is the decision procedure governing seat allocation.
// It validates identifier shape before touching storage and transparently
// retries transaction conflicts a bounded number of times.
type AdmissionService interface {
	Join(ctx context.Context, eventID, userID string) (*RSVP, error)
	Leave(ctx context.Context, eventID, userID string) error
}
