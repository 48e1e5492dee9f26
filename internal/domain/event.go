package domain

import (
	"context"
	"time"
)

// Event represents a discoverable event with a bounded number of seats.
// RSVPCount is a denormalized counter of current memberships; it is mutated
// only by the admission path and satisfies 0 <= RSVPCount <= Capacity after
// every committed transaction.
// swagger:model Event
type Event struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DateTime    time.Time    `json:"date_time"`
	Location    string       `json:"location"`
	Capacity    int          `json:"capacity"`
	RSVPCount   int          `json:"rsvp_count"`
	ImageURL    string       `json:"image_url"`
	Category    *string      `json:"category"`
	CreatedBy   string       `json:"created_by"`
	Creator     *UserSummary `json:"creator,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, description string, dateTime time.Time, location string, capacity int, imageURL string, category *string, createdBy string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		DateTime:    dateTime,
		Location:    location,
		Capacity:    capacity,
		ImageURL:    imageURL,
		Category:    category,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventFilter narrows event listings. Zero values mean "no filter".
// Only upcoming events are listed regardless of the filter.
type EventFilter struct {
	Search   string
	Category string
	From     *time.Time
	To       *time.Time
}

// EventUpdate carries the optional fields of an event update.
// Nil pointers mean "leave unchanged".
type EventUpdate struct {
	Title       *string
	Description *string
	DateTime    *time.Time
	Location    *string
	Capacity    *int
	Category    *string
	ImageData   []byte
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	// Delete removes the event; membership rows are purged in the same
	// statement via the storage-level cascade.
	Delete(ctx context.Context, id string) error
}

// EventDetail bundles an event with the caller's membership status.
// swagger:model EventDetail
type EventDetail struct {
	Event    *Event `json:"event"`
	IsRSVPed bool   `json:"is_rsvped"`
}

// CreateEventInput carries the fields required to create an event.
// ImageData is the raw uploaded image; the service stores it and records the URL.
type CreateEventInput struct {
	Title       string
	Description string
	DateTime    time.Time
	Location    string
	Capacity    int
	Category    *string
	ImageData   []byte
}

// EventService defines event CRUD and discovery operations.
type EventService interface {
	Create(ctx context.Context, ownerID string, input CreateEventInput) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	// GetByID returns the event and, when callerID is non-empty, whether the
	// caller currently holds a seat.
	GetByID(ctx context.Context, eventID, callerID string) (*EventDetail, error)
	Update(ctx context.Context, eventID, callerID string, update EventUpdate) (*Event, error)
	Delete(ctx context.Context, eventID, callerID string) error
}

// ImageStore uploads raw image bytes and returns a publicly servable URL.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, folder string) (url string, err error)
}
