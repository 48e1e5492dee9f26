package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventflow/internal/domain"
)

const (
	titleMinLen       = 3
	titleMaxLen       = 100
	descriptionMaxLen = 2000
	eventImageFolder  = "events"
)

type eventService struct {
	eventRepo  domain.EventRepository
	rsvpRepo   domain.RSVPRepository
	imageStore domain.ImageStore
}

// NewEventService creates an EventService with the given repositories and image store.
func NewEventService(eventRepo domain.EventRepository, rsvpRepo domain.RSVPRepository, imageStore domain.ImageStore) domain.EventService {
	return &eventService{
		eventRepo:  eventRepo,
		rsvpRepo:   rsvpRepo,
		imageStore: imageStore,
	}
}

func validateEventFields(title, description, location string, dateTime time.Time, capacity int) error {
	if len(title) < titleMinLen || len(title) > titleMaxLen {
		return fmt.Errorf("%w: title must be between %d and %d characters", domain.ErrInvalidInput, titleMinLen, titleMaxLen)
	}
	if description == "" || len(description) > descriptionMaxLen {
		return fmt.Errorf("%w: description is required and must be at most %d characters", domain.ErrInvalidInput, descriptionMaxLen)
	}
	if location == "" {
		return fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	}
	if !dateTime.After(time.Now()) {
		return fmt.Errorf("%w: event date must be in the future", domain.ErrInvalidInput)
	}
	if capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, ownerID string, input domain.CreateEventInput) (*domain.Event, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Location = strings.TrimSpace(input.Location)
	if err := validateEventFields(input.Title, input.Description, input.Location, input.DateTime, input.Capacity); err != nil {
		return nil, err
	}
	if len(input.ImageData) == 0 {
		return nil, fmt.Errorf("%w: event image is required", domain.ErrInvalidInput)
	}

	imageURL, err := s.imageStore.Upload(ctx, input.ImageData, eventImageFolder)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	now := time.Now()
	event := domain.NewEvent(input.Title, input.Description, input.DateTime, input.Location,
		input.Capacity, imageURL, input.Category, ownerID, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) GetByID(ctx context.Context, eventID, callerID string) (*domain.EventDetail, error) {
	// A malformed id cannot reference any event; reject before touching
	// storage rather than letting the UUID cast fail server-side.
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, domain.ErrNotFound
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	isRSVPed := false
	if callerID != "" {
		isRSVPed, err = s.rsvpRepo.Exists(ctx, eventID, callerID)
		if err != nil {
			return nil, fmt.Errorf("check rsvp: %w", err)
		}
	}
	return &domain.EventDetail{Event: event, IsRSVPed: isRSVPed}, nil
}

func (s *eventService) Update(ctx context.Context, eventID, callerID string, update domain.EventUpdate) (*domain.Event, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, domain.ErrNotFound
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != callerID {
		return nil, domain.ErrForbidden
	}

	if update.Title != nil {
		event.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.DateTime != nil {
		event.DateTime = *update.DateTime
	}
	if update.Location != nil {
		event.Location = strings.TrimSpace(*update.Location)
	}
	if update.Capacity != nil {
		// Shrinking below the current membership count would break the
		// rsvp_count <= capacity invariant for existing attendees.
		if *update.Capacity < event.RSVPCount {
			return nil, fmt.Errorf("%w: capacity cannot be lower than current rsvp count (%d)", domain.ErrInvalidInput, event.RSVPCount)
		}
		event.Capacity = *update.Capacity
	}
	if update.Category != nil {
		if *update.Category == "" {
			event.Category = nil
		} else {
			event.Category = update.Category
		}
	}
	if err := validateEventFields(event.Title, event.Description, event.Location, event.DateTime, event.Capacity); err != nil {
		return nil, err
	}

	if len(update.ImageData) > 0 {
		imageURL, err := s.imageStore.Upload(ctx, update.ImageData, eventImageFolder)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		event.ImageURL = imageURL
	}

	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, eventID, callerID string) error {
	if _, err := uuid.Parse(eventID); err != nil {
		return domain.ErrNotFound
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != callerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
