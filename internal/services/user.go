package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventflow/internal/domain"
)

const avatarImageFolder = "avatars"

type userService struct {
	userRepo   domain.UserRepository
	eventRepo  domain.EventRepository
	rsvpRepo   domain.RSVPRepository
	hasher     domain.PasswordHasher
	imageStore domain.ImageStore
}

// NewUserService creates a UserService with the given repositories, hasher, and image store.
func NewUserService(userRepo domain.UserRepository, eventRepo domain.EventRepository, rsvpRepo domain.RSVPRepository, hasher domain.PasswordHasher, imageStore domain.ImageStore) domain.UserService {
	return &userService{
		userRepo:   userRepo,
		eventRepo:  eventRepo,
		rsvpRepo:   rsvpRepo,
		hasher:     hasher,
		imageStore: imageStore,
	}
}

func (s *userService) GetMyEvents(ctx context.Context, userID string) (*domain.MyEvents, error) {
	created, err := s.eventRepo.ListByOwnerID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list created events: %w", err)
	}
	attending, err := s.rsvpRepo.ListEventsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attending events: %w", err)
	}
	if created == nil {
		created = []*domain.Event{}
	}
	if attending == nil {
		attending = []*domain.Event{}
	}
	return &domain.MyEvents{CreatedEvents: created, AttendingEvents: attending}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Name == nil && update.Password == nil && len(update.AvatarImage) == 0 {
		return nil, fmt.Errorf("%w: no updates provided", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		user.Name = name
	}

	if update.Password != nil {
		if !IsStrongPassword(*update.Password) {
			return nil, fmt.Errorf("%w: password must be at least 8 characters and include uppercase, lowercase, number, and symbol", domain.ErrInvalidInput)
		}
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if len(update.AvatarImage) > 0 {
		url, err := s.imageStore.Upload(ctx, update.AvatarImage, avatarImageFolder)
		if err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		user.AvatarURL = url
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
