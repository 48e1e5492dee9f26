package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"eventflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missingEventID is well-formed but matches no stored event.
const missingEventID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	getCalls  int
	createErr error
	updateErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("00000000-0000-4000-8000-%012d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.getCalls++
	if e, ok := f.byID[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.CreatedBy == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *e
	f.byID[e.ID] = &copied
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeImageStore records uploads and returns deterministic URLs.
type fakeImageStore struct {
	uploads   int
	uploadErr error
}

func (f *fakeImageStore) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	return fmt.Sprintf("https://images.example.com/%s/%d", folder, f.uploads), nil
}

func validCreateInput() domain.CreateEventInput {
	return domain.CreateEventInput{
		Title:       "Go Meetup",
		Description: "Talks and pizza",
		DateTime:    time.Now().Add(48 * time.Hour),
		Location:    "Berlin",
		Capacity:    50,
		ImageData:   []byte("fake-image"),
	}
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		mutate       func(in *domain.CreateEventInput)
		wantInputErr bool
	}{
		{name: "success"},
		{
			name:         "title too short",
			mutate:       func(in *domain.CreateEventInput) { in.Title = "Go" },
			wantInputErr: true,
		},
		{
			name:         "missing description",
			mutate:       func(in *domain.CreateEventInput) { in.Description = "" },
			wantInputErr: true,
		},
		{
			name:         "missing location",
			mutate:       func(in *domain.CreateEventInput) { in.Location = " " },
			wantInputErr: true,
		},
		{
			name:         "date in the past",
			mutate:       func(in *domain.CreateEventInput) { in.DateTime = time.Now().Add(-time.Hour) },
			wantInputErr: true,
		},
		{
			name:         "zero capacity",
			mutate:       func(in *domain.CreateEventInput) { in.Capacity = 0 },
			wantInputErr: true,
		},
		{
			name:         "missing image",
			mutate:       func(in *domain.CreateEventInput) { in.ImageData = nil },
			wantInputErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			store := &fakeImageStore{}
			svc := NewEventService(repo, newMemRSVPRepo(), store)

			input := validCreateInput()
			if tt.mutate != nil {
				tt.mutate(&input)
			}

			event, err := svc.Create(ctx, "user-1", input)
			if tt.wantInputErr {
				require.True(t, errors.Is(err, domain.ErrInvalidInput))
				require.Nil(t, event)
				assert.Zero(t, store.uploads, "no upload on rejected input")
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, event.ID)
			assert.Equal(t, "user-1", event.CreatedBy)
			assert.Equal(t, 0, event.RSVPCount)
			assert.Contains(t, event.ImageURL, "events/")
			assert.Equal(t, 1, store.uploads)
		})
	}
}

func TestEventService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	rsvpRepo := newMemRSVPRepo()
	svc := NewEventService(repo, rsvpRepo, &fakeImageStore{})

	event := &domain.Event{Title: "Go Meetup", CreatedBy: "user-1"}
	require.NoError(t, repo.Create(ctx, event))
	rsvpRepo.addEvent(event.ID, 10)
	_, err := rsvpRepo.Join(ctx, event.ID, "user-2")
	require.NoError(t, err)

	t.Run("anonymous caller", func(t *testing.T) {
		detail, err := svc.GetByID(ctx, event.ID, "")
		require.NoError(t, err)
		assert.False(t, detail.IsRSVPed)
	})

	t.Run("attending caller", func(t *testing.T) {
		detail, err := svc.GetByID(ctx, event.ID, "user-2")
		require.NoError(t, err)
		assert.True(t, detail.IsRSVPed)
	})

	t.Run("non-attending caller", func(t *testing.T) {
		detail, err := svc.GetByID(ctx, event.ID, "user-3")
		require.NoError(t, err)
		assert.False(t, detail.IsRSVPed)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetByID(ctx, missingEventID, "")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("malformed id never reaches storage", func(t *testing.T) {
		callsBefore := repo.getCalls
		_, err := svc.GetByID(ctx, "not-a-uuid", "")
		require.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Equal(t, callsBefore, repo.getCalls)
	})
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()

	seed := func(repo *fakeEventRepo) *domain.Event {
		event := &domain.Event{
			Title:       "Go Meetup",
			Description: "Talks",
			DateTime:    time.Now().Add(48 * time.Hour),
			Location:    "Berlin",
			Capacity:    50,
			RSVPCount:   10,
			ImageURL:    "https://img/old",
			CreatedBy:   "user-1",
		}
		_ = repo.Create(ctx, event)
		return event
	}

	t.Run("owner updates fields", func(t *testing.T) {
		repo := newFakeEventRepo()
		event := seed(repo)
		svc := NewEventService(repo, newMemRSVPRepo(), &fakeImageStore{})

		title := "Go Meetup 2026"
		capacity := 80
		got, err := svc.Update(ctx, event.ID, "user-1", domain.EventUpdate{Title: &title, Capacity: &capacity})
		require.NoError(t, err)
		assert.Equal(t, "Go Meetup 2026", got.Title)
		assert.Equal(t, 80, got.Capacity)
		assert.Equal(t, "https://img/old", got.ImageURL, "image unchanged when none supplied")
	})

	t.Run("replacement image uploaded", func(t *testing.T) {
		repo := newFakeEventRepo()
		event := seed(repo)
		store := &fakeImageStore{}
		svc := NewEventService(repo, newMemRSVPRepo(), store)

		got, err := svc.Update(ctx, event.ID, "user-1", domain.EventUpdate{ImageData: []byte("new-image")})
		require.NoError(t, err)
		assert.Equal(t, 1, store.uploads)
		assert.NotEqual(t, "https://img/old", got.ImageURL)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		repo := newFakeEventRepo()
		event := seed(repo)
		svc := NewEventService(repo, newMemRSVPRepo(), &fakeImageStore{})

		title := "Hijacked"
		_, err := svc.Update(ctx, event.ID, "user-2", domain.EventUpdate{Title: &title})
		require.True(t, errors.Is(err, domain.ErrForbidden))
	})

	t.Run("capacity below current rsvp count rejected", func(t *testing.T) {
		repo := newFakeEventRepo()
		event := seed(repo)
		svc := NewEventService(repo, newMemRSVPRepo(), &fakeImageStore{})

		capacity := 5
		_, err := svc.Update(ctx, event.ID, "user-1", domain.EventUpdate{Capacity: &capacity})
		require.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("clearing category", func(t *testing.T) {
		repo := newFakeEventRepo()
		event := seed(repo)
		cat := "tech"
		repo.byID[event.ID].Category = &cat
		svc := NewEventService(repo, newMemRSVPRepo(), &fakeImageStore{})

		empty := ""
		got, err := svc.Update(ctx, event.ID, "user-1", domain.EventUpdate{Category: &empty})
		require.NoError(t, err)
		assert.Nil(t, got.Category)
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewEventService(newFakeEventRepo(), newMemRSVPRepo(), &fakeImageStore{})
		title := "x"
		_, err := svc.Update(ctx, missingEventID, "user-1", domain.EventUpdate{Title: &title})
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("malformed id never reaches storage", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, newMemRSVPRepo(), &fakeImageStore{})
		title := "x"
		_, err := svc.Update(ctx, "not-a-uuid", "user-1", domain.EventUpdate{Title: &title})
		require.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Zero(t, repo.getCalls)
	})
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		repo := newFakeEventRepo()
		event := &domain.Event{Title: "Go Meetup", CreatedBy: "user-1"}
		_ = repo.Create(ctx, event)
		svc := NewEventService(repo, newMemRSVPRepo(), &fakeImageStore{})

		require.NoError(t, svc.Delete(ctx, event.ID, "user-1"))
		_, err := repo.GetByID(ctx, event.ID)
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		repo := newFakeEventRepo()
		event := &domain.Event{Title: "Go Meetup", CreatedBy: "user-1"}
		_ = repo.Create(ctx, event)
		svc := NewEventService(repo, newMemRSVPRepo(), &fakeImageStore{})

		err := svc.Delete(ctx, event.ID, "user-2")
		require.True(t, errors.Is(err, domain.ErrForbidden))
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewEventService(newFakeEventRepo(), newMemRSVPRepo(), &fakeImageStore{})
		err := svc.Delete(ctx, missingEventID, "user-1")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("malformed id never reaches storage", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, newMemRSVPRepo(), &fakeImageStore{})
		err := svc.Delete(ctx, "not-a-uuid", "user-1")
		require.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Zero(t, repo.getCalls)
	})
}
