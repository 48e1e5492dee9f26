package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User represents a registered user. PasswordHash never leaves the backend.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(name, email, passwordHash string, createdAt, updatedAt time.Time) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// UserSummary is the public projection of a user embedded in other resources.
// swagger:model UserSummary
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PasswordHasher hashes and verifies passwords.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}

// AuthService defines registration and credential-based authentication.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// ProfileUpdate carries the optional fields of a profile update.
// Nil pointers mean "leave unchanged"; AvatarImage is raw image bytes.
type ProfileUpdate struct {
	Name        *string
	Password    *string
	AvatarImage []byte
}

// MyEvents groups the events a user created and the events they are attending.
// swagger:model MyEvents
type MyEvents struct {
	CreatedEvents   []*Event `json:"created_events"`
	AttendingEvents []*Event `json:"attending_events"`
}

// UserService defines the business logic for user profile and dashboards.
type UserService interface {
	GetMyEvents(ctx context.Context, userID string) (*MyEvents, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error)
}

// Mailer sends transactional email. Implementations may use SES or a noop.
type Mailer interface {
	Send(to, subject, html, text string) error
}
