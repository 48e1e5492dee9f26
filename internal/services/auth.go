package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"eventflow/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo    domain.UserRepository
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
	mailer      domain.Mailer
	logger      *slog.Logger
}

// NewAuthService creates an AuthService with the given repository and auth ports.
// The mailer may be nil; welcome emails are best-effort.
func NewAuthService(userRepo domain.UserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, mailer domain.Mailer, logger *slog.Logger) domain.AuthService {
	return &authService{
		userRepo:    userRepo,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
		mailer:      mailer,
		logger:      logger,
	}
}

// IsStrongPassword reports whether the password is at least 8 characters and
// contains lowercase, uppercase, digit, and symbol characters.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func (s *authService) Register(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return "", nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if !emailRegexp.MatchString(email) {
		return "", nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if !IsStrongPassword(password) {
		return "", nil, fmt.Errorf("%w: password must be at least 8 characters and include uppercase, lowercase, number, and symbol", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(name, email, hash, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return "", nil, domain.ErrDuplicateEmail
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	// Welcome email is best-effort; a mailer failure never fails registration.
	if s.mailer != nil {
		if err := s.mailer.Send(user.Email, "Welcome to EventFlow",
			fmt.Sprintf("<p>Hi %s, welcome to EventFlow. Go find your next event.</p>", user.Name),
			fmt.Sprintf("Hi %s, welcome to EventFlow. Go find your next event.", user.Name),
		); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "email", user.Email, "err", err)
		}
	}

	return token, user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *authService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
