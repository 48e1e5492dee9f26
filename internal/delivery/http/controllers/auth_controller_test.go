package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventflow/internal/delivery/http/helpers"
	"eventflow/internal/delivery/http/middleware"
	"eventflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct {
	token       string
	user        *domain.User
	registerErr error
	loginErr    error
	getErr      error
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	if m.registerErr != nil {
		return "", nil, m.registerErr
	}
	return m.token, m.user, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if m.loginErr != nil {
		return "", nil, m.loginErr
	}
	return m.token, m.user, nil
}

func (m *mockAuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func TestAuthController_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *mockAuthService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       `{"name":"Ada","email":"ada@example.com","password":"Str0ng!pass"}`,
			svc:        &mockAuthService{token: "tok", user: &domain.User{ID: "u1"}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json",
			body:       `{`,
			svc:        &mockAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "missing fields",
			body:       `{"email":"","password":""}`,
			svc:        &mockAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "bad email format",
			body:       `{"name":"Ada","email":"nope","password":"Str0ng!pass"}`,
			svc:        &mockAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"name":"Ada","email":"ada@example.com","password":"Str0ng!pass"}`,
			svc:        &mockAuthService{registerErr: domain.ErrDuplicateEmail},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "weak password surfaces as bad request",
			body:       `{"name":"Ada","email":"ada@example.com","password":"weakpass"}`,
			svc:        &mockAuthService{registerErr: domain.ErrInvalidInput},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			ctrl.Register(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			resp := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
			data, ok := resp.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "tok", data["token"])
			assert.Equal(t, "Bearer", data["token_type"])
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *mockAuthService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       `{"email":"ada@example.com","password":"Str0ng!pass"}`,
			svc:        &mockAuthService{token: "tok", user: &domain.User{ID: "u1"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing fields",
			body:       `{}`,
			svc:        &mockAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "invalid credentials",
			body:       `{"email":"ada@example.com","password":"wrong"}`,
			svc:        &mockAuthService{loginErr: domain.ErrInvalidCredentials},
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			ctrl.Login(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			resp := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
		})
	}
}

func TestAuthController_Me(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &mockAuthService{user: &domain.User{ID: "u1", Email: "ada@example.com"}})
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), "u1"))
		w := httptest.NewRecorder()

		ctrl.Me(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeEnvelope(t, w)
		require.Nil(t, resp.Error)
	})

	t.Run("unauthorized without user", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &mockAuthService{})
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		w := httptest.NewRecorder()

		ctrl.Me(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user not found", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &mockAuthService{getErr: domain.ErrUserNotFound})
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), "ghost"))
		w := httptest.NewRecorder()

		ctrl.Me(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
