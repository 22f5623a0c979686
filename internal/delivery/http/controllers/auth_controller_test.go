package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
	"eventmanager/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	signUpErr error
	loginErr  error
	user      *domain.User
	token     string
	lastEmail string
}

func (f *fakeUserService) SignUp(ctx context.Context, email, name, password string) (*domain.User, error) {
	f.lastEmail = email
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.user, nil
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.token, f.user, nil
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return f.user, nil
}

func (f *fakeUserService) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	return nil
}

func TestAuthController_SignUp(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeUserService{user: &domain.User{ID: "user-1", Email: "alice@example.com", Role: domain.RoleUser}}
		ctrl := NewAuthController(testLogger, svc)
		body, _ := json.Marshal(SignUpRequest{Email: "alice@example.com", Name: "Alice", Password: "s3cretpass"})
		rec := httptest.NewRecorder()
		ctrl.SignUp(rec, authedRequest(http.MethodPost, "/auth/signup", body, ""))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "alice@example.com", svc.lastEmail)
	})

	t.Run("invalid email and short password", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{})
		body, _ := json.Marshal(SignUpRequest{Email: "not-an-email", Password: "short"})
		rec := httptest.NewRecorder()
		ctrl.SignUp(rec, authedRequest(http.MethodPost, "/auth/signup", body, ""))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeEnvelope(t, rec)
		require.NotNil(t, resp.Error)
		assert.Contains(t, resp.Error.Message, "invalid email format")
		assert.Contains(t, resp.Error.Message, "at least 8 characters")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{signUpErr: domain.ErrDuplicateEmail})
		body, _ := json.Marshal(SignUpRequest{Email: "alice@example.com", Password: "s3cretpass"})
		rec := httptest.NewRecorder()
		ctrl.SignUp(rec, authedRequest(http.MethodPost, "/auth/signup", body, ""))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAuthController_Login(t *testing.T) {
	t.Run("returns token and user", func(t *testing.T) {
		svc := &fakeUserService{
			token: "jwt-token",
			user:  &domain.User{ID: "user-1", Email: "alice@example.com"},
		}
		ctrl := NewAuthController(testLogger, svc)
		body, _ := json.Marshal(LoginRequest{Email: "alice@example.com", Password: "s3cretpass"})
		rec := httptest.NewRecorder()
		ctrl.Login(rec, authedRequest(http.MethodPost, "/auth/login", body, ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeEnvelope(t, rec)
		payload, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "jwt-token", payload["token"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{loginErr: services.ErrInvalidCredentials})
		body, _ := json.Marshal(LoginRequest{Email: "alice@example.com", Password: "wrong"})
		rec := httptest.NewRecorder()
		ctrl.Login(rec, authedRequest(http.MethodPost, "/auth/login", body, ""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeEnvelope(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, helpers.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{})
		rec := httptest.NewRecorder()
		ctrl.Login(rec, authedRequest(http.MethodPost, "/auth/login", []byte(`{}`), ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
