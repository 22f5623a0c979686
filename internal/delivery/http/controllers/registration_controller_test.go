package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	registerErr  error
	cancelErr    error
	isRegistered bool
	listErr      error
	regs         []*domain.EventRegistration
	lastEventID  string
	lastUserID   string
}

func (f *fakeRegistrationService) Register(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	f.lastEventID, f.lastUserID = eventID, userID
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &domain.EventRegistration{ID: "reg-1", EventID: eventID, UserID: userID, CreatedAt: time.Now()}, nil
}

func (f *fakeRegistrationService) Cancel(ctx context.Context, eventID, userID string) error {
	f.lastEventID, f.lastUserID = eventID, userID
	return f.cancelErr
}

func (f *fakeRegistrationService) IsRegistered(ctx context.Context, eventID, userID string) (bool, error) {
	return f.isRegistered, nil
}

func (f *fakeRegistrationService) Find(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	return nil, domain.ErrRegistrationNotFound
}

func (f *fakeRegistrationService) ListEventRegistrations(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	f.lastEventID = eventID
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.regs, nil
}

func TestRegistrationController_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeRegistrationService{}
		ctrl := NewRegistrationController(testLogger, svc)
		req := authedRequest(http.MethodPost, "/events/ev-1/registrations", nil, "user-7")
		req.SetPathValue("eventID", "ev-1")
		rec := httptest.NewRecorder()
		ctrl.Register(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "ev-1", svc.lastEventID)
		assert.Equal(t, "user-7", svc.lastUserID)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{})
		req := authedRequest(http.MethodPost, "/events/ev-1/registrations", nil, "")
		req.SetPathValue("eventID", "ev-1")
		rec := httptest.NewRecorder()
		ctrl.Register(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"event missing", &domain.EntityNotFoundError{Kind: "event", ID: "ev-1"}, http.StatusNotFound, helpers.ErrCodeNotFound},
			{"full", &domain.InsufficientSeatsError{Available: 0}, http.StatusConflict, helpers.ErrCodeConflict},
			{"duplicate", domain.ErrAlreadyRegistered, http.StatusConflict, helpers.ErrCodeConflict},
			{"finished", &domain.StatusNotAllowedError{EventID: "ev-1", Status: domain.StatusFinished, Operation: "register"}, http.StatusConflict, helpers.ErrCodeConflict},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{registerErr: tt.err})
				req := authedRequest(http.MethodPost, "/events/ev-1/registrations", nil, "user-7")
				req.SetPathValue("eventID", "ev-1")
				rec := httptest.NewRecorder()
				ctrl.Register(rec, req)

				assert.Equal(t, tt.status, rec.Code)
				resp := decodeEnvelope(t, rec)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.code, resp.Error.Code)
			})
		}
	})
}

func TestRegistrationController_CancelRegistration(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		svc := &fakeRegistrationService{}
		ctrl := NewRegistrationController(testLogger, svc)
		req := authedRequest(http.MethodDelete, "/events/ev-1/registrations", nil, "user-7")
		req.SetPathValue("eventID", "ev-1")
		rec := httptest.NewRecorder()
		ctrl.CancelRegistration(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("not registered", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{cancelErr: domain.ErrRegistrationNotFound})
		req := authedRequest(http.MethodDelete, "/events/ev-1/registrations", nil, "user-7")
		req.SetPathValue("eventID", "ev-1")
		rec := httptest.NewRecorder()
		ctrl.CancelRegistration(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("event started", func(t *testing.T) {
		err := &domain.StatusNotAllowedError{EventID: "ev-1", Status: domain.StatusStarted, Operation: "cancel_registration"}
		ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{cancelErr: err})
		req := authedRequest(http.MethodDelete, "/events/ev-1/registrations", nil, "user-7")
		req.SetPathValue("eventID", "ev-1")
		rec := httptest.NewRecorder()
		ctrl.CancelRegistration(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRegistrationController_IsRegistered(t *testing.T) {
	ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{isRegistered: true})
	req := authedRequest(http.MethodGet, "/events/ev-1/registrations/me", nil, "user-7")
	req.SetPathValue("eventID", "ev-1")
	rec := httptest.NewRecorder()
	ctrl.IsRegistered(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	payload, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, payload["registered"])
}

func TestRegistrationController_ListRegistrations(t *testing.T) {
	svc := &fakeRegistrationService{regs: []*domain.EventRegistration{
		{ID: "reg-1", EventID: "ev-1", UserID: "user-7"},
		{ID: "reg-2", EventID: "ev-1", UserID: "user-8"},
	}}
	ctrl := NewRegistrationController(testLogger, svc)
	req := authedRequest(http.MethodGet, "/events/ev-1/registrations", nil, "user-1")
	req.SetPathValue("eventID", "ev-1")
	rec := httptest.NewRecorder()
	ctrl.ListRegistrations(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Len(t, resp.Data, 2)
}
