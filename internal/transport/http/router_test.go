package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-api-registration/internal/config"
	"github.com/go-api-registration/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockRegistrationSvc struct{ mock.Mock }

func (m *mockRegistrationSvc) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockRegistrationSvc) Confirm(ctx context.Context, value string) error {
	return m.Called(ctx, value).Error(0)
}

func (m *mockRegistrationSvc) Resend(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// denyAll rejects every request.
type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }

func testConfig() *config.Config {
	return &config.Config{AllowedOrigins: []string{"*"}}
}

func TestRouter_Routes(t *testing.T) {
	svc := new(mockRegistrationSvc)
	svc.On("Confirm", mock.Anything, "ab12").Return(nil)
	svc.On("Resend", mock.Anything, "jane@test.com").Return(nil)
	svc.On("Register", mock.Anything, mock.Anything).Return(&domain.User{UserID: "u1"}, nil)
	r := NewRouter(testConfig(), &Deps{Registration: svc, Logger: zap.NewNop()})

	cases := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/v1/health-check/ping", "", http.StatusOK},
		{http.MethodGet, "/v1/confirm-email/ab12", "", http.StatusOK},
		{http.MethodPost, "/v1/confirm-email/resend", `{"email":"jane@test.com"}`, http.StatusAccepted},
		{http.MethodPost, "/v1/users/searcher", `{"full_name":"Jane Doe"}`, http.StatusCreated},
		{http.MethodGet, "/v1/users/searcher", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_RateLimitsWriteEndpointsOnly(t *testing.T) {
	svc := new(mockRegistrationSvc)
	svc.On("Confirm", mock.Anything, "ab12").Return(nil)
	r := NewRouter(testConfig(), &Deps{Registration: svc, Limiter: denyAll{}})

	for _, path := range []string{"/v1/users/searcher", "/v1/confirm-email/resend"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/confirm-email/ab12", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}
