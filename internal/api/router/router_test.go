package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totsandteens/clinic-bookings/internal/appointments"
	"github.com/totsandteens/clinic-bookings/internal/http/handlers"
	"github.com/totsandteens/clinic-bookings/internal/notify"
)

type okChannel struct{}

func (okChannel) Name() string                               { return "ok" }
func (okChannel) Send(context.Context, notify.Message) error { return nil }

func newTestRouter(t *testing.T, persistence bool) http.Handler {
	t.Helper()
	retry := notify.NewRetrySender(notify.RetryPolicy{
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
	}, nil, nil)
	booking := handlers.NewBookingHandler(handlers.BookingHandlerConfig{
		Repository: appointments.NewInMemoryRepository(),
		Deliverer:  notify.NewDeliverer(okChannel{}, nil, retry, nil, nil),
		Content: notify.NewContentBuilder(notify.ContentConfig{
			ClinicEmail: "frontdesk@totsandteens.example",
		}),
		Timeout: time.Second,
	})
	return New(Config{Booking: booking, Persistence: persistence})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBookingRoutes(t *testing.T) {
	r := newTestRouter(t, true)
	body := `{"parentName":"Priya Sharma","email":"priya@example.com","childName":"Asha","serviceType":"General Checkup"}`

	for _, path := range []string{"/api/appointments", "/appointments"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestBookingRouteRejectsNonPost(t *testing.T) {
	r := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPut, "/api/appointments", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestReadRoutesDisabledWithoutPersistence(t *testing.T) {
	r := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
