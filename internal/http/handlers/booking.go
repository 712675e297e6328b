// Package handlers contains the HTTP handlers bridging the booking form to
// the notification pipeline.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/totsandteens/clinic-bookings/internal/appointments"
	"github.com/totsandteens/clinic-bookings/internal/notify"
	"github.com/totsandteens/clinic-bookings/internal/observability/metrics"
	"github.com/totsandteens/clinic-bookings/pkg/logging"
)

// BookingHandler receives booking submissions and maps delivery outcomes to
// HTTP responses.
type BookingHandler struct {
	repo               appointments.Repository // optional
	deliverer          *notify.Deliverer
	content            *notify.ContentBuilder
	audit              *appointments.AuditLog
	guard              *appointments.DuplicateGuard // optional
	metrics            *metrics.DeliveryMetrics
	logger             *logging.Logger
	timeout            time.Duration
	parentConfirmation bool
}

// BookingHandlerConfig wires the handler's collaborators.
type BookingHandlerConfig struct {
	Repository         appointments.Repository
	Deliverer          *notify.Deliverer
	Content            *notify.ContentBuilder
	Audit              *appointments.AuditLog
	Guard              *appointments.DuplicateGuard
	Metrics            *metrics.DeliveryMetrics
	Logger             *logging.Logger
	Timeout            time.Duration
	ParentConfirmation bool
}

// NewBookingHandler creates the booking handler.
func NewBookingHandler(cfg BookingHandlerConfig) *BookingHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &BookingHandler{
		repo:               cfg.Repository,
		deliverer:          cfg.Deliverer,
		content:            cfg.Content,
		audit:              cfg.Audit,
		guard:              cfg.Guard,
		metrics:            cfg.Metrics,
		logger:             cfg.Logger,
		timeout:            cfg.Timeout,
		parentConfirmation: cfg.ParentConfirmation,
	}
}

// BookingResponse is the success payload.
type BookingResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	AppointmentID string `json:"appointmentId,omitempty"`
	Warning       string `json:"warning,omitempty"`
}

type errorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// Create handles POST /api/appointments.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req appointments.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		h.metrics.ObserveBooking("invalid")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if verr := req.Validate(); verr != nil {
		h.metrics.ObserveBooking("invalid")
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:         "Missing required fields",
			MissingFields: verr.MissingFields,
		})
		return
	}

	appt := appointments.NewAppointment(&req)
	h.metrics.ObserveBooking("accepted")

	if !h.guard.FirstSubmission(r.Context(), appt) {
		writeJSON(w, http.StatusOK, BookingResponse{
			Success: true,
			Message: "We already received this booking request. The clinic will contact you shortly.",
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.Create(r.Context(), appt); err != nil {
			// Persistence is an optional collaborator; the booking still
			// proceeds through email delivery.
			h.logger.Error("failed to persist appointment", "error", err, "appointment_id", appt.ID)
		}
	}

	clinicMsg := h.content.ClinicMessage(appt)
	var parentMsg *notify.Message
	if h.parentConfirmation {
		m := h.content.ParentMessage(appt)
		parentMsg = &m
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	outcome := h.deliverer.Deliver(ctx, clinicMsg, parentMsg)

	h.recordAudit(appt, outcome)

	switch outcome.Status {
	case notify.StatusFullSuccess:
		writeJSON(w, http.StatusOK, BookingResponse{
			Success:       true,
			Message:       "Appointment booked successfully! Confirmation emails have been sent.",
			AppointmentID: appt.ID,
		})
	case notify.StatusDegraded:
		writeJSON(w, http.StatusOK, BookingResponse{
			Success:       true,
			Message:       "Appointment booked successfully! The clinic has been notified.",
			AppointmentID: appt.ID,
			Warning:       outcome.Reason,
		})
	default:
		h.logger.Error("booking delivery failed",
			"appointment_id", appt.ID, "reason", outcome.Reason, "error", outcome.Err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Failed to process appointment. Please try again.",
		})
	}
}

// Get handles GET /api/appointments/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "appointment storage not configured"})
		return
	}
	id := chi.URLParam(r, "id")
	appt, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "appointment not found"})
			return
		}
		h.logger.Error("failed to load appointment", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load appointment"})
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// List handles GET /api/appointments.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "appointment storage not configured"})
		return
	}
	appts, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list appointments"})
		return
	}
	if appts == nil {
		appts = []*appointments.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *BookingHandler) recordAudit(appt *appointments.Appointment, outcome notify.Outcome) {
	entry := appointments.AuditEntry{
		Type:          "booking_attempt",
		AppointmentID: appt.ID,
		ParentName:    appt.ParentName,
		Email:         appt.Email,
		ChildName:     appt.ChildName,
		ServiceType:   appt.ServiceType,
		Outcome:       string(outcome.Status),
		Reason:        outcome.Reason,
	}
	if outcome.Err != nil {
		entry.Error = outcome.Err.Error()
	}
	h.audit.Record(entry)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
