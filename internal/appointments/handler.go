package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

// Lister is the read side of the appointment store.
type Lister interface {
	List(ctx context.Context) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]Appointment, error)
}

// Booker books a new appointment.
type Booker interface {
	Book(ctx context.Context, req BookRequest) (*Appointment, error)
}

// Handler serves the appointment endpoints.
type Handler struct {
	store   Lister
	booking Booker
	logger  *logging.Logger
}

// NewHandler creates an appointments HTTP handler.
func NewHandler(store Lister, booking Booker, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, booking: booking, logger: logger}
}

// RegisterRoutes mounts the appointment endpoints. Expected under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/appointments", h.listAppointments)
	r.Post("/appointments", h.createAppointment)
	r.Get("/patients/{patientID}/appointments", h.listPatientAppointments)
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("appointments handler: list", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) listPatientAppointments(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "missing patient_id")
		return
	}
	list, err := h.store.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("appointments handler: list by patient", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.PatientID == "" {
		writeError(w, http.StatusBadRequest, "patient_id is required")
		return
	}
	appt, err := h.booking.Book(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, appt)
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidTime):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient not found")
	default:
		h.logger.Error("appointments handler: create", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
