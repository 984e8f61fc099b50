package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/podology-frontdesk/internal/appointments"
	"github.com/wolfman30/podology-frontdesk/internal/datekey"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

// AppointmentLister supplies the loaded appointment collection.
type AppointmentLister interface {
	List(ctx context.Context) ([]appointments.Appointment, error)
}

// Handler serves the month grid.
type Handler struct {
	store  AppointmentLister
	loc    *time.Location
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates a calendar handler. The current month is resolved in loc.
func NewHandler(store AppointmentLister, loc *time.Location, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{store: store, loc: loc, logger: logger, now: time.Now}
}

// RegisterRoutes mounts GET /calendar?month=YYYY-MM.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/calendar", h.getMonth)
}

func (h *Handler) getMonth(w http.ResponseWriter, r *http.Request) {
	year, month := MonthOf(h.now(), h.loc)
	if q := r.URL.Query().Get("month"); q != "" {
		y, m, err := datekey.ParseMonth(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		year, month = y, m
	}

	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("calendar handler: list appointments", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	grid := BuildMonth(year, month, list)
	for _, a := range grid.Anomalies {
		h.logger.Warn("appointment skipped on calendar", "appointment_id", a.AppointmentID, "field", a.Field, "value", a.Value)
	}

	writeJSON(w, http.StatusOK, grid)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
