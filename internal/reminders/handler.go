package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

// Lister is the read side the handler needs.
type Lister interface {
	FullLister
	BucketLister
}

// Handler serves the notification endpoints.
type Handler struct {
	store      Lister
	marker     Marker
	board      *Board
	classifier *Classifier
	logger     *logging.Logger
	now        func() time.Time
}

// NewHandler creates a notifications handler. When board is set, mark-sent
// goes through it so the board refreshes afterwards.
func NewHandler(store Lister, marker Marker, board *Board, classifier *Classifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if classifier == nil {
		classifier = NewClassifier(DefaultHorizon)
	}
	return &Handler{
		store:      store,
		marker:     marker,
		board:      board,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterRoutes mounts the read endpoints. Expected under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.listNotifications)
	r.Get("/notifications/pending", h.listPending)
	r.Get("/notifications/upcoming", h.listUpcoming)
	r.Get("/board", h.getBoard)
}

// MarkSent is mounted separately so the router can rate-limit it.
func (h *Handler) MarkSent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	var mark func(context.Context, uuid.UUID) (MarkResult, error)
	switch {
	case h.board != nil && h.board.marker != nil:
		mark = h.board.MarkSent
	case h.marker != nil:
		mark = h.marker.MarkSent
	default:
		writeError(w, http.StatusNotImplemented, "mark sent unavailable")
		return
	}

	res, err := mark(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "notification not found")
	default:
		h.logger.Error("notifications handler: mark sent", "error", err, "notification_id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("notifications handler: list", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	list, err := h.store.ListPending(r.Context(), now)
	if err != nil {
		h.logger.Error("notifications handler: list pending", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, h.classifier.Classify(list, now).Pending)
}

func (h *Handler) listUpcoming(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	list, err := h.store.ListUpcoming(r.Context(), now, h.classifier.Horizon())
	if err != nil {
		h.logger.Error("notifications handler: list upcoming", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, h.classifier.Classify(list, now).Upcoming)
}

func (h *Handler) getBoard(w http.ResponseWriter, r *http.Request) {
	if h.board == nil {
		writeError(w, http.StatusNotImplemented, "board unavailable")
		return
	}
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		if _, err := h.board.Refresh(r.Context()); err != nil {
			h.logger.Warn("notifications handler: board refresh", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
