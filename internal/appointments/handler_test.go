package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	all       []Appointment
	byPatient map[string][]Appointment
	err       error
}

func (s stubLister) List(context.Context) ([]Appointment, error) { return s.all, s.err }

func (s stubLister) ListByPatient(_ context.Context, id string) ([]Appointment, error) {
	return s.byPatient[id], s.err
}

type stubBooker struct {
	appt *Appointment
	err  error
	got  BookRequest
}

func (s *stubBooker) Book(_ context.Context, req BookRequest) (*Appointment, error) {
	s.got = req
	return s.appt, s.err
}

func newTestRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestListAppointments(t *testing.T) {
	h := NewHandler(stubLister{all: []Appointment{{PatientID: "p-1", Date: "2025-03-10", Time: "14:00"}}}, &stubBooker{}, nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2025-03-10", got[0].Date)
}

func TestListPatientAppointments(t *testing.T) {
	h := NewHandler(stubLister{byPatient: map[string][]Appointment{"p-2": {{PatientID: "p-2"}}}}, &stubBooker{}, nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patients/p-2/appointments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"patient_id":"p-2"`)
}

func TestListAppointmentsStoreError(t *testing.T) {
	h := NewHandler(stubLister{err: errors.New("db down")}, &stubBooker{}, nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateAppointmentStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"created", `{"patient_id":"p-1","date":"2025-03-10","time":"14:00"}`, nil, http.StatusCreated},
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"missing patient", `{"date":"2025-03-10","time":"14:00"}`, nil, http.StatusBadRequest},
		{"invalid date", `{"patient_id":"p-1","date":"x","time":"14:00"}`, ErrInvalidDate, http.StatusBadRequest},
		{"invalid time", `{"patient_id":"p-1","date":"2025-03-10","time":"x"}`, ErrInvalidTime, http.StatusBadRequest},
		{"unknown patient", `{"patient_id":"p-0","date":"2025-03-10","time":"14:00"}`, ErrPatientNotFound, http.StatusNotFound},
		{"store failure", `{"patient_id":"p-1","date":"2025-03-10","time":"14:00"}`, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booker := &stubBooker{appt: &Appointment{PatientID: "p-1"}, err: tt.err}
			h := NewHandler(stubLister{}, booker, nil)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(tt.body))
			newTestRouter(h).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
