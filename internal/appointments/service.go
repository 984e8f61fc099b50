package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/podology-frontdesk/internal/datekey"
	"github.com/wolfman30/podology-frontdesk/internal/patients"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

var appointmentsTracer = otel.Tracer("frontdesk.internal.appointments")

var (
	ErrInvalidDate     = errors.New("appointments: invalid date")
	ErrInvalidTime     = errors.New("appointments: invalid time")
	ErrPatientNotFound = errors.New("appointments: patient not found")
)

// Repository is the write side of the appointment store.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
}

// PatientLookup resolves the patient being booked.
type PatientLookup interface {
	Get(ctx context.Context, id string) (*patients.Patient, error)
}

// ReminderScheduler creates the reminder records for a new booking.
type ReminderScheduler interface {
	Schedule(ctx context.Context, appt Appointment, contact string) error
}

// BookRequest is the input of createAppointment.
type BookRequest struct {
	PatientID string `json:"patient_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// Service books appointments and hands them to the reminder scheduler.
type Service struct {
	repo      Repository
	patients  PatientLookup
	reminders ReminderScheduler
	logger    *logging.Logger
	now       func() time.Time
}

// NewService constructs a booking service. reminders may be nil.
func NewService(repo Repository, patients PatientLookup, reminders ReminderScheduler, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if patients == nil {
		panic("appointments: patient lookup required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		patients:  patients,
		reminders: reminders,
		logger:    logger,
		now:       time.Now,
	}
}

// Book validates the request, snapshots the patient name, stores the
// appointment and schedules its reminders. A reminder failure is logged and
// does not undo the booking.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book", trace.WithAttributes(
		attribute.String("frontdesk.patient_id", req.PatientID),
		attribute.String("frontdesk.date", req.Date),
	))
	defer span.End()

	date := strings.TrimSpace(req.Date)
	clock := strings.TrimSpace(req.Time)
	if _, err := datekey.ParseDate(date); err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: %v", ErrInvalidDate, err))
	}
	h, m, err := datekey.ParseClock(clock)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: %v", ErrInvalidTime, err))
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if errors.Is(err, patients.ErrNotFound) {
		return nil, s.fail(span, fmt.Errorf("%w: %s", ErrPatientNotFound, req.PatientID))
	}
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("appointments: book: %w", err))
	}

	appt := &Appointment{
		PatientID:   patient.ID,
		PatientName: patient.Name,
		Date:        date,
		Time:        fmt.Sprintf("%02d:%02d", h, m),
		Status:      StatusScheduled,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.String("frontdesk.appointment_id", appt.ID.String()))

	if s.reminders != nil {
		if err := s.reminders.Schedule(ctx, *appt, patient.Contact); err != nil {
			span.RecordError(err)
			s.logger.Error("appointment reminders not scheduled", "error", err, "appointment_id", appt.ID)
		}
	}
	s.logger.Info("appointment booked", "appointment_id", appt.ID, "patient_id", appt.PatientID, "date", appt.Date, "time", appt.Time)
	return appt, nil
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
