package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/podology-frontdesk/internal/appointments"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

// ErrUnplannable is returned when an appointment has no usable date or time.
var ErrUnplannable = errors.New("reminders: appointment date/time unusable")

// Planner derives notification records from an appointment.
type Planner struct {
	loc         *time.Location
	countryCode string
	now         func() time.Time
}

// NewPlanner creates a planner. Appointment instants are resolved in loc.
func NewPlanner(loc *time.Location, countryCode string) *Planner {
	if loc == nil {
		loc = time.UTC
	}
	return &Planner{loc: loc, countryCode: countryCode, now: time.Now}
}

// Plan returns one notification per type, scheduled at the appointment
// instant minus the type's offset. Reminders whose time has already passed
// are still returned and surface as pending immediately.
func (p *Planner) Plan(appt appointments.Appointment, contact string) ([]Notification, error) {
	at, err := appt.Instant(p.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnplannable, err)
	}
	created := p.now().UTC()
	out := make([]Notification, 0, len(offsets))
	for _, t := range Types() {
		offset, _ := t.Offset()
		msg := MessageTemplate(t, appt.PatientName, appt.Date, appt.Time)
		out = append(out, Notification{
			ID:              uuid.New(),
			AppointmentID:   appt.ID,
			PatientID:       appt.PatientID,
			PatientName:     appt.PatientName,
			PatientContact:  contact,
			Type:            t,
			AppointmentDate: appt.Date,
			AppointmentTime: appt.Time,
			ScheduledTime:   at.Add(-offset).UTC(),
			Message:         msg,
			DeliveryLink:    DeliveryLink(contact, p.countryCode, msg),
			CreatedAt:       created,
		})
	}
	return out, nil
}

type notificationCreator interface {
	CreateBatch(ctx context.Context, list []Notification) error
}

// Scheduler persists planned reminders for new bookings.
type Scheduler struct {
	planner *Planner
	store   notificationCreator
	logger  *logging.Logger
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(planner *Planner, store notificationCreator, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if planner == nil {
		planner = NewPlanner(time.UTC, "")
	}
	return &Scheduler{planner: planner, store: store, logger: logger}
}

// Schedule plans and stores both reminders. Cancelled appointments get none.
func (s *Scheduler) Schedule(ctx context.Context, appt appointments.Appointment, contact string) error {
	if appt.Status == appointments.StatusCancelled {
		s.logger.Info("reminders: skipping cancelled appointment", "appointment_id", appt.ID)
		return nil
	}
	list, err := s.planner.Plan(appt, contact)
	if err != nil {
		return err
	}
	if err := s.store.CreateBatch(ctx, list); err != nil {
		return err
	}
	s.logger.Info("reminders scheduled",
		"appointment_id", appt.ID,
		"count", len(list),
		"first_due", list[0].ScheduledTime,
	)
	return nil
}
