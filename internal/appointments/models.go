package appointments

import (
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/podology-frontdesk/internal/datekey"
)

// Status is a free-form appointment label. The engine never branches on it
// except to skip reminder planning for cancelled bookings.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Appointment is a booked visit. PatientName is a snapshot taken at booking
// time and is not re-synced if the patient record changes.
type Appointment struct {
	ID          uuid.UUID `json:"id"`
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Instant returns the appointment moment in loc.
func (a Appointment) Instant(loc *time.Location) (time.Time, error) {
	return datekey.Instant(a.Date, a.Time, loc)
}
