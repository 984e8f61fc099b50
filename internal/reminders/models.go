package reminders

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationType selects the reminder offset.
type NotificationType string

const (
	DayBefore         NotificationType = "day_before"
	HourAndHalfBefore NotificationType = "hour_and_half_before"
)

// Offsets before the appointment instant.
var offsets = map[NotificationType]time.Duration{
	DayBefore:         24 * time.Hour,
	HourAndHalfBefore: 90 * time.Minute,
}

// Labels written by earlier versions of the intake system.
var legacyTypes = map[string]NotificationType{
	"1_day_before":     DayBefore,
	"1_hour_30_before": HourAndHalfBefore,
}

// Types lists every notification type in send order.
func Types() []NotificationType {
	return []NotificationType{DayBefore, HourAndHalfBefore}
}

// Offset returns how long before the appointment the reminder is due.
func (t NotificationType) Offset() (time.Duration, bool) {
	d, ok := offsets[t]
	return d, ok
}

// ParseNotificationType accepts canonical and legacy labels.
func ParseNotificationType(v string) (NotificationType, error) {
	v = strings.TrimSpace(v)
	if t, ok := legacyTypes[v]; ok {
		return t, nil
	}
	t := NotificationType(v)
	if _, ok := offsets[t]; !ok {
		return "", fmt.Errorf("reminders: unknown notification type %q", v)
	}
	return t, nil
}

// UnmarshalJSON normalizes legacy labels. Unknown labels are kept as-is so a
// single bad record does not fail a whole list decode.
func (t *NotificationType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if parsed, err := ParseNotificationType(s); err == nil {
		*t = parsed
		return nil
	}
	*t = NotificationType(s)
	return nil
}

// Notification is a precomputed reminder. ScheduledTime never changes after
// creation and Sent only moves from false to true.
type Notification struct {
	ID              uuid.UUID        `json:"id"`
	AppointmentID   uuid.UUID        `json:"appointment_id"`
	PatientID       string           `json:"patient_id"`
	PatientName     string           `json:"patient_name"`
	PatientContact  string           `json:"patient_contact"`
	Type            NotificationType `json:"notification_type"`
	AppointmentDate string           `json:"appointment_date"`
	AppointmentTime string           `json:"appointment_time"`
	ScheduledTime   time.Time        `json:"scheduled_time"`
	Message         string           `json:"message"`
	DeliveryLink    string           `json:"whatsapp_link"`
	Sent            bool             `json:"sent"`
	SentAt          *time.Time       `json:"sent_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Anomaly records a notification excluded from classification.
type Anomaly struct {
	NotificationID uuid.UUID `json:"notification_id"`
	Field          string    `json:"field"`
	Reason         string    `json:"reason"`
}
