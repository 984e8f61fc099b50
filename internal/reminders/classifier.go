package reminders

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultHorizon bounds the upcoming bucket.
const DefaultHorizon = 24 * time.Hour

// Entry is a classified notification with its countdown at evaluation time.
type Entry struct {
	Notification
	Countdown Countdown `json:"countdown"`
}

// Buckets is the result of one classification pass. Pending holds unsent
// notifications already due; Upcoming holds unsent notifications due within
// the horizon. The two never share an id.
type Buckets struct {
	EvaluatedAt time.Time `json:"evaluated_at"`
	Pending     []Entry   `json:"pending"`
	Upcoming    []Entry   `json:"upcoming"`
	Anomalies   []Anomaly `json:"anomalies,omitempty"`
}

// Classifier derives buckets from wall-clock time.
type Classifier struct {
	horizon time.Duration
}

// NewClassifier creates a classifier with the given upcoming horizon.
// Non-positive values use DefaultHorizon.
func NewClassifier(horizon time.Duration) *Classifier {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &Classifier{horizon: horizon}
}

// Horizon returns the upcoming window length.
func (c *Classifier) Horizon() time.Duration { return c.horizon }

// Classify partitions notifications relative to now:
//
//	pending:  !sent && scheduled <= now
//	upcoming: !sent && now < scheduled <= now+horizon
//
// Sent records and records beyond the horizon are dropped. A zero
// scheduled time is reported as an anomaly. Repeated ids keep the first
// occurrence. Each bucket is ordered by scheduled time, then id.
func (c *Classifier) Classify(list []Notification, now time.Time) Buckets {
	out := Buckets{
		EvaluatedAt: now,
		Pending:     []Entry{},
		Upcoming:    []Entry{},
	}
	limit := now.Add(c.horizon)
	seen := make(map[uuid.UUID]struct{}, len(list))
	for _, n := range list {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		if n.Sent {
			continue
		}
		if n.ScheduledTime.IsZero() {
			out.Anomalies = append(out.Anomalies, Anomaly{
				NotificationID: n.ID,
				Field:          "scheduled_time",
				Reason:         "missing",
			})
			continue
		}
		switch {
		case !n.ScheduledTime.After(now):
			out.Pending = append(out.Pending, Entry{Notification: n, Countdown: Window(n.ScheduledTime, now)})
		case !n.ScheduledTime.After(limit):
			out.Upcoming = append(out.Upcoming, Entry{Notification: n, Countdown: Window(n.ScheduledTime, now)})
		}
	}
	sortEntries(out.Pending)
	sortEntries(out.Upcoming)
	return out
}

// Classify uses DefaultHorizon.
func Classify(list []Notification, now time.Time) Buckets {
	return NewClassifier(DefaultHorizon).Classify(list, now)
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.ScheduledTime.Equal(b.ScheduledTime) {
			return a.ScheduledTime.Before(b.ScheduledTime)
		}
		return a.ID.String() < b.ID.String()
	})
}
