package reminders

import (
	"encoding/json"
	"fmt"
	"time"
)

// Countdown is the time left until a notification is due, in whole hours
// and minutes. Overdue is set once the scheduled time is reached.
type Countdown struct {
	Overdue bool
	Hours   int
	Minutes int
}

// Window computes the countdown from now to scheduled. Equality counts as
// overdue. Both components are floored, so 1h29m59s reads 1h 29m.
func Window(scheduled, now time.Time) Countdown {
	d := scheduled.Sub(now)
	if d <= 0 {
		return Countdown{Overdue: true}
	}
	return Countdown{
		Hours:   int(d / time.Hour),
		Minutes: int((d % time.Hour) / time.Minute),
	}
}

func (c Countdown) String() string {
	if c.Overdue {
		return "overdue"
	}
	return fmt.Sprintf("%dh %dm", c.Hours, c.Minutes)
}

// MarshalJSON includes the rendered label.
func (c Countdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Overdue bool   `json:"overdue"`
		Hours   int    `json:"hours"`
		Minutes int    `json:"minutes"`
		Label   string `json:"label"`
	}{c.Overdue, c.Hours, c.Minutes, c.String()})
}
