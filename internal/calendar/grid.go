// Package calendar lays a month of appointments out as a calendar grid.
package calendar

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/podology-frontdesk/internal/appointments"
	"github.com/wolfman30/podology-frontdesk/internal/datekey"
)

// Cell is one slot of the grid. Day 0 marks leading or trailing padding
// before day 1 or after the last day of the month.
type Cell struct {
	Day          int
	Date         string
	Appointments []appointments.Appointment
}

// IsPadding reports whether the cell is outside the month.
func (c Cell) IsPadding() bool { return c.Day == 0 }

// MarshalJSON renders padding cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.IsPadding() {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Day          int                        `json:"day"`
		Date         string                     `json:"date"`
		Appointments []appointments.Appointment `json:"appointments"`
	}{c.Day, c.Date, c.Appointments})
}

// Anomaly records an appointment excluded from placement.
type Anomaly struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Field         string    `json:"field"`
	Value         string    `json:"value"`
	Reason        string    `json:"reason"`
}

// MonthGrid is the ordered cell list for one month: leading padding for
// the weekday offset of day 1 (0 = Sunday), then one cell per day.
type MonthGrid struct {
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	Cells     []Cell     `json:"cells"`
	Anomalies []Anomaly  `json:"anomalies,omitempty"`
}

// BuildMonth places each appointment whose date falls in the month into the
// cell with the same YYYY-MM-DD key. Dates are compared as plain keys with no
// zone conversion. Appointments with unparseable dates are skipped and
// reported in Anomalies. Out-of-range months are normalized
// (month 13 of 2024 is January 2025).
func BuildMonth(year int, month time.Month, appts []appointments.Appointment) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	year, month = first.Year(), first.Month()

	grid := MonthGrid{Year: year, Month: month}
	byDate := make(map[string][]appointments.Appointment)
	for _, a := range appts {
		d, err := datekey.ParseDate(a.Date)
		if err != nil {
			grid.Anomalies = append(grid.Anomalies, Anomaly{
				AppointmentID: a.ID,
				Field:         "date",
				Value:         a.Date,
				Reason:        err.Error(),
			})
			continue
		}
		if d.Year() != year || d.Month() != month {
			continue
		}
		key := datekey.KeyOf(d)
		byDate[key] = append(byDate[key], a)
	}

	lead := int(first.Weekday())
	days := datekey.DaysIn(year, month)
	grid.Cells = make([]Cell, 0, lead+days)
	for i := 0; i < lead; i++ {
		grid.Cells = append(grid.Cells, Cell{})
	}
	for day := 1; day <= days; day++ {
		key := datekey.Key(year, month, day)
		list := byDate[key]
		if list == nil {
			list = []appointments.Appointment{}
		}
		grid.Cells = append(grid.Cells, Cell{Day: day, Date: key, Appointments: list})
	}
	return grid
}

// LeadingPadding returns the number of padding cells before day 1.
func (g MonthGrid) LeadingPadding() int {
	n := 0
	for _, c := range g.Cells {
		if !c.IsPadding() {
			break
		}
		n++
	}
	return n
}

// Weeks splits the grid into rows of seven, padding the last row.
func (g MonthGrid) Weeks() [][]Cell {
	cells := append([]Cell(nil), g.Cells...)
	for len(cells)%7 != 0 {
		cells = append(cells, Cell{})
	}
	weeks := make([][]Cell, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Day returns the cell for day d, if it exists.
func (g MonthGrid) Day(d int) (Cell, bool) {
	idx := g.LeadingPadding() + d - 1
	if d < 1 || idx >= len(g.Cells) {
		return Cell{}, false
	}
	return g.Cells[idx], true
}

// Shift moves a reference month by delta months.
func Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// MonthOf returns the year and month of t in loc.
func MonthOf(t time.Time, loc *time.Location) (int, time.Month) {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Year(), t.Month()
}
