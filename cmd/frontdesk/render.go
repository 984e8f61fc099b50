package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/wolfman30/podology-frontdesk/internal/datekey"
	"github.com/wolfman30/podology-frontdesk/internal/reminders"
)

var typeLabels = map[reminders.NotificationType]string{
	reminders.DayBefore:         "1 dia antes",
	reminders.HourAndHalfBefore: "1h30 antes",
}

// render prints the board as two tables. Times are shown in the clinic zone.
func render(w io.Writer, snap reminders.Snapshot, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	fmt.Fprintf(w, "Lembretes - atualizado %s\n", snap.EvaluatedAt.In(loc).Format("02/01/2006 15:04"))
	if snap.LastError != "" {
		fmt.Fprintf(w, "! última atualização falhou: %s\n", snap.LastError)
	}

	section(w, fmt.Sprintf("Pendentes (%d)", len(snap.Pending)), snap.Pending, loc)
	section(w, fmt.Sprintf("Próximos (%d)", len(snap.Upcoming)), snap.Upcoming, loc)

	if n := len(snap.Anomalies); n > 0 {
		fmt.Fprintf(w, "\n%d registro(s) ignorado(s) por dados inválidos\n", n)
	}
}

func section(w io.Writer, title string, entries []reminders.Entry, loc *time.Location) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(entries) == 0 {
		fmt.Fprintln(w, "  nenhum")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  PACIENTE\tCONSULTA\tTIPO\tENVIAR\tFALTA\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "  %s\t%s %s\t%s\t%s\t%s\t%s\n",
			e.PatientName,
			datekey.FormatBR(e.AppointmentDate), e.AppointmentTime,
			label(e.Type),
			e.ScheduledTime.In(loc).Format("02/01 15:04"),
			e.Countdown.String(),
			e.ID,
		)
	}
	_ = tw.Flush()
}

func label(t reminders.NotificationType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}
