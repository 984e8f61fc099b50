package bootstrap

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/podology-frontdesk/internal/appointments"
	"github.com/wolfman30/podology-frontdesk/internal/calendar"
	appconfig "github.com/wolfman30/podology-frontdesk/internal/config"
	"github.com/wolfman30/podology-frontdesk/internal/observability/metrics"
	"github.com/wolfman30/podology-frontdesk/internal/patients"
	"github.com/wolfman30/podology-frontdesk/internal/reminders"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

// Frontdesk is the wired API process: stores, services, board and handlers.
type Frontdesk struct {
	Appointments  *appointments.Store
	Notifications *reminders.Store
	Booking       *appointments.Service
	Tracker       *reminders.Tracker
	Board         *reminders.Board

	AppointmentsHandler *appointments.Handler
	CalendarHandler     *calendar.Handler
	RemindersHandler    *reminders.Handler
}

// BuildFrontdesk wires every component against db. redisClient may be nil,
// in which case mark-sent relies on the conditional update alone.
func BuildFrontdesk(cfg *appconfig.Config, db reminders.DB, redisClient *redis.Client, m *metrics.ReminderMetrics, logger *logging.Logger) (*Frontdesk, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("bootstrap: database is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	loc := cfg.Location()

	apptStore := appointments.NewStore(db)
	notifStore := reminders.NewStore(db)
	patientStore := patients.NewStore(db)

	planner := reminders.NewPlanner(loc, cfg.ClinicCountryCode)
	scheduler := reminders.NewScheduler(planner, notifStore, logger.Component("reminders.scheduler"))
	booking := appointments.NewService(apptStore, patientStore, scheduler, logger.Component("appointments"))

	var claimer reminders.Claimer
	if redisClient != nil {
		claimer = reminders.NewRedisClaimer(redisClient, cfg.MarkSentClaimTTL)
	}
	tracker := reminders.NewTracker(notifStore, claimer, m, logger.Component("reminders.tracker"))

	classifier := reminders.NewClassifier(cfg.UpcomingHorizon)
	board := reminders.NewBoard(reminders.BucketSource{Lister: notifStore}, classifier, tracker, m, logger.Component("reminders.board")).
		WithInterval(boardInterval(cfg.BoardRefreshInterval))

	return &Frontdesk{
		Appointments:  apptStore,
		Notifications: notifStore,
		Booking:       booking,
		Tracker:       tracker,
		Board:         board,

		AppointmentsHandler: appointments.NewHandler(apptStore, booking, logger),
		CalendarHandler:     calendar.NewHandler(apptStore, loc, logger),
		RemindersHandler:    reminders.NewHandler(notifStore, tracker, board, classifier, logger),
	}, nil
}

func boardInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return 5 * time.Minute
	}
	return d
}
