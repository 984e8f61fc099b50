package reminders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no notification matches the id.
var ErrNotFound = errors.New("reminders: notification not found")

const (
	listLimit   = 1000
	bucketLimit = 100
)

const notificationColumns = `id, appointment_id, patient_id, patient_name, patient_contact, notification_type,
		appointment_date, appointment_time, scheduled_time, message, delivery_link, sent, sent_at, created_at`

// DB abstracts the pgx query interface for testing.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists notifications in Postgres.
type Store struct {
	db  DB
	now func() time.Time
}

// NewStore creates a notification store.
func NewStore(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

// CreateBatch inserts the notifications of one appointment atomically.
func (s *Store) CreateBatch(ctx context.Context, list []Notification) error {
	if len(list) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reminders: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range list {
		n := &list[i]
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = s.now().UTC()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO notifications (id, appointment_id, patient_id, patient_name, patient_contact, notification_type,
				appointment_date, appointment_time, scheduled_time, message, delivery_link, sent, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, $12)`,
			n.ID, n.AppointmentID, n.PatientID, n.PatientName, n.PatientContact, string(n.Type),
			n.AppointmentDate, n.AppointmentTime, n.ScheduledTime, n.Message, n.DeliveryLink, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("reminders: insert notification: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("reminders: commit: %w", err)
	}
	return nil
}

// List returns every notification, sent or not.
func (s *Store) List(ctx context.Context) ([]Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		ORDER BY scheduled_time ASC NULLS LAST
		LIMIT $1`, listLimit)
	if err != nil {
		return nil, fmt.Errorf("reminders: list: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// ListPending returns unsent notifications due on or before asOf.
func (s *Store) ListPending(ctx context.Context, asOf time.Time) ([]Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE sent = false AND scheduled_time <= $1
		ORDER BY scheduled_time ASC
		LIMIT $2`, asOf, bucketLimit)
	if err != nil {
		return nil, fmt.Errorf("reminders: list pending: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// ListUpcoming returns unsent notifications due in (asOf, asOf+horizon].
func (s *Store) ListUpcoming(ctx context.Context, asOf time.Time, horizon time.Duration) ([]Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE sent = false AND scheduled_time > $1 AND scheduled_time <= $2
		ORDER BY scheduled_time ASC
		LIMIT $3`, asOf, asOf.Add(horizon), bucketLimit)
	if err != nil {
		return nil, fmt.Errorf("reminders: list upcoming: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// MarkSent flips sent to true. It reports whether this call changed the
// row; an already-sent notification returns false with no error.
func (s *Store) MarkSent(ctx context.Context, id uuid.UUID) (bool, error) {
	now := s.now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET sent = true, sent_at = $1
		WHERE id = $2 AND sent = false`, now, id)
	if err != nil {
		return false, fmt.Errorf("reminders: mark sent: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var sent bool
	err = s.db.QueryRow(ctx, `SELECT sent FROM notifications WHERE id = $1`, id).Scan(&sent)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("reminders: mark sent lookup: %w", err)
	}
	return false, nil
}

func scanNotifications(rows pgx.Rows) ([]Notification, error) {
	result := []Notification{}
	for rows.Next() {
		var n Notification
		var kind string
		var scheduled, sentAt sql.NullTime
		err := rows.Scan(
			&n.ID, &n.AppointmentID, &n.PatientID, &n.PatientName, &n.PatientContact, &kind,
			&n.AppointmentDate, &n.AppointmentTime, &scheduled, &n.Message, &n.DeliveryLink,
			&n.Sent, &sentAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("reminders: scan notification: %w", err)
		}
		if t, err := ParseNotificationType(kind); err == nil {
			n.Type = t
		} else {
			n.Type = NotificationType(kind)
		}
		if scheduled.Valid {
			n.ScheduledTime = scheduled.Time
		}
		if sentAt.Valid {
			value := sentAt.Time
			n.SentAt = &value
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reminders: rows: %w", err)
	}
	return result, nil
}
