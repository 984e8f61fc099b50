package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no appointment matches the id.
var ErrNotFound = errors.New("appointments: not found")

const listLimit = 1000

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists appointments in Postgres.
type Store struct {
	db DB
}

// NewStore creates a new appointment store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts an appointment, filling id, status and created_at when unset.
func (s *Store) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, patient_name, date, time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.PatientID, a.PatientName, a.Date, a.Time, string(a.Status), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("appointments: create: %w", err)
	}
	return nil
}

// Get returns one appointment or ErrNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	var status string
	err := s.db.QueryRow(ctx, `
		SELECT id, patient_id, patient_name, date, time, status, created_at
		FROM appointments
		WHERE id = $1`, id).Scan(&a.ID, &a.PatientID, &a.PatientName, &a.Date, &a.Time, &status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: get: %w", err)
	}
	a.Status = Status(status)
	return &a, nil
}

// List returns every appointment in date/time order.
func (s *Store) List(ctx context.Context) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, patient_id, patient_name, date, time, status, created_at
		FROM appointments
		ORDER BY date ASC, time ASC, created_at ASC
		LIMIT $1`, listLimit)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListByPatient returns the appointments of one patient.
func (s *Store) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, patient_id, patient_name, date, time, status, created_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date ASC, time ASC, created_at ASC
		LIMIT $2`, patientID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by patient: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	result := []Appointment{}
	for rows.Next() {
		var a Appointment
		var status string
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.Date, &a.Time, &status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		a.Status = Status(status)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: rows: %w", err)
	}
	return result, nil
}
