// Package patients exposes the read-only patient view that booking needs.
// Registration and the clinical questionnaire live in the intake system,
// which shares the patients table.
package patients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when no patient matches the id.
var ErrNotFound = errors.New("patients: not found")

// Patient is the subset of the intake record used for scheduling and reminders.
type Patient struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// DB abstracts the pgx query interface for testing.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store looks patients up by id.
type Store struct {
	db DB
}

// NewStore creates a patient lookup store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Get returns the patient with id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	var p Patient
	err := s.db.QueryRow(ctx, `
		SELECT id, name, contact
		FROM patients
		WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.Contact)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: get: %w", err)
	}
	return &p, nil
}
