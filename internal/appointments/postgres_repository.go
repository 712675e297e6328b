package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is the subset of pgxpool.Pool the repository uses. Mocks can be
// injected for tests.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithQuerier allows injecting mocks for tests.
func NewPostgresRepositoryWithQuerier(q pgxQuerier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	query := `
		INSERT INTO appointments (
			id, parent_name, email, phone, child_name, child_age,
			service_type, preferred_date, preferred_time, additional_notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := r.db.Exec(ctx, query,
		appt.ID,
		appt.ParentName,
		appt.Email,
		appt.Phone,
		appt.ChildName,
		appt.ChildAge,
		appt.ServiceType,
		appt.PreferredDate,
		appt.PreferredTime,
		appt.AdditionalNotes,
		appt.CreatedAt,
	); err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches one appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `
		SELECT id, parent_name, email, phone, child_name, child_age,
		       service_type, preferred_date, preferred_time, additional_notes, created_at
		FROM appointments
		WHERE id = $1
	`
	var appt Appointment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&appt.ID,
		&appt.ParentName,
		&appt.Email,
		&appt.Phone,
		&appt.ChildName,
		&appt.ChildAge,
		&appt.ServiceType,
		&appt.PreferredDate,
		&appt.PreferredTime,
		&appt.AdditionalNotes,
		&appt.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return &appt, nil
}

// List returns all appointments, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Appointment, error) {
	query := `
		SELECT id, parent_name, email, phone, child_name, child_age,
		       service_type, preferred_date, preferred_time, additional_notes, created_at
		FROM appointments
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(
			&appt.ID,
			&appt.ParentName,
			&appt.Email,
			&appt.Phone,
			&appt.ChildName,
			&appt.ChildAge,
			&appt.ServiceType,
			&appt.PreferredDate,
			&appt.PreferredTime,
			&appt.AdditionalNotes,
			&appt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, &appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: rows failed: %w", err)
	}
	return out, nil
}
