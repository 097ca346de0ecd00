package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"padelchat/internal/apperr"
	"padelchat/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS courts (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		type           TEXT NOT NULL,
		status         TEXT NOT NULL,
		price_per_hour NUMERIC(8,2) NOT NULL,
		description    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE SEQUENCE IF NOT EXISTS reservation_number_seq`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id          TEXT PRIMARY KEY,
		court_id    TEXT NOT NULL REFERENCES courts(id),
		court_name  TEXT NOT NULL,
		date        TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		user_name   TEXT NOT NULL,
		status      TEXT NOT NULL,
		total_price NUMERIC(8,2) NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS reservations_confirmed_slot
		ON reservations (court_id, date, start_time) WHERE status = 'confirmed'`,
	`CREATE INDEX IF NOT EXISTS reservations_user_name ON reservations (lower(user_name))`,
}

const seedCourt = `
	INSERT INTO courts (id, name, type, status, price_per_hour, description)
	VALUES (:id, :name, :type, :status, :price_per_hour, :description)
	ON CONFLICT (id) DO NOTHING
`

const reservationColumns = `id, court_id, court_name, date, start_time, end_time, user_name, status, total_price`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Migrate creates the schema and seeds the court catalogue. Existing courts
// are left untouched.
func (r *PostgresRepository) Migrate(ctx context.Context, courts []model.Court) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	for _, c := range courts {
		if _, err := tx.NamedExecContext(ctx, seedCourt, c); err != nil {
			return fmt.Errorf("failed to seed court %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListCourts(ctx context.Context) ([]model.Court, error) {
	var courts []model.Court
	query := `SELECT id, name, type, status, price_per_hour, description FROM courts ORDER BY id`
	if err := r.db.SelectContext(ctx, &courts, query); err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	return courts, nil
}

func (r *PostgresRepository) GetCourt(ctx context.Context, courtID string) (*model.Court, error) {
	var court model.Court
	query := `SELECT id, name, type, status, price_per_hour, description FROM courts WHERE id = $1`
	err := r.db.GetContext(ctx, &court, query, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get court: %w", err)
	}
	return &court, nil
}

func (r *PostgresRepository) BookedStartTimes(ctx context.Context, courtID, date string) (map[string]bool, error) {
	var starts []string
	query := `
		SELECT start_time FROM reservations
		WHERE court_id = $1 AND date = $2 AND status = 'confirmed'
	`
	if err := r.db.SelectContext(ctx, &starts, query, courtID, date); err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}

	booked := make(map[string]bool, len(starts))
	for _, s := range starts {
		booked[s] = true
	}
	return booked, nil
}

func (r *PostgresRepository) CreateReservation(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (id, court_id, court_name, date, start_time, end_time, user_name, status, total_price)
		VALUES ('RES-' || lpad(nextval('reservation_number_seq')::text, 4, '0'), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.GetContext(ctx, &res.ID, query,
		res.CourtID, res.CourtName, res.Date, res.StartTime, res.EndTime, res.UserName, res.Status, res.TotalPrice)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperr.New(apperr.CodeSlotTaken,
				fmt.Sprintf("Slot %s on %s is already booked", res.StartTime, res.Date))
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListReservationsByUser(ctx context.Context, userName string) ([]model.Reservation, error) {
	var reservations []model.Reservation
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE lower(user_name) = lower($1) AND status = 'confirmed'
		ORDER BY date, start_time`
	if err := r.db.SelectContext(ctx, &reservations, query, userName); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (r *PostgresRepository) CancelReservation(ctx context.Context, reservationID string) (*model.Reservation, error) {
	var res model.Reservation
	query := `UPDATE reservations SET status = 'cancelled' WHERE id = $1 RETURNING ` + reservationColumns
	err := r.db.GetContext(ctx, &res, query, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}
	return &res, nil
}
