package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventplanner/internal/model"
)

// foreignKeyViolation is the PostgreSQL error code raised when an RSVP
// references an event that does not exist.
const foreignKeyViolation = "23503"

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, dsn string, log *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				break
			}
			// Keep the ping failure as the loop's error: returning a
			// closed pool with a nil error would hand the caller a dead
			// connection.
			pool.Close()
			err = pingErr
		}
		log.Warn("db connect attempt failed, retrying in 2s", "attempt", attempt, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pool, nil
}

// PostgresStore persists events and RSVPs in PostgreSQL. It uses pgx
// directly (no ORM); the ON CONFLICT upsert gives the same overwrite and
// serialization guarantees the memory store gets from its lock.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore on an existing pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			starts_at   TIMESTAMPTZ NOT NULL,
			location    TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			creator     TEXT NOT NULL,
			attendees   TEXT[] NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS rsvps (
			event_id     TEXT NOT NULL REFERENCES events(id),
			contact      TEXT NOT NULL,
			response     TEXT NOT NULL,
			responded_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (event_id, contact)
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new event row.
func (s *PostgresStore) Create(ctx context.Context, event *model.Event) error {
	if err := validate(event); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO events (id, title, starts_at, location, description, creator, attendees, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Title, event.StartsAt, event.Location, event.Description,
		event.Creator, event.Attendees, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Get returns a single event with its RSVPs, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := s.db.QueryRow(ctx,
		`SELECT id, title, starts_at, location, description, creator, attendees, created_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.StartsAt, &e.Location, &e.Description, &e.Creator, &e.Attendees, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	e.RSVPs = make(map[string]model.RSVP)
	rows, err := s.db.Query(ctx,
		`SELECT contact, response, responded_at FROM rsvps WHERE event_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get rsvps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var contact string
		var r model.RSVP
		if err := rows.Scan(&contact, &r.Response, &r.RespondedAt); err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		e.RSVPs[contact] = r
	}
	return &e, rows.Err()
}

// List returns all events with their RSVPs, ordered by creation time.
func (s *PostgresStore) List(ctx context.Context) ([]*model.Event, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, starts_at, location, description, creator, attendees, created_at
		 FROM events
		 ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	byID := make(map[string]*model.Event)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.StartsAt, &e.Location, &e.Description,
			&e.Creator, &e.Attendees, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.RSVPs = make(map[string]model.RSVP)
		events = append(events, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rsvpRows, err := s.db.Query(ctx,
		`SELECT event_id, contact, response, responded_at FROM rsvps`)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	defer rsvpRows.Close()
	for rsvpRows.Next() {
		var eventID, contact string
		var r model.RSVP
		if err := rsvpRows.Scan(&eventID, &contact, &r.Response, &r.RespondedAt); err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		if e, ok := byID[eventID]; ok {
			e.RSVPs[contact] = r
		}
	}
	return events, rsvpRows.Err()
}

// UpsertRSVP inserts or overwrites one guest's answer for one event.
func (s *PostgresStore) UpsertRSVP(ctx context.Context, eventID, contact string, response model.Response, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO rsvps (event_id, contact, response, responded_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (event_id, contact)
		 DO UPDATE SET response = EXCLUDED.response, responded_at = EXCLUDED.responded_at`,
		eventID, contact, string(response), at,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("upsert rsvp: %w", err)
	}
	return nil
}
