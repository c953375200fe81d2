package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/portfolio/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 10
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 1
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the underlying pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Contact messages ---

// SaveContactMessage inserts a submitted contact form
func (r *PostgresRepository) SaveContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, visitor_id, name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		msg.ID,
		nullString(msg.VisitorID),
		msg.Name,
		msg.Email,
		nullString(msg.Subject),
		msg.Message,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}

	return nil
}

// ListContactMessages returns messages newest first
func (r *PostgresRepository) ListContactMessages(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error) {
	query := `
		SELECT id::text, visitor_id, name, email, subject, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC
	`
	args := make([]interface{}, 0)
	argNum := 1

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, limit)
		argNum++
	}

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.ContactMessage, 0)

	for rows.Next() {
		var m models.ContactMessage
		var visitorID, subject sql.NullString

		err := rows.Scan(
			&m.ID,
			&visitorID,
			&m.Name,
			&m.Email,
			&subject,
			&m.Message,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}

		m.VisitorID = visitorID.String
		m.Subject = subject.String

		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact messages: %w", err)
	}

	return messages, nil
}

// --- View events ---

// RecordView appends a view event
func (r *PostgresRepository) RecordView(ctx context.Context, visitorID, viewID string, at time.Time) error {
	query := `
		INSERT INTO view_events (visitor_id, view_id, viewed_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.pool.Exec(ctx, query, nullString(visitorID), viewID, at); err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}

	return nil
}

// CountViews returns how many times viewID was recorded
func (r *PostgresRepository) CountViews(ctx context.Context, viewID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM view_events WHERE view_id = $1`, viewID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count views: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
