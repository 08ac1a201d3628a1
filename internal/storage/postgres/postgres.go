// Package postgres is the relational job repository. Full records are kept as
// JSONB, with status and relevance copied into columns for listing.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gocraft/dbr/v2"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	company      TEXT NOT NULL,
	location     TEXT NOT NULL,
	detail_url   TEXT NOT NULL,
	status       TEXT NOT NULL,
	relevance    INTEGER NOT NULL DEFAULT 0,
	posted_at    TIMESTAMPTZ NOT NULL,
	applied_at   TIMESTAMPTZ,
	follow_up_at TIMESTAMPTZ,
	record       JSONB NOT NULL,
	scraped_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS jobs_status_idx ON jobs (status);
CREATE INDEX IF NOT EXISTS jobs_follow_up_idx ON jobs (follow_up_at) WHERE follow_up_at IS NOT NULL;

CREATE TABLE IF NOT EXISTS seen_jobs (
	chat_id BIGINT NOT NULL,
	job_id  TEXT NOT NULL,
	seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (chat_id, job_id)
);
`

type Store struct {
	conn   *dbr.Connection
	sess   *dbr.Session
	logger *zap.Logger
	now    func() time.Time
}

func New(dsn string, logger *zap.Logger) (*Store, error) {
	conn, err := dbr.Open("postgres", dsn, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// set up connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("successfully connected to PostgreSQL")

	return NewWithConnection(conn, logger), nil
}

// NewWithConnection wraps an already opened connection.
func NewWithConnection(conn *dbr.Connection, logger *zap.Logger) *Store {
	return &Store{
		conn:   conn,
		sess:   conn.NewSession(nil),
		logger: logger,
		now:    time.Now,
	}
}

// Migrate creates the tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		s.logger.Error("failed to migrate database", zap.Error(err))
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) BeginTx(ctx context.Context) (*dbr.Tx, error) {
	return s.sess.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
}
