package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"codeberg.org/miketth/keebect/pkg/journal/sqlite/migrations"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Journal is an append-only record of fatal daemon errors, kept for postmortem
// debugging of an unattended service. Rows are tagged with the id of the
// process run that wrote them.
type Journal struct {
	db    *sql.DB
	runID string
	now   func() time.Time
}

type Entry struct {
	ID         int64
	RunID      string
	OccurredAt time.Time
	Component  string
	Message    string
}

func NewJournal(filename string, log *zap.SugaredLogger) (*Journal, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	version, err := migrations.Migrate(db, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Debugw("opened journal", "path", filename, "schema", version)

	return &Journal{
		db:    db,
		runID: uuid.NewString(),
		now:   time.Now,
	}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) RunID() string {
	return j.runID
}

func (j *Journal) Record(component string, err error) error {
	_, dbErr := j.db.Exec(
		`insert into failures (run_id, occurred_at, component, message) values (?, ?, ?, ?)`,
		j.runID, j.now().UTC().Format(time.RFC3339Nano), component, err.Error(),
	)
	if dbErr != nil {
		return fmt.Errorf("sqlite insert: %w", dbErr)
	}

	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`select id, run_id, occurred_at, component, message from failures order by id desc limit ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			occurredAt string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &occurredAt, &e.Component, &e.Message); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}

		e.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", occurredAt, err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite rows: %w", err)
	}

	return entries, nil
}
