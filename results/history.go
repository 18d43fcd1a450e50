package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"           // Driver "postgres".
	_ "github.com/mattn/go-sqlite3" // Driver "sqlite3".
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// History is a SQL table of recorded benchmark runs. Each row holds
// identifying columns of the run, and its complete Report as JSON:
//
//	CREATE TABLE fsbench_runs (
//	  id          TEXT    PRIMARY KEY NOT NULL,
//	  label       TEXT    NOT NULL,
//	  target      TEXT    NOT NULL,
//	  seed        BIGINT  NOT NULL,
//	  status      TEXT    NOT NULL,
//	  started_ns  BIGINT  NOT NULL,
//	  finished_ns BIGINT  NOT NULL,
//	  report      TEXT    NOT NULL
//	);
//
// The table is created if it doesn't exist.
type History struct {
	DB    *sql.DB
	table string
}

// OpenHistory opens the History of a DSN, which is either
// "sqlite://path/to/file.db" or a "postgres://" connection URL.
func OpenHistory(ctx context.Context, dsn string) (*History, error) {
	var driver, source string

	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		driver, source = "sqlite3", strings.TrimPrefix(dsn, "sqlite://")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		driver, source = "postgres", dsn
	default:
		return nil, fmt.Errorf("unsupported history DSN %q (expected sqlite:// or postgres://)", dsn)
	}
	if source == "" {
		return nil, fmt.Errorf("history DSN %q has no database", dsn)
	}

	var db, err = sql.Open(driver, source)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s history", driver)
	}
	var h = NewHistory(db)

	if err = h.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.WithFields(log.Fields{"driver": driver}).Debug("opened run history")
	return h, nil
}

// NewHistory returns a History using the *DB.
func NewHistory(db *sql.DB) *History {
	return &History{DB: db, table: "fsbench_runs"}
}

func (h *History) init(ctx context.Context) error {
	var _, err = h.DB.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id          TEXT    PRIMARY KEY NOT NULL,
			label       TEXT    NOT NULL,
			target      TEXT    NOT NULL,
			seed        BIGINT  NOT NULL,
			status      TEXT    NOT NULL,
			started_ns  BIGINT  NOT NULL,
			finished_ns BIGINT  NOT NULL,
			report      TEXT    NOT NULL
		);`, h.table))
	return errors.WithMessage(err, "creating history table")
}

// Record the Report into the History.
func (h *History) Record(ctx context.Context, r Report) error {
	var started, finished, err = reportTimes(r)
	if err != nil {
		return err
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = h.DB.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, label, target, seed, status, started_ns, finished_ns, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`, h.table),
		r.ID, r.Label, r.Target, int64(r.Seed), r.Status, started.UnixNano(), finished.UnixNano(), string(b))

	return errors.WithMessagef(err, "recording run %s", r.ID)
}

// List recorded Reports, newest first. If |limit| is positive, at most
// |limit| Reports are returned.
func (h *History) List(ctx context.Context, limit int) ([]Report, error) {
	var query = fmt.Sprintf("SELECT report FROM %s ORDER BY started_ns DESC, id", h.table)
	var args []interface{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var rows, err = h.DB.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, errors.WithMessage(err, "querying history")
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var b string
		var r Report

		if err = rows.Scan(&b); err != nil {
			return nil, err
		} else if err = json.Unmarshal([]byte(b), &r); err != nil {
			return nil, errors.WithMessage(err, "decoding recorded report")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune all but the |keep| newest runs, returning the number removed.
func (h *History) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("invalid keep (%d; expected >= 0)", keep)
	}
	var res, err = h.DB.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %[1]s WHERE id NOT IN (
			SELECT id FROM %[1]s ORDER BY started_ns DESC, id LIMIT $1
		);`, h.table), keep)

	if err != nil {
		return 0, errors.WithMessage(err, "pruning history")
	}
	return res.RowsAffected()
}

// Close the History's database.
func (h *History) Close() error { return h.DB.Close() }

func reportTimes(r Report) (started, finished time.Time, err error) {
	if started, err = time.Parse(time.RFC3339Nano, r.Started); err != nil {
		return started, finished, errors.WithMessage(err, "parsing report start")
	}
	if finished, err = time.Parse(time.RFC3339Nano, r.Finished); err != nil {
		return started, finished, errors.WithMessage(err, "parsing report finish")
	}
	return started, finished, nil
}
