package export

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	// registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"

	"go.viam.com/dexterity/workspace"
)

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		robot       TEXT,
		row_count   BIGINT,
		created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS samples (
		run_id      TEXT NOT NULL,
		row_index   BIGINT NOT NULL,
		x           DOUBLE,
		y           DOUBLE,
		z           DOUBLE,
		metric      TEXT,
		value       DOUBLE,
		FOREIGN KEY(run_id) REFERENCES runs(run_id)
	);
	CREATE INDEX IF NOT EXISTS samples_run ON samples(run_id, row_index);
`

// DB stores sample stores as runs in a SQLite database. Each run keeps one samples record per
// row and metric column; missing values are NULL.
type DB struct {
	*sql.DB
}

// Run describes one saved store.
type Run struct {
	ID        uuid.UUID
	Robot     string
	RowCount  int
	CreatedAt time.Time
}

// OpenDB opens or creates the database at path. Use ":memory:" for a throwaway database.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, multierr.Combine(errors.Wrap(err, "creating schema"), db.Close())
	}
	return &DB{db}, nil
}

// SaveStore writes every row of store under a new run ID.
func (db *DB) SaveStore(ctx context.Context, robot string, store *workspace.SampleStore) (id uuid.UUID, err error) {
	if store == nil {
		return uuid.Nil, errors.New("nil sample store")
	}
	names := store.ColumnNames()
	columns := make(map[string][]float64, len(names))
	for _, name := range names {
		if columns[name], err = store.Column(name); err != nil {
			return uuid.Nil, err
		}
	}

	id = uuid.New()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() {
		if err != nil {
			err = multierr.Combine(err, tx.Rollback())
		}
	}()

	points := store.Points()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, robot, row_count) VALUES (?, ?, ?)`,
		id.String(), robot, len(points),
	); err != nil {
		return uuid.Nil, errors.Wrap(err, "inserting run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (run_id, row_index, x, y, z, metric, value) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() {
		err = multierr.Combine(err, stmt.Close())
	}()

	for i, pt := range points {
		if len(names) == 0 {
			if _, err = stmt.ExecContext(ctx, id.String(), i, nullable(pt.X), nullable(pt.Y), nullable(pt.Z), nil, nil); err != nil {
				return uuid.Nil, errors.Wrapf(err, "inserting row %d", i)
			}
			continue
		}
		for _, name := range names {
			if _, err = stmt.ExecContext(ctx,
				id.String(), i, nullable(pt.X), nullable(pt.Y), nullable(pt.Z), name, nullable(columns[name][i]),
			); err != nil {
				return uuid.Nil, errors.Wrapf(err, "inserting row %d", i)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// LoadStore rebuilds the store saved under id.
func (db *DB) LoadStore(ctx context.Context, id uuid.UUID) (*workspace.SampleStore, error) {
	var rowCount int
	err := db.QueryRowContext(ctx, `SELECT row_count FROM runs WHERE run_id = ?`, id.String()).Scan(&rowCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Errorf("no run with id %s", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT row_index, x, y, z, metric, value FROM samples WHERE run_id = ? ORDER BY row_index`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]r3.Vector, rowCount)
	values := map[string][]float64{}
	for rows.Next() {
		var (
			row     int
			x, y, z sql.NullFloat64
			metric  sql.NullString
			value   sql.NullFloat64
		)
		if err := rows.Scan(&row, &x, &y, &z, &metric, &value); err != nil {
			return nil, err
		}
		if row < 0 || row >= rowCount {
			return nil, errors.Errorf("run %s has row %d outside of %d rows", id, row, rowCount)
		}
		points[row] = r3.Vector{X: fromNullable(x), Y: fromNullable(y), Z: fromNullable(z)}
		if !metric.Valid {
			continue
		}
		col, ok := values[metric.String]
		if !ok {
			col = make([]float64, rowCount)
			for i := range col {
				col[i] = math.NaN()
			}
			values[metric.String] = col
		}
		col[row] = fromNullable(value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	store := workspace.NewSampleStore()
	if err := store.AppendRows(points, values); err != nil {
		return nil, err
	}
	return store, nil
}

// Runs lists every saved run, oldest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `SELECT run_id, robot, row_count, created_at FROM runs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id  string
			run Run
		)
		if err := rows.Scan(&id, &run.Robot, &run.RowCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "parsing run id %q", id)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
