package results

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoResults is returned when a query matches no stored run.
var ErrNoResults = errors.New("no stored results")

const schema = `
CREATE TABLE IF NOT EXISTS runs(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL UNIQUE,
	trace TEXT NOT NULL,
	scheme TEXT NOT NULL,
	ghistory_bits INTEGER NOT NULL,
	lhistory_bits INTEGER NOT NULL,
	pc_index_bits INTEGER NOT NULL,
	branches INTEGER NOT NULL,
	incorrect INTEGER NOT NULL,
	misprediction_rate REAL NOT NULL,
	wall_time_ns INTEGER NOT NULL,
	created_at TEXT NOT NULL
)`

const selectColumns = `run_id, trace, scheme, ghistory_bits, lhistory_bits, pc_index_bits,
	branches, incorrect, misprediction_rate, wall_time_ns, created_at`

// Store keeps the history of predictor runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the result database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create result schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends a result.
func (s *Store) Save(r Result) error {
	_, err := s.db.Exec(`INSERT INTO runs(`+selectColumns+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		r.RunID, r.Trace, r.Scheme,
		r.GHistoryBits, r.LHistoryBits, r.PCIndexBits,
		int64(r.Branches), int64(r.Incorrect), r.MispredictionRate,
		int64(r.WallTime), r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save result %s: %w", r.RunID, err)
	}
	return nil
}

// List returns all stored results, newest first.
func (s *Store) List() ([]Result, error) {
	rows, err := s.db.Query(`SELECT ` + selectColumns + ` FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rs []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return rs, nil
}

// Best returns the stored run with the lowest misprediction rate for a
// trace. Ties go to the earliest run.
func (s *Store) Best(traceName string) (Result, error) {
	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM runs
		WHERE trace = ? ORDER BY misprediction_rate ASC, id ASC LIMIT 1`, traceName)

	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, fmt.Errorf("%w for trace %q", ErrNoResults, traceName)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner) (Result, error) {
	var (
		r         Result
		branches  int64
		incorrect int64
		wallNs    int64
		created   string
	)

	err := sc.Scan(
		&r.RunID, &r.Trace, &r.Scheme,
		&r.GHistoryBits, &r.LHistoryBits, &r.PCIndexBits,
		&branches, &incorrect, &r.MispredictionRate,
		&wallNs, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, err
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to read result: %w", err)
	}

	r.Branches = uint64(branches)
	r.Incorrect = uint64(incorrect)
	r.WallTime = time.Duration(wallNs)
	r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse result time %q: %w", created, err)
	}

	return r, nil
}
