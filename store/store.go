// Package store persists compilation runs and their statevectors in sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableRun       = "run"
	tableAmplitude = "amplitude"
)

// A Run records the outcome of compiling and simulating one configuration.
type Run struct {
	Name     string
	Sites    int
	BondDim  int
	Fidelity float64
}

type Store struct {
	Path string

	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	s := &Store{Path: dbPath, db: db}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) prepare() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, sites INTEGER, bond INTEGER, fidelity REAL) STRICT`, tableRun)
	if _, err := s.db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run TEXT, i INTEGER, re REAL, im REAL, PRIMARY KEY (run, i)) STRICT`, tableAmplitude)
	if _, err := s.db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// SaveRun records a run and the statevector it produced.
// Zero amplitudes are not stored.
func (s *Store) SaveRun(r Run, state []complex64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (name, sites, bond, fidelity) VALUES (?, ?, ?, ?)`, tableRun)
	if _, err := s.db.ExecContext(ctx, sqlStr, r.Name, r.Sites, r.BondDim, r.Fidelity); err != nil {
		return errors.Wrap(err, "")
	}

	sqlStr = fmt.Sprintf(`DELETE FROM %s WHERE run=?`, tableAmplitude)
	if _, err := s.db.ExecContext(ctx, sqlStr, r.Name); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`INSERT INTO %s (run, i, re, im) VALUES (?, ?, ?, ?)`, tableAmplitude)
	for i, v := range state {
		if v == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, sqlStr, r.Name, i, real(v), imag(v)); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s %d", r.Name, i))
		}
	}
	return nil
}

// Run returns a saved run, reporting whether it exists.
func (s *Store) Run(name string) (Run, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT sites, bond, fidelity FROM %s WHERE name=?`, tableRun)
	r := Run{Name: name}
	err := s.db.QueryRowContext(ctx, sqlStr, name).Scan(&r.Sites, &r.BondDim, &r.Fidelity)
	switch {
	case err == sql.ErrNoRows:
		return Run{}, false, nil
	case err != nil:
		return Run{}, false, errors.Wrap(err, "")
	}
	return r, true, nil
}

// State returns the statevector saved for a run. n is the vector length.
func (s *Store) State(name string, n int) ([]complex64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT i, re, im FROM %s WHERE run=? ORDER BY i`, tableAmplitude)
	rows, err := s.db.QueryContext(ctx, sqlStr, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	state := make([]complex64, n)
	for rows.Next() {
		var i int
		var re, im float32
		if err := rows.Scan(&i, &re, &im); err != nil {
			return nil, errors.Wrap(err, "")
		}
		if i < 0 || i >= n {
			return nil, errors.Errorf("%d %d", i, n)
		}
		state[i] = complex(re, im)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return state, nil
}

// Runs lists all saved runs ordered by name.
func (s *Store) Runs() ([]Run, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT name, sites, bond, fidelity FROM %s ORDER BY name`, tableRun)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Name, &r.Sites, &r.BondDim, &r.Fidelity); err != nil {
			return nil, errors.Wrap(err, "")
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return runs, nil
}
