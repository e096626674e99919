package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tool-gauge/internal/fit"
	"tool-gauge/internal/measure"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed measurement history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the history database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMA foreign_keys is per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save inserts an entry and its measurements in one transaction.
func (s *Store) Save(e *Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO entries (id, timestamp, tool_id, operator, notes) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC(), e.ToolID, e.Operator, e.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO measurements (entry_id, view, kind, value, uncertainty) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for view, kinds := range e.Views {
		for kind, m := range kinds {
			var u sql.NullFloat64
			if m.Uncertainty != nil {
				u = sql.NullFloat64{Float64: *m.Uncertainty, Valid: true}
			}
			if _, err := stmt.Exec(e.ID, view.String(), kind.String(), m.Value, u); err != nil {
				return fmt.Errorf("insert measurement: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Get retrieves an entry by ID.
func (s *Store) Get(id string) (*Entry, error) {
	e := &Entry{}
	err := s.db.QueryRow(
		`SELECT id, timestamp, tool_id, operator, notes FROM entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.Timestamp, &e.ToolID, &e.Operator, &e.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.loadMeasurements(e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) List(limit int) ([]*Entry, error) {
	query := `SELECT id, timestamp, tool_id, operator, notes FROM entries ORDER BY timestamp DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ToolID, &e.Operator, &e.Notes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if err := s.loadMeasurements(e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// Clear deletes every entry.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM measurements`); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM entries`)
	return err
}

func (s *Store) loadMeasurements(e *Entry) error {
	rows, err := s.db.Query(
		`SELECT view, kind, value, uncertainty FROM measurements WHERE entry_id = ?`, e.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	e.Views = make(map[measure.View]map[fit.Kind]Measurement)
	for rows.Next() {
		var viewName, kindName string
		var value float64
		var u sql.NullFloat64
		if err := rows.Scan(&viewName, &kindName, &value, &u); err != nil {
			return err
		}

		view, err := measure.ParseView(viewName)
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
		kind, err := fit.ParseKind(kindName)
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}

		m := Measurement{Value: value}
		if u.Valid {
			uv := u.Float64
			m.Uncertainty = &uv
		}
		if e.Views[view] == nil {
			e.Views[view] = make(map[fit.Kind]Measurement)
		}
		e.Views[view][kind] = m
	}
	return rows.Err()
}

// SaveNow is a convenience that snapshots a session and stores it.
func (s *Store) SaveNow(sess *measure.Session, meta Metadata) (*Entry, error) {
	e, err := FromSession(sess, meta, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Save(e); err != nil {
		return nil, err
	}
	return e, nil
}
