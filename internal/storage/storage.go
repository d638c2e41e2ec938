package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

// SchemaVersion is written to PRAGMA user_version. Opening a database that
// carries any other version drops the table and every row in it.
const SchemaVersion = 1

const tableName = "todo_item"

var (
	ErrNotFound     = errors.New("item not found")
	ErrInvalidState = errors.New("invalid item state")
)

type Store struct {
	db     *sql.DB
	logger *log.Logger
}

func Open(dbPath string, logger *log.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if logger == nil {
		logger = log.Default()
	}
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const createTable = `
CREATE TABLE todo_item (
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	date TEXT NOT NULL,
	state TEXT NOT NULL
);`

func (s *Store) ensureSchema() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version;`).Scan(&version); err != nil {
		return err
	}
	exists, err := s.tableExists()
	if err != nil {
		return err
	}
	switch {
	case version == SchemaVersion && exists:
		return nil
	case version == 0 && !exists:
		return s.createSchema()
	}

	// Destructive upgrade: the previous table and its rows are discarded.
	s.logger.Warn("schema version mismatch, dropping all items", "old", version, "new", SchemaVersion)
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DROP TABLE IF EXISTS todo_item;`); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return s.createSchema()
}

func (s *Store) createSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(createTable); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, SchemaVersion)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) tableExists() (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?;`, tableName).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a row and returns its id, or -1 with the error.
func (s *Store) Create(title, body, date string, state State) (int64, error) {
	if !state.Valid() {
		return -1, fmt.Errorf("%w %q", ErrInvalidState, state)
	}
	res, err := s.db.Exec(`INSERT INTO todo_item (title, body, date, state) VALUES (?, ?, ?, ?);`,
		title, body, date, string(state))
	if err != nil {
		return -1, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return -1, err
	}
	s.logger.Debug("item created", "id", id, "state", state)
	return id, nil
}

func (s *Store) FetchAll() ([]Item, error) {
	return s.query(`SELECT _id, title, body, date, state FROM todo_item ORDER BY _id;`)
}

// FetchAllByState returns the items in state, in insertion order.
func (s *Store) FetchAllByState(state State) ([]Item, error) {
	return s.query(`SELECT _id, title, body, date, state FROM todo_item WHERE state = ? ORDER BY _id;`, string(state))
}

func (s *Store) FetchByID(id int64) (Item, error) {
	items, err := s.query(`SELECT _id, title, body, date, state FROM todo_item WHERE _id = ?;`, id)
	if err != nil {
		return Item{}, err
	}
	if len(items) == 0 {
		return Item{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return items[0], nil
}

// Update overwrites every field of row id. It reports whether the row existed.
func (s *Store) Update(id int64, title, body, date string, state State) (bool, error) {
	if !state.Valid() {
		return false, fmt.Errorf("%w %q", ErrInvalidState, state)
	}
	res, err := s.db.Exec(`UPDATE todo_item SET title = ?, body = ?, date = ?, state = ? WHERE _id = ?;`,
		title, body, date, string(state), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	s.logger.Debug("item updated", "id", id, "state", state, "rows", n)
	return n > 0, nil
}

func (s *Store) SetState(id int64, state State) (bool, error) {
	if !state.Valid() {
		return false, fmt.Errorf("%w %q", ErrInvalidState, state)
	}
	res, err := s.db.Exec(`UPDATE todo_item SET state = ? WHERE _id = ?;`, string(state), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	s.logger.Debug("item state changed", "id", id, "state", state, "rows", n)
	return n > 0, nil
}

// Delete removes every id in one transaction. Ids with no row are skipped
// silently; the result only says whether all statements ran.
func (s *Store) Delete(ids ...int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	stmt, err := tx.Prepare(`DELETE FROM todo_item WHERE _id = ?;`)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	defer stmt.Close()
	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			tx.Rollback()
			return false, fmt.Errorf("delete item %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	s.logger.Debug("items deleted", "ids", ids)
	return true, nil
}

func (s *Store) query(q string, args ...any) ([]Item, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		var state string
		if err := rows.Scan(&it.ID, &it.Title, &it.Body, &it.Date, &state); err != nil {
			return nil, err
		}
		it.State = State(state)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
