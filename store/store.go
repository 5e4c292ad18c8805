package store

import (
	"database/sql"
	"errors"

	"fanhub/models"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNoMarker = errors.New("no sign-in marker")

// Store is the client's durable state. The only thing the core writes
// here is one last-sign-in marker per address: set by the identity
// collaborator, cleared on explicit disconnect.
type Store struct {
	conn *sql.DB
}

func New(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) init() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS markers (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return err
}

// SetLastSignIn records the sign-in marker for an address.
func (s *Store) SetLastSignIn(address models.Address, marker string) error {
	_, err := s.conn.Exec(
		`INSERT INTO markers (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		models.SignInKey(address), marker)
	return err
}

// LastSignIn returns the sign-in marker for an address, or ErrNoMarker.
func (s *Store) LastSignIn(address models.Address) (string, error) {
	var value string
	err := s.conn.QueryRow(
		`SELECT value FROM markers WHERE key = ?`,
		models.SignInKey(address)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoMarker
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// ClearLastSignIn removes the sign-in marker for an address.
func (s *Store) ClearLastSignIn(address models.Address) error {
	_, err := s.conn.Exec(
		`DELETE FROM markers WHERE key = ?`,
		models.SignInKey(address))
	return err
}
