package gemdrop

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Ledger records airdrop and purchase attempts and a few settings.
type Ledger struct {
	db *sql.DB
}

func OpenLedger(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS activity (
			id TEXT PRIMARY KEY,
			kind TEXT,
			address TEXT,
			lamports INTEGER,
			signature TEXT,
			time INTEGER,
			status TEXT
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func NewActivityID() string {
	return uuid.NewString()
}

func (l *Ledger) Save(a Activity) error {
	_, err := l.db.Exec(`
		INSERT OR REPLACE INTO activity
		(id, kind, address, lamports, signature, time, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Kind, a.Address, a.Lamports, a.Signature, a.Time, a.Status)
	return err
}

func (l *Ledger) Load(id string) (Activity, error) {
	var a Activity
	err := l.db.QueryRow(`
		SELECT id, kind, address, lamports, signature, time, status
		FROM activity WHERE id = ?
	`, id).Scan(&a.ID, &a.Kind, &a.Address, &a.Lamports, &a.Signature, &a.Time, &a.Status)
	return a, err
}

func (l *Ledger) List(limit int) ([]Activity, error) {
	rows, err := l.db.Query(`
		SELECT id, kind, address, lamports, signature, time, status
		FROM activity ORDER BY time DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Kind, &a.Address, &a.Lamports, &a.Signature, &a.Time, &a.Status); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Setting returns "" with no error when key is unset.
func (l *Ledger) Setting(key string) (string, error) {
	var v string
	err := l.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (l *Ledger) SetSetting(key, value string) error {
	_, err := l.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (l *Ledger) DeleteSetting(key string) error {
	_, err := l.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}
