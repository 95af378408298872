/*
Package sqlite provides a SQLite-backed implementation of the clinic
storage interfaces.

PURPOSE:
  Implements clinic.UserStore, clinic.RecordStore, and the
  clinic.CascadeDeleter capability using SQLite.

KEY TABLES:
  users:      Identity records; email uniqueness enforced by index
  attendance: Append-only session log; price frozen as stored text

CASCADE DELETE:
  DeleteUserCascade removes the user's attendance and the user row in
  one SQL transaction, so a partial state is never observable.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block and crash recovery is cleaner.

USAGE:
  store, err := sqlite.New("./data/clinic.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). Use ":memory:" for tests.

SEE ALSO:
  - clinic/store.go: Interface definitions
  - clinic/store/memory.go: In-memory implementation
  - store/mongo: MongoDB implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/auratheracare/clinic-engine/clinic"
)

// Store implements the clinic storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'customer',
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
		ON users(LOWER(email));
	CREATE INDEX IF NOT EXISTS idx_users_role
		ON users(role);

	-- Append-only session log. No UPDATE path exists; the only removals
	-- are the explicit record delete and the user-delete cascade.
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES users(id),
		date TEXT NOT NULL,
		therapy_type TEXT NOT NULL,
		price TEXT NOT NULL,
		recorded_by TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);

	-- Hot path: per-customer loads and month-range scans
	CREATE INDEX IF NOT EXISTS idx_attendance_customer_date
		ON attendance(customer_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USER STORE (clinic.UserStore interface)
// =============================================================================

func (s *Store) Create(ctx context.Context, u clinic.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Phone, passwordHash, string(u.Role),
		u.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return clinic.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*clinic.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, created_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*clinic.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, created_at
		FROM users WHERE LOWER(email) = LOWER(?)`, email)
	return scanUser(row)
}

func (s *Store) Credentials(ctx context.Context, email string) (*clinic.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		u         clinic.User
		phone     sql.NullString
		role      string
		createdAt string
		hash      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, password_hash, role, created_at
		FROM users WHERE LOWER(email) = LOWER(?)`, email).
		Scan(&u.ID, &u.Name, &u.Email, &phone, &hash, &role, &createdAt)
	if err == sql.ErrNoRows {
		return nil, "", clinic.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	u.Phone = phone.String
	u.Role = clinic.Role(role)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, hash, nil
}

func (s *Store) List(ctx context.Context) ([]clinic.User, error) {
	return s.listWhere(ctx, "")
}

func (s *Store) ListCustomers(ctx context.Context) ([]clinic.User, error) {
	return s.listWhere(ctx, "WHERE role = 'customer'")
}

func (s *Store) listWhere(ctx context.Context, where string) ([]clinic.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, role, created_at
		FROM users `+where+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []clinic.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

// DeleteUserCascade removes the user's attendance and the user row in
// a single transaction (clinic.CascadeDeleter).
func (s *Store) DeleteUserCascade(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE customer_id = ?`, userID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clinic.ErrNotFound
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*clinic.User, error) {
	var (
		u         clinic.User
		phone     sql.NullString
		role      string
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &phone, &role, &createdAt)
	if err == sql.ErrNoRows {
		return nil, clinic.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Phone = phone.String
	u.Role = clinic.Role(role)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

// =============================================================================
// RECORD STORE (clinic.RecordStore interface)
// =============================================================================

func (s *Store) Insert(ctx context.Context, rec clinic.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (id, customer_id, date, therapy_type, price, recorded_by, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CustomerID, rec.Date.String(), rec.TherapyType,
		rec.Price.String(), rec.RecordedBy,
		rec.RecordedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) FindByCustomer(ctx context.Context, customerID string) ([]clinic.AttendanceRecord, error) {
	return s.findWhere(ctx, `WHERE customer_id = ?`, customerID)
}

func (s *Store) FindByCustomerAndRange(ctx context.Context, customerID string, from, to clinic.Date) ([]clinic.AttendanceRecord, error) {
	return s.findWhere(ctx, `WHERE customer_id = ? AND date >= ? AND date <= ?`,
		customerID, from.String(), to.String())
}

func (s *Store) findWhere(ctx context.Context, where string, args ...any) ([]clinic.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// rowid preserves insertion order within equal dates
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, date, therapy_type, price, recorded_by, recorded_at
		FROM attendance `+where+` ORDER BY rowid ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []clinic.AttendanceRecord
	for rows.Next() {
		var (
			rec        clinic.AttendanceRecord
			date       string
			price      string
			recordedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.CustomerID, &date, &rec.TherapyType,
			&price, &rec.RecordedBy, &recordedAt); err != nil {
			return nil, err
		}
		if rec.Date, err = clinic.ParseDate(date); err != nil {
			return nil, err
		}
		rec.Price = clinic.MoneyFromString(price)
		rec.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) DeleteRecord(ctx context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = ?`, recordID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteByCustomer(ctx context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE customer_id = ?`, customerID)
	return err
}
