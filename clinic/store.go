/*
store.go - Persistence interfaces for attendance records and users

PURPOSE:
  Defines the boundary between the aggregation core and the database.
  The core is written once against these capability interfaces; each
  physical backend (in-memory, SQLite, MongoDB) is an interchangeable
  adapter.

APPEND-ONLY CONTRACT:
  Attendance is an append-only log. Records are never updated. The only
  removals are the explicit single-record delete (a therapist action)
  and the cascade delete that accompanies user deletion.

IMPLEMENTATIONS:
  - clinic/store/memory.go: In-memory, for tests and dev
  - store/sqlite/sqlite.go: SQLite adapter
  - store/mongo/mongo.go:   MongoDB adapter

SEE ALSO:
  - service.go: The only caller of these interfaces in the core
*/
package clinic

import "context"

// =============================================================================
// RECORD STORE - Attendance persistence
// =============================================================================

// RecordStore persists attendance records.
type RecordStore interface {
	// Insert appends a new record to the log.
	Insert(ctx context.Context, rec AttendanceRecord) error

	// FindByCustomer returns all records for a customer, in insertion order.
	FindByCustomer(ctx context.Context, customerID string) ([]AttendanceRecord, error)

	// FindByCustomerAndRange returns a customer's records with dates in
	// [from, to], inclusive on both ends, in insertion order.
	FindByCustomerAndRange(ctx context.Context, customerID string, from, to Date) ([]AttendanceRecord, error)

	// DeleteRecord removes a single record. Returns ErrNotFound if the
	// record does not exist.
	DeleteRecord(ctx context.Context, recordID string) error

	// DeleteByCustomer removes all records for a customer. Deleting zero
	// records is not an error.
	DeleteByCustomer(ctx context.Context, customerID string) error
}

// =============================================================================
// USER STORE - Identity persistence
// =============================================================================

// UserStore persists users and their login credentials. The core never
// reads the password hash; it exists for the authentication collaborator.
type UserStore interface {
	// Create saves a new user. Returns ErrDuplicateEmail if the email
	// is already registered.
	Create(ctx context.Context, u User, passwordHash string) error

	// GetByID returns a user, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail returns a user, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Credentials returns a user and its password hash, or ErrNotFound.
	Credentials(ctx context.Context, email string) (*User, string, error)

	// List returns all users sorted by name ascending.
	List(ctx context.Context) ([]User, error)

	// ListCustomers returns all customer-role users sorted by name ascending.
	ListCustomers(ctx context.Context) ([]User, error)

	// Delete removes a user. Returns ErrNotFound if the user does not exist.
	Delete(ctx context.Context, id string) error
}

// =============================================================================
// EXTENDED CAPABILITIES
// =============================================================================

// CascadeDeleter is an optional capability for backends that can delete
// a user and their attendance records atomically. When a store does not
// implement it, the service falls back to deleting records first and
// the user second, so a crash mid-sequence leaves orphaned records
// rather than a dangling reference.
type CascadeDeleter interface {
	DeleteUserCascade(ctx context.Context, userID string) error
}
