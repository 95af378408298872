/*
Package mongo provides a MongoDB-backed implementation of the clinic
storage interfaces.

PURPOSE:
  Implements clinic.UserStore and clinic.RecordStore on the official
  MongoDB driver. This is the adapter for the document-store variant of
  the deployment: a `users` collection and an `attendance` collection,
  with email uniqueness enforced by a unique index.

DELETE-USER CASCADE:
  Attendance records are deleted first (DeleteMany), then the user
  document. A crash mid-sequence leaves orphaned records, never a
  record referencing a missing user, matching the core's contract.

DATA FORMAT:
  Dates are stored as "YYYY-MM-DD" strings so month/range queries are
  plain lexicographic comparisons with no timezone component, and
  prices as decimal strings so frozen amounts survive round-trips
  exactly.

SEE ALSO:
  - clinic/store.go: Interface definitions
  - store/sqlite: SQLite implementation
*/
package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/auratheracare/clinic-engine/clinic"
)

// Store implements the clinic storage interfaces using MongoDB.
type Store struct {
	client     *mongo.Client
	users      *mongo.Collection
	attendance *mongo.Collection
}

// New connects to MongoDB and prepares the collections and indexes.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetMaxPoolSize(5).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:     client,
		users:      db.Collection("users"),
		attendance: db.Collection("attendance"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.attendance.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "date", Value: 1}},
	})
	return err
}

// =============================================================================
// DOCUMENT SHAPES
// =============================================================================

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Phone        string    `bson:"phone,omitempty"`
	PasswordHash string    `bson:"password"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDoc) user() clinic.User {
	return clinic.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Role:      clinic.Role(d.Role),
		CreatedAt: d.CreatedAt,
	}
}

type attendanceDoc struct {
	ID          string    `bson:"_id"`
	CustomerID  string    `bson:"customer_id"`
	Date        string    `bson:"date"`
	TherapyType string    `bson:"therapy_type"`
	Price       string    `bson:"price"`
	RecordedBy  string    `bson:"recorded_by"`
	RecordedAt  time.Time `bson:"recorded_at"`
}

func (d attendanceDoc) record() (clinic.AttendanceRecord, error) {
	date, err := clinic.ParseDate(d.Date)
	if err != nil {
		return clinic.AttendanceRecord{}, err
	}
	return clinic.AttendanceRecord{
		ID:          d.ID,
		CustomerID:  d.CustomerID,
		Date:        date,
		TherapyType: d.TherapyType,
		Price:       clinic.MoneyFromString(d.Price),
		RecordedBy:  d.RecordedBy,
		RecordedAt:  d.RecordedAt,
	}, nil
}

// =============================================================================
// USER STORE (clinic.UserStore interface)
// =============================================================================

func (s *Store) Create(ctx context.Context, u clinic.User, passwordHash string) error {
	// Emails are stored lowercased so the unique index is effectively
	// case-insensitive, matching the other backends.
	_, err := s.users.InsertOne(ctx, userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        strings.ToLower(u.Email),
		Phone:        u.Phone,
		PasswordHash: passwordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt.UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return clinic.ErrDuplicateEmail
	}
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*clinic.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*clinic.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*clinic.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, clinic.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u := doc.user()
	return &u, nil
}

func (s *Store) Credentials(ctx context.Context, email string) (*clinic.User, string, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, "", clinic.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	u := doc.user()
	return &u, doc.PasswordHash, nil
}

func (s *Store) List(ctx context.Context) ([]clinic.User, error) {
	return s.listUsers(ctx, bson.M{})
}

func (s *Store) ListCustomers(ctx context.Context) ([]clinic.User, error) {
	return s.listUsers(ctx, bson.M{"role": string(clinic.RoleCustomer)})
}

func (s *Store) listUsers(ctx context.Context, filter bson.M) ([]clinic.User, error) {
	cur, err := s.users.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []clinic.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.user())
	}
	return users, cur.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

// =============================================================================
// RECORD STORE (clinic.RecordStore interface)
// =============================================================================

func (s *Store) Insert(ctx context.Context, rec clinic.AttendanceRecord) error {
	_, err := s.attendance.InsertOne(ctx, attendanceDoc{
		ID:          rec.ID,
		CustomerID:  rec.CustomerID,
		Date:        rec.Date.String(),
		TherapyType: rec.TherapyType,
		Price:       rec.Price.String(),
		RecordedBy:  rec.RecordedBy,
		RecordedAt:  rec.RecordedAt.UTC(),
	})
	return err
}

func (s *Store) FindByCustomer(ctx context.Context, customerID string) ([]clinic.AttendanceRecord, error) {
	return s.findRecords(ctx, bson.M{"customer_id": customerID})
}

func (s *Store) FindByCustomerAndRange(ctx context.Context, customerID string, from, to clinic.Date) ([]clinic.AttendanceRecord, error) {
	return s.findRecords(ctx, bson.M{
		"customer_id": customerID,
		"date":        bson.M{"$gte": from.String(), "$lte": to.String()},
	})
}

func (s *Store) findRecords(ctx context.Context, filter bson.M) ([]clinic.AttendanceRecord, error) {
	// Sorted by recorded_at so insertion order is preserved within a day.
	cur, err := s.attendance.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []clinic.AttendanceRecord
	for cur.Next(ctx) {
		var doc attendanceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rec, err := doc.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, cur.Err()
}

func (s *Store) DeleteRecord(ctx context.Context, recordID string) error {
	res, err := s.attendance.DeleteOne(ctx, bson.M{"_id": recordID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteByCustomer(ctx context.Context, customerID string) error {
	_, err := s.attendance.DeleteMany(ctx, bson.M{"customer_id": customerID})
	return err
}
