/*
service.go - External contract of the aggregation core

PURPOSE:
  The operations the route layer calls. Every operation takes the
  Principal explicitly, evaluates the access policy and input
  validation before any store I/O, and delegates computation to the
  pure aggregation functions.

CONSISTENCY:
  Aggregations are per-request read-then-compute over whatever snapshot
  the store returns. Attendance is append-only and invoices cover only
  fully elapsed months, so an aggregate racing an insert is acceptable.
  Delete user is the one place that must look atomic: backends with the
  CascadeDeleter capability delete user and records in one transaction;
  otherwise records are deleted first, then the user.

SEE ALSO:
  - policy.go: the predicates evaluated here
  - aggregate.go, invoice.go, revenue.go: the computations delegated to
*/
package clinic

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service wires the stores, price table, and aggregation core together.
type Service struct {
	Users   UserStore
	Records RecordStore
	Prices  *PriceTable

	invoices *InvoiceBuilder
	revenue  *RevenueReporter

	// Now is overridable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewService(users UserStore, records RecordStore, prices *PriceTable) *Service {
	return &Service{
		Users:    users,
		Records:  records,
		Prices:   prices,
		invoices: NewInvoiceBuilder(users, records),
		revenue:  NewRevenueReporter(users, records, prices),
		Now:      time.Now,
	}
}

// =============================================================================
// QUERIES
// =============================================================================

// RecordFilter narrows an attendance query. CustomerID is required;
// the remaining fields are optional refinements.
type RecordFilter struct {
	CustomerID string
	Date       *Date
	Month      *time.Month
	Year       *int
	StartDate  *Date
	EndDate    *Date
}

// GetAttendanceRecords returns a customer's records, filtered and
// sorted by date descending (insertion order within equal dates).
func (s *Service) GetAttendanceRecords(ctx context.Context, p Principal, filter RecordFilter) ([]AttendanceRecord, error) {
	if filter.CustomerID == "" {
		return nil, &ValidationError{Field: "customerId", Reason: "required"}
	}
	if !CanAccessCustomerRecords(p, filter.CustomerID) {
		return nil, ErrAccessDenied
	}

	records, err := s.Records.FindByCustomer(ctx, filter.CustomerID)
	if err != nil {
		return nil, storeErr("load records", err)
	}

	if filter.Date != nil {
		records = FilterByDate(records, *filter.Date)
	}
	if filter.Month != nil && filter.Year != nil {
		records = FilterByMonth(records, *filter.Month, *filter.Year)
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		records = FilterByRange(records, *filter.StartDate, *filter.EndDate)
	}

	return SortByDateDesc(records), nil
}

// GetCustomerStats returns the customer's stats for the current month.
// LastVisit is lifetime-wide regardless of the reference month.
func (s *Service) GetCustomerStats(ctx context.Context, p Principal, customerID string) (MonthlyStat, error) {
	if !CanAccessCustomerRecords(p, customerID) {
		return MonthlyStat{}, ErrAccessDenied
	}
	if _, err := s.Users.GetByID(ctx, customerID); err != nil {
		return MonthlyStat{}, storeErr("get customer", err)
	}

	records, err := s.Records.FindByCustomer(ctx, customerID)
	if err != nil {
		return MonthlyStat{}, storeErr("load records", err)
	}

	today := DateOf(s.Now())
	return ComputeStats(records, today.Month(), today.Year()), nil
}

// GetMonthlyInvoiceData builds the invoice document for one customer
// and month. Zero matching records surfaces as ErrNothingToExport.
func (s *Service) GetMonthlyInvoiceData(ctx context.Context, p Principal, customerID string, month time.Month, year int) (*InvoiceDocument, error) {
	if !CanAccessCustomerRecords(p, customerID) {
		return nil, ErrAccessDenied
	}
	return s.invoices.BuildInvoice(ctx, customerID, month, year)
}

// GetRevenueBreakdown builds the monthly all-customers revenue report.
// Therapist only.
func (s *Service) GetRevenueBreakdown(ctx context.Context, p Principal, month time.Month, year int) (*RevenueReport, error) {
	if !CanManageUsers(p) {
		return nil, ErrAccessDenied
	}
	return s.revenue.BuildReport(ctx, month, year)
}

// IsExportAvailable reports whether last-month invoice export is open.
func (s *Service) IsExportAvailable() bool {
	return IsExportAvailable(DateOf(s.Now()))
}

// =============================================================================
// ATTENDANCE WRITES
// =============================================================================

// AddAttendanceRecord logs one session. Therapist only. The price is
// resolved server-side from the price table and frozen into the
// record; callers are never trusted to supply it.
func (s *Service) AddAttendanceRecord(ctx context.Context, p Principal, customerID string, date Date, therapyType string) (*AttendanceRecord, error) {
	if !CanManageUsers(p) {
		return nil, ErrAccessDenied
	}
	if customerID == "" {
		return nil, &ValidationError{Field: "customerId", Reason: "required"}
	}
	if date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "required"}
	}
	therapy, ok := s.Prices.Lookup(therapyType)
	if !ok {
		return nil, &ValidationError{Field: "therapyType", Reason: "unknown therapy type"}
	}

	customer, err := s.Users.GetByID(ctx, customerID)
	if err != nil {
		return nil, storeErr("get customer", err)
	}
	if customer.Role != RoleCustomer {
		return nil, &ValidationError{Field: "customerId", Reason: "not a customer"}
	}

	rec := AttendanceRecord{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		Date:        date,
		TherapyType: therapy.Code,
		Price:       therapy.Price,
		RecordedBy:  p.ID,
		RecordedAt:  s.Now(),
	}
	if err := s.Records.Insert(ctx, rec); err != nil {
		return nil, storeErr("insert record", err)
	}
	return &rec, nil
}

// SaveFailure reports one therapy type that failed in a multi-save.
type SaveFailure struct {
	TherapyType string
	Err         error
}

// MultiSaveResult is the aggregate outcome of a multi-therapy save.
// Partial success is reported, not rolled back: Records holds what
// committed, Failures names exactly what did not.
type MultiSaveResult struct {
	Records  []AttendanceRecord
	Failures []SaveFailure
}

// AddMultipleAttendanceRecords applies AddAttendanceRecord once per
// requested therapy type, e.g. a customer receiving both therapies the
// same day produces two records.
func (s *Service) AddMultipleAttendanceRecords(ctx context.Context, p Principal, customerID string, date Date, therapyTypes []string) (MultiSaveResult, error) {
	if !CanManageUsers(p) {
		return MultiSaveResult{}, ErrAccessDenied
	}
	if len(therapyTypes) == 0 {
		return MultiSaveResult{}, &ValidationError{Field: "therapyTypes", Reason: "at least one required"}
	}

	var result MultiSaveResult
	for _, tt := range therapyTypes {
		rec, err := s.AddAttendanceRecord(ctx, p, customerID, date, tt)
		if err != nil {
			result.Failures = append(result.Failures, SaveFailure{TherapyType: tt, Err: err})
			continue
		}
		result.Records = append(result.Records, *rec)
	}
	return result, nil
}

// DeleteAttendanceRecord removes one record. Therapist only. Stats and
// reports are recomputed from the log on demand, so no derived state
// needs invalidation.
func (s *Service) DeleteAttendanceRecord(ctx context.Context, p Principal, recordID string) error {
	if !CanManageUsers(p) {
		return ErrAccessDenied
	}
	if recordID == "" {
		return &ValidationError{Field: "recordId", Reason: "required"}
	}
	return storeErr("delete record", s.Records.DeleteRecord(ctx, recordID))
}

// =============================================================================
// USER OPERATIONS
// =============================================================================

// GetUser returns one user. Therapists see anyone; customers only
// themselves.
func (s *Service) GetUser(ctx context.Context, p Principal, userID string) (*User, error) {
	if !CanAccessCustomerRecords(p, userID) {
		return nil, ErrAccessDenied
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return u, nil
}

// ListUsers returns all users sorted by name. Therapist only.
func (s *Service) ListUsers(ctx context.Context, p Principal) ([]User, error) {
	if !CanManageUsers(p) {
		return nil, ErrAccessDenied
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

// ListCustomers returns all customer-role users sorted by name.
// Therapist only.
func (s *Service) ListCustomers(ctx context.Context, p Principal) ([]User, error) {
	if !CanManageUsers(p) {
		return nil, ErrAccessDenied
	}
	users, err := s.Users.ListCustomers(ctx)
	if err != nil {
		return nil, storeErr("list customers", err)
	}
	return users, nil
}

// DeleteUser removes a user and cascades to all their attendance
// records. Must appear atomic to readers: a backend with the
// CascadeDeleter capability does both in one transaction; otherwise
// records go first so no record ever references a missing user.
func (s *Service) DeleteUser(ctx context.Context, p Principal, userID string) error {
	if !CanDeleteUser(p, userID) {
		return ErrAccessDenied
	}
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return storeErr("get user", err)
	}

	if cd, ok := s.Users.(CascadeDeleter); ok {
		return storeErr("cascade delete", cd.DeleteUserCascade(ctx, userID))
	}

	if err := s.Records.DeleteByCustomer(ctx, userID); err != nil {
		return storeErr("delete records", err)
	}
	return storeErr("delete user", s.Users.Delete(ctx, userID))
}
