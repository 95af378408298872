package clinic_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auratheracare/clinic-engine/clinic"
	clinicstore "github.com/auratheracare/clinic-engine/clinic/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*clinic.Service, *clinicstore.Memory) {
	t.Helper()
	mem := clinicstore.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.Create(ctx, clinic.User{
		ID: "therapist-1", Name: "Dr. Admin", Email: "admin@example.com", Role: clinic.RoleTherapist,
	}, "hash"))
	require.NoError(t, mem.Create(ctx, clinic.User{
		ID: "cust-1", Name: "Asha Rao", Email: "asha@example.com", Role: clinic.RoleCustomer,
	}, "hash"))
	require.NoError(t, mem.Create(ctx, clinic.User{
		ID: "cust-2", Name: "Bina Shah", Email: "bina@example.com", Role: clinic.RoleCustomer,
	}, "hash"))

	svc := clinic.NewService(mem, mem, clinic.DefaultPriceTable())
	// Pin the clock: 2025-06-15 makes June the "current" month.
	svc.Now = func() time.Time {
		return time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc, mem
}

// countingStore wraps the memory store and counts every call, to show
// that denied requests never reach persistence. It deliberately does
// not forward the cascade capability.
type countingStore struct {
	mem   *clinicstore.Memory
	calls int
}

func (c *countingStore) Create(ctx context.Context, u clinic.User, hash string) error {
	c.calls++
	return c.mem.Create(ctx, u, hash)
}
func (c *countingStore) GetByID(ctx context.Context, id string) (*clinic.User, error) {
	c.calls++
	return c.mem.GetByID(ctx, id)
}
func (c *countingStore) GetByEmail(ctx context.Context, email string) (*clinic.User, error) {
	c.calls++
	return c.mem.GetByEmail(ctx, email)
}
func (c *countingStore) Credentials(ctx context.Context, email string) (*clinic.User, string, error) {
	c.calls++
	return c.mem.Credentials(ctx, email)
}
func (c *countingStore) List(ctx context.Context) ([]clinic.User, error) {
	c.calls++
	return c.mem.List(ctx)
}
func (c *countingStore) ListCustomers(ctx context.Context) ([]clinic.User, error) {
	c.calls++
	return c.mem.ListCustomers(ctx)
}
func (c *countingStore) Delete(ctx context.Context, id string) error {
	c.calls++
	return c.mem.Delete(ctx, id)
}
func (c *countingStore) Insert(ctx context.Context, rec clinic.AttendanceRecord) error {
	c.calls++
	return c.mem.Insert(ctx, rec)
}
func (c *countingStore) FindByCustomer(ctx context.Context, customerID string) ([]clinic.AttendanceRecord, error) {
	c.calls++
	return c.mem.FindByCustomer(ctx, customerID)
}
func (c *countingStore) FindByCustomerAndRange(ctx context.Context, customerID string, from, to clinic.Date) ([]clinic.AttendanceRecord, error) {
	c.calls++
	return c.mem.FindByCustomerAndRange(ctx, customerID, from, to)
}
func (c *countingStore) DeleteRecord(ctx context.Context, recordID string) error {
	c.calls++
	return c.mem.DeleteRecord(ctx, recordID)
}
func (c *countingStore) DeleteByCustomer(ctx context.Context, customerID string) error {
	c.calls++
	return c.mem.DeleteByCustomer(ctx, customerID)
}

// =============================================================================
// ACCESS POLICY TESTS
// =============================================================================

func TestService_AccessDeniedBeforeStoreAccess(t *testing.T) {
	// GIVEN: A customer asking for another customer's data
	// WHEN: The policy rejects the request
	// THEN: No store method was ever called

	counting := &countingStore{mem: clinicstore.NewMemory()}
	svc := clinic.NewService(counting, counting, clinic.DefaultPriceTable())

	_, err := svc.GetAttendanceRecords(context.Background(), customer,
		clinic.RecordFilter{CustomerID: "cust-2"})
	assert.ErrorIs(t, err, clinic.ErrAccessDenied)

	_, err = svc.GetCustomerStats(context.Background(), customer, "cust-2")
	assert.ErrorIs(t, err, clinic.ErrAccessDenied)

	_, err = svc.GetRevenueBreakdown(context.Background(), customer, time.March, 2025)
	assert.ErrorIs(t, err, clinic.ErrAccessDenied)

	err = svc.DeleteUser(context.Background(), customer, "cust-2")
	assert.ErrorIs(t, err, clinic.ErrAccessDenied)

	assert.Equal(t, 0, counting.calls, "denied requests must not touch the store")
}

func TestService_CustomerReadsOwnRecords(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	require.NoError(t, mem.Insert(ctx, rec("r1", "cust-1", "2025-06-10", "Biolite", 300)))

	records, err := svc.GetAttendanceRecords(ctx, customer, clinic.RecordFilter{CustomerID: "cust-1"})

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// =============================================================================
// ATTENDANCE WRITE TESTS
// =============================================================================

func TestService_AddAttendanceRecord_PriceResolvedServerSide(t *testing.T) {
	// The price comes from the table, frozen into the record.
	svc, _ := newTestService(t)

	got, err := svc.AddAttendanceRecord(context.Background(), therapist, "cust-1", day("2025-06-10"), "Terahertz")

	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Terahertz", got.TherapyType)
	assert.True(t, got.Price.Equal(clinic.Rupees(400)), "expected 400, got %s", got.Price)
	assert.Equal(t, "therapist-1", got.RecordedBy)
}

func TestService_AddAttendanceRecord_Rejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	date := day("2025-06-10")

	_, err := svc.AddAttendanceRecord(ctx, customer, "cust-1", date, "Biolite")
	assert.ErrorIs(t, err, clinic.ErrAccessDenied, "customers cannot log sessions")

	_, err = svc.AddAttendanceRecord(ctx, therapist, "cust-1", date, "Cryotherapy")
	assert.True(t, clinic.IsValidation(err), "unknown therapy type: %v", err)

	_, err = svc.AddAttendanceRecord(ctx, therapist, "ghost", date, "Biolite")
	assert.ErrorIs(t, err, clinic.ErrNotFound)

	_, err = svc.AddAttendanceRecord(ctx, therapist, "therapist-1", date, "Biolite")
	assert.True(t, clinic.IsValidation(err), "target must be a customer: %v", err)
}

func TestService_AddMultiple_PartialSuccessReported(t *testing.T) {
	// GIVEN: Two valid therapy types and one unknown
	// WHEN: Saving all three at once
	// THEN: Two records commit, the failure is named, nothing rolls back

	svc, mem := newTestService(t)
	ctx := context.Background()

	result, err := svc.AddMultipleAttendanceRecords(ctx, therapist, "cust-1", day("2025-06-10"),
		[]string{"Biolite", "Cryotherapy", "Terahertz"})

	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Cryotherapy", result.Failures[0].TherapyType)

	stored, err := mem.FindByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, stored, 2, "successful records stay committed")
}

func TestService_DeleteAttendanceRecord(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	require.NoError(t, mem.Insert(ctx, rec("r1", "cust-1", "2025-06-10", "Biolite", 300)))

	assert.ErrorIs(t, svc.DeleteAttendanceRecord(ctx, customer, "r1"), clinic.ErrAccessDenied)

	require.NoError(t, svc.DeleteAttendanceRecord(ctx, therapist, "r1"))
	stored, _ := mem.FindByCustomer(ctx, "cust-1")
	assert.Empty(t, stored)

	err := svc.DeleteAttendanceRecord(ctx, therapist, "r1")
	assert.ErrorIs(t, err, clinic.ErrNotFound)
}

// =============================================================================
// STATS TESTS
// =============================================================================

func TestService_GetCustomerStats_CurrentMonthFromClock(t *testing.T) {
	// The pinned clock says June 2025; May records count only toward
	// the lifetime last visit.
	svc, mem := newTestService(t)
	ctx := context.Background()

	require.NoError(t, mem.Insert(ctx, rec("r1", "cust-1", "2025-06-05", "Biolite", 300)))
	require.NoError(t, mem.Insert(ctx, rec("r2", "cust-1", "2025-06-12", "Terahertz", 400)))
	require.NoError(t, mem.Insert(ctx, rec("r3", "cust-1", "2025-05-30", "Biolite", 300)))

	stat, err := svc.GetCustomerStats(ctx, therapist, "cust-1")

	require.NoError(t, err)
	assert.Equal(t, 2, stat.TotalSessions)
	assert.True(t, stat.TotalCost.Equal(clinic.Rupees(700)))
	require.NotNil(t, stat.LastVisit)
	assert.Equal(t, day("2025-06-12"), *stat.LastVisit)
}

// =============================================================================
// USER DELETION TESTS
// =============================================================================

func TestService_DeleteUser_CascadesToRecords(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	require.NoError(t, mem.Insert(ctx, rec("r1", "cust-1", "2025-06-10", "Biolite", 300)))

	require.NoError(t, svc.DeleteUser(ctx, therapist, "cust-1"))

	_, err := mem.GetByID(ctx, "cust-1")
	assert.ErrorIs(t, err, clinic.ErrNotFound)
	records, _ := mem.FindByCustomer(ctx, "cust-1")
	assert.Empty(t, records)
}

func TestService_DeleteUser_FallbackWithoutCascadeCapability(t *testing.T) {
	// A backend without the cascade capability still ends in the same
	// state: records deleted first, then the user.
	mem := clinicstore.NewMemory()
	counting := &countingStore{mem: mem}
	svc := clinic.NewService(counting, counting, clinic.DefaultPriceTable())
	ctx := context.Background()

	require.NoError(t, mem.Create(ctx, clinic.User{
		ID: "cust-1", Name: "Asha Rao", Email: "asha@example.com", Role: clinic.RoleCustomer,
	}, "hash"))
	require.NoError(t, mem.Insert(ctx, rec("r1", "cust-1", "2025-06-10", "Biolite", 300)))

	require.NoError(t, svc.DeleteUser(ctx, therapist, "cust-1"))

	_, err := mem.GetByID(ctx, "cust-1")
	assert.ErrorIs(t, err, clinic.ErrNotFound)
	records, _ := mem.FindByCustomer(ctx, "cust-1")
	assert.Empty(t, records)
}

func TestService_DeleteUser_SelfAndUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.DeleteUser(ctx, therapist, "therapist-1")
	assert.ErrorIs(t, err, clinic.ErrAccessDenied, "therapist cannot delete own account")

	err = svc.DeleteUser(ctx, therapist, "ghost")
	assert.ErrorIs(t, err, clinic.ErrNotFound)
}
