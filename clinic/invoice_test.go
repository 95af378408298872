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

func newInvoiceFixture(t *testing.T) (*clinic.InvoiceBuilder, *clinicstore.Memory) {
	t.Helper()
	mem := clinicstore.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.Create(ctx, clinic.User{
		ID:    "cust-1",
		Name:  "Asha Rao",
		Email: "asha@example.com",
		Role:  clinic.RoleCustomer,
	}, "hash"))

	for _, r := range januaryRecords() {
		require.NoError(t, mem.Insert(ctx, r))
	}

	return clinic.NewInvoiceBuilder(mem, mem), mem
}

// =============================================================================
// INVOICE BUILDING TESTS
// =============================================================================

func TestBuildInvoice_JanuaryTotalsAndGrouping(t *testing.T) {
	// GIVEN: Three January sessions across two dates (300+400+300)
	// WHEN: Building the January 2025 invoice
	// THEN: Two date groups newest-first, 3 sessions, 1000 total

	builder, _ := newInvoiceFixture(t)

	doc, err := builder.BuildInvoice(context.Background(), "cust-1", time.January, 2025)
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Asha Rao", doc.Customer.Name)
	assert.Equal(t, time.January, doc.Month)
	assert.Equal(t, 2025, doc.Year)
	assert.Equal(t, 3, doc.TotalSessions)
	assert.True(t, doc.TotalAmount.Equal(clinic.Rupees(1000)),
		"expected 1000, got %s", doc.TotalAmount)

	require.Len(t, doc.RecordsByDate, 2)
	assert.Equal(t, day("2025-01-20"), doc.RecordsByDate[0].Date)
	assert.Equal(t, day("2025-01-15"), doc.RecordsByDate[1].Date)
	assert.Len(t, doc.RecordsByDate[1].Records, 2)
}

func TestBuildInvoice_Deterministic(t *testing.T) {
	// Same log, same month: everything except ID and GeneratedAt matches.
	builder, _ := newInvoiceFixture(t)
	ctx := context.Background()

	a, err := builder.BuildInvoice(ctx, "cust-1", time.January, 2025)
	require.NoError(t, err)
	b, err := builder.BuildInvoice(ctx, "cust-1", time.January, 2025)
	require.NoError(t, err)

	assert.Equal(t, a.TotalSessions, b.TotalSessions)
	assert.True(t, a.TotalAmount.Equal(b.TotalAmount))
	assert.Equal(t, a.RecordsByDate, b.RecordsByDate)
}

func TestBuildInvoice_EmptyMonth_NothingToExport(t *testing.T) {
	// GIVEN: A customer with no sessions in July
	// WHEN: Building the July invoice
	// THEN: The distinguished nothing-to-export outcome, not an empty doc

	builder, _ := newInvoiceFixture(t)

	doc, err := builder.BuildInvoice(context.Background(), "cust-1", time.July, 2025)

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, clinic.ErrNothingToExport)
}

func TestBuildInvoice_UnknownCustomer(t *testing.T) {
	builder, _ := newInvoiceFixture(t)

	_, err := builder.BuildInvoice(context.Background(), "ghost", time.January, 2025)

	assert.ErrorIs(t, err, clinic.ErrNotFound)
}

// =============================================================================
// EXPORT WINDOW TESTS
// =============================================================================

func TestIsExportAvailable_OpensOnTheFourth(t *testing.T) {
	// The previous month's export opens on day 4 of the current month.
	assert.False(t, clinic.IsExportAvailable(day("2025-02-01")))
	assert.False(t, clinic.IsExportAvailable(day("2025-02-03")))
	assert.True(t, clinic.IsExportAvailable(day("2025-02-04")))
	assert.True(t, clinic.IsExportAvailable(day("2025-02-28")))
}

func TestPreviousMonth_YearBoundary(t *testing.T) {
	m, y := clinic.PreviousMonth(day("2025-01-10"))
	assert.Equal(t, time.December, m)
	assert.Equal(t, 2024, y)

	m, y = clinic.PreviousMonth(day("2025-06-15"))
	assert.Equal(t, time.May, m)
	assert.Equal(t, 2025, y)
}
