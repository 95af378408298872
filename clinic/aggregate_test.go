package clinic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auratheracare/clinic-engine/clinic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(s string) clinic.Date {
	d, err := clinic.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func rec(id, customerID, date, therapy string, price int64) clinic.AttendanceRecord {
	return clinic.AttendanceRecord{
		ID:          id,
		CustomerID:  customerID,
		Date:        day(date),
		TherapyType: therapy,
		Price:       clinic.Rupees(price),
		RecordedBy:  "therapist-1",
		RecordedAt:  time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

// januaryRecords is the canonical mixed-month fixture: three January
// sessions (two on the 15th), one February session, one from last year.
func januaryRecords() []clinic.AttendanceRecord {
	return []clinic.AttendanceRecord{
		rec("r1", "cust-1", "2025-01-15", "Biolite", 300),
		rec("r2", "cust-1", "2025-01-15", "Terahertz", 400),
		rec("r3", "cust-1", "2025-01-20", "Biolite", 300),
		rec("r4", "cust-1", "2025-02-03", "Biolite", 300),
		rec("r5", "cust-1", "2024-12-28", "Terahertz", 400),
	}
}

// =============================================================================
// MONTH FILTER TESTS
// =============================================================================

func TestFilterByMonth_PartitionsByCalendarMonth(t *testing.T) {
	// GIVEN: Records spread across three months
	// WHEN: Filtering for January 2025
	// THEN: Only the three January records remain, in original order

	got := clinic.FilterByMonth(januaryRecords(), time.January, 2025)

	require.Len(t, got, 3)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "r2", got[1].ID)
	assert.Equal(t, "r3", got[2].ID)
}

func TestFilterByMonth_Idempotent(t *testing.T) {
	// Filtering an already-filtered slice changes nothing.
	once := clinic.FilterByMonth(januaryRecords(), time.January, 2025)
	twice := clinic.FilterByMonth(once, time.January, 2025)
	assert.Equal(t, once, twice)
}

func TestFilterByMonth_SameMonthDifferentYear_Excluded(t *testing.T) {
	records := []clinic.AttendanceRecord{
		rec("r1", "cust-1", "2025-01-10", "Biolite", 300),
		rec("r2", "cust-1", "2024-01-10", "Biolite", 300),
	}

	got := clinic.FilterByMonth(records, time.January, 2025)

	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestFilterByMonth_Empty(t *testing.T) {
	assert.Empty(t, clinic.FilterByMonth(nil, time.March, 2025))
	assert.Empty(t, clinic.FilterByMonth(januaryRecords(), time.July, 2025))
}

// =============================================================================
// RANGE AND DATE FILTER TESTS
// =============================================================================

func TestFilterByRange_InclusiveBothEnds(t *testing.T) {
	records := []clinic.AttendanceRecord{
		rec("before", "cust-1", "2025-01-14", "Biolite", 300),
		rec("start", "cust-1", "2025-01-15", "Biolite", 300),
		rec("mid", "cust-1", "2025-01-18", "Biolite", 300),
		rec("end", "cust-1", "2025-01-20", "Biolite", 300),
		rec("after", "cust-1", "2025-01-21", "Biolite", 300),
	}

	got := clinic.FilterByRange(records, day("2025-01-15"), day("2025-01-20"))

	require.Len(t, got, 3)
	assert.Equal(t, "start", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "end", got[2].ID)
}

func TestFilterByDate_ExactCalendarDay(t *testing.T) {
	got := clinic.FilterByDate(januaryRecords(), day("2025-01-15"))

	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "r2", got[1].ID)
}

// =============================================================================
// SORT AND GROUPING TESTS
// =============================================================================

func TestSortByDateDesc_StableWithinEqualDates(t *testing.T) {
	// GIVEN: Two sessions on the same day, logged in a known order
	// WHEN: Sorting date-descending
	// THEN: Newest date first, insertion order preserved within a date

	got := clinic.SortByDateDesc(januaryRecords())

	require.Len(t, got, 5)
	assert.Equal(t, "r4", got[0].ID) // 2025-02-03
	assert.Equal(t, "r3", got[1].ID) // 2025-01-20
	assert.Equal(t, "r1", got[2].ID) // 2025-01-15, logged first
	assert.Equal(t, "r2", got[3].ID) // 2025-01-15, logged second
	assert.Equal(t, "r5", got[4].ID) // 2024-12-28
}

func TestSortByDateDesc_DoesNotMutateInput(t *testing.T) {
	records := januaryRecords()
	clinic.SortByDateDesc(records)
	assert.Equal(t, "r1", records[0].ID, "input slice should be untouched")
}

func TestGroupByDate_NewestGroupFirst(t *testing.T) {
	groups := clinic.GroupByDate(clinic.FilterByMonth(januaryRecords(), time.January, 2025))

	require.Len(t, groups, 2)

	assert.Equal(t, day("2025-01-20"), groups[0].Date)
	require.Len(t, groups[0].Records, 1)

	assert.Equal(t, day("2025-01-15"), groups[1].Date)
	require.Len(t, groups[1].Records, 2)
	assert.Equal(t, "r1", groups[1].Records[0].ID)
	assert.Equal(t, "r2", groups[1].Records[1].ID)
}

func TestGroupByDate_Empty(t *testing.T) {
	assert.Empty(t, clinic.GroupByDate(nil))
}

// =============================================================================
// STATS TESTS
// =============================================================================

func TestComputeStats_MonthTotalsWithLifetimeLastVisit(t *testing.T) {
	// GIVEN: Three January sessions (300+400+300) plus later activity
	// WHEN: Computing January 2025 stats
	// THEN: Totals cover January only; last visit is lifetime-wide

	stat := clinic.ComputeStats(januaryRecords(), time.January, 2025)

	assert.Equal(t, 3, stat.TotalSessions)
	assert.True(t, stat.TotalCost.Equal(clinic.Rupees(1000)),
		"expected 1000, got %s", stat.TotalCost)
	require.NotNil(t, stat.LastVisit)
	assert.Equal(t, day("2025-02-03"), *stat.LastVisit, "last visit ignores the reference month")
}

func TestComputeStats_NoRecords(t *testing.T) {
	stat := clinic.ComputeStats(nil, time.January, 2025)

	assert.Equal(t, 0, stat.TotalSessions)
	assert.True(t, stat.TotalCost.IsZero())
	assert.Nil(t, stat.LastVisit)
}

func TestComputeStats_ActivityOutsideMonthOnly(t *testing.T) {
	// Sessions exist, just not in the requested month. Totals are zero
	// but the last visit still reports.
	records := []clinic.AttendanceRecord{
		rec("r1", "cust-1", "2025-03-10", "Biolite", 300),
	}

	stat := clinic.ComputeStats(records, time.January, 2025)

	assert.Equal(t, 0, stat.TotalSessions)
	assert.True(t, stat.TotalCost.IsZero())
	require.NotNil(t, stat.LastVisit)
	assert.Equal(t, day("2025-03-10"), *stat.LastVisit)
}
