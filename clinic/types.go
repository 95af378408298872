/*
Package clinic provides the attendance aggregation and invoicing core.

PURPOSE:
  This package contains the domain types and algorithms for turning an
  append-only stream of attendance records into per-customer monthly
  statistics, deterministic invoice documents, and fleet-wide revenue
  reports. It owns no mutable state: every aggregation is a pure
  transform over records borrowed from a store.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: A calendar date (year, month, day) with no time-of-day or
    timezone component. All bucketing compares calendar dates only.
  - Money: A currency amount backed by decimal.Decimal
  - Principal: An authenticated actor (customer or therapist)
  - AttendanceRecord: One logged therapy session, immutable once created
  - PriceTable: Data-driven therapy-type -> price mapping

DESIGN PRINCIPLES:
  1. Immutability: Attendance records are never updated after insert
  2. Frozen prices: A record carries the price resolved at insert time;
     totals always sum stored prices, never the current price table
  3. Precision: Uses decimal.Decimal to avoid floating-point errors
  4. Explicit identity: A Principal value is threaded through every
     operation, never read from ambient state

SEE ALSO:
  - aggregate.go: Grouping, filtering, and stats over records
  - invoice.go: Invoice document construction and export eligibility
  - revenue.go: Monthly revenue reports
  - policy.go: Access predicates
  - store.go: Persistence interfaces
*/
package clinic

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Calendar date, no time component
// =============================================================================

// Date is a calendar date. The zero value is the zero date.
// Internally normalized to midnight UTC so comparisons are always
// calendar comparisons, never instant comparisons with an offset.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// DateOf truncates an instant to its calendar date in the instant's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now()) }

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// In reports whether the date falls in the given calendar month.
func (d Date) In(month time.Month, year int) bool {
	return d.t.Month() == month && d.t.Year() == year
}

// Between reports whether the date is in [from, to], inclusive on both ends.
func (d Date) Between(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

func (d Date) String() string { return d.t.Format("2006-01-02") }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// StartOfMonth and EndOfMonth bound a calendar month.
func StartOfMonth(month time.Month, year int) Date { return NewDate(year, month, 1) }
func EndOfMonth(month time.Month, year int) Date {
	return NewDate(year, month, 1).AddMonths(1).AddDays(-1)
}

// =============================================================================
// MONEY - Decimal currency amount (single currency)
// =============================================================================

type Money struct {
	amount decimal.Decimal
}

func Rupees(v int64) Money { return Money{amount: decimal.NewFromInt(v)} }

// MoneyFromString parses a decimal amount. Invalid input yields zero.
func MoneyFromString(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return Money{amount: d}
}

func (m Money) Add(o Money) Money     { return Money{amount: m.amount.Add(o.amount)} }
func (m Money) Equal(o Money) bool    { return m.amount.Equal(o.amount) }
func (m Money) IsZero() bool          { return m.amount.IsZero() }
func (m Money) Decimal() decimal.Decimal { return m.amount }
func (m Money) String() string        { return m.amount.String() }

// MarshalJSON emits a bare JSON number so amounts round-trip with the
// original numeric wire format.
func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.amount.String()), nil }

func (m *Money) UnmarshalJSON(b []byte) error {
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	m.amount = d
	return nil
}

// =============================================================================
// PRINCIPAL AND USERS
// =============================================================================

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleTherapist Role = "therapist"
)

// Principal is the authenticated actor behind a request. It is produced
// by the authentication collaborator and passed explicitly into every
// operation that needs access control.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

func (p Principal) IsTherapist() bool { return p.Role == RoleTherapist }

type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Role      Role
	CreatedAt time.Time
}

// =============================================================================
// THERAPY TYPES AND PRICING
// =============================================================================

// Therapy is one configured therapy type. Adding a therapy is a data
// change at startup, not a logic change.
type Therapy struct {
	Code  string
	Name  string
	Price Money
}

// PriceTable maps therapy codes to display names and prices.
// Iteration order is the configuration order.
type PriceTable struct {
	order  []string
	byCode map[string]Therapy
}

func NewPriceTable(therapies ...Therapy) *PriceTable {
	pt := &PriceTable{byCode: make(map[string]Therapy, len(therapies))}
	for _, th := range therapies {
		if _, dup := pt.byCode[th.Code]; dup {
			continue
		}
		pt.order = append(pt.order, th.Code)
		pt.byCode[th.Code] = th
	}
	return pt
}

// DefaultPriceTable is the clinic's current two-entry configuration.
func DefaultPriceTable() *PriceTable {
	return NewPriceTable(
		Therapy{Code: "Biolite", Name: "Biolite", Price: Rupees(300)},
		Therapy{Code: "Terahertz", Name: "Terahertz", Price: Rupees(400)},
	)
}

func (pt *PriceTable) Lookup(code string) (Therapy, bool) {
	th, ok := pt.byCode[code]
	return th, ok
}

// Therapies returns all configured therapies in configuration order.
func (pt *PriceTable) Therapies() []Therapy {
	out := make([]Therapy, 0, len(pt.order))
	for _, code := range pt.order {
		out = append(out, pt.byCode[code])
	}
	return out
}

// =============================================================================
// ATTENDANCE RECORD - One logged session, immutable
// =============================================================================

// AttendanceRecord is one therapy session for one customer on one
// calendar date. Price is frozen at insert time so historical invoices
// stay stable even if the price table later changes. Multiple records
// may share the same (customer, date) pair.
type AttendanceRecord struct {
	ID          string
	CustomerID  string
	Date        Date
	TherapyType string
	Price       Money
	RecordedBy  string
	RecordedAt  time.Time
}

// =============================================================================
// DERIVED VALUES - Computed on demand, never persisted
// =============================================================================

// MonthlyStat summarizes one customer's month. LastVisit is a lifetime
// property: the maximum date across all of the customer's records, not
// just the reference month. Nil when the customer has no records.
type MonthlyStat struct {
	TotalSessions int
	TotalCost     Money
	LastVisit     *Date
}

// DateGroup is all records sharing one calendar date, in insertion order.
type DateGroup struct {
	Date    Date
	Records []AttendanceRecord
}

// InvoiceDocument is a deterministic function of one customer's records
// filtered to one calendar month, except for GeneratedAt.
type InvoiceDocument struct {
	ID            string
	Customer      User
	Month         time.Month
	Year          int
	RecordsByDate []DateGroup
	TotalSessions int
	TotalAmount   Money
	GeneratedAt   time.Time
}

// TypeTotal is a per-therapy-type count and amount.
type TypeTotal struct {
	Code   string
	Name   string
	Count  int
	Amount Money
}

// CustomerRevenue is one customer's row in the monthly breakdown.
// Customers with zero records in the month do not get a row.
type CustomerRevenue struct {
	CustomerID    string
	CustomerName  string
	ByType        []TypeTotal
	TotalSessions int
	TotalAmount   Money
}

// RevenueReport is the therapist dashboard's monthly summary across all
// customers. Grand totals equal the sum of the per-customer rows.
type RevenueReport struct {
	Month         time.Month
	Year          int
	ByType        []TypeTotal
	Customers     []CustomerRevenue
	TotalSessions int
	TotalAmount   Money
}
