/*
invoice.go - Invoice document construction and export eligibility

PURPOSE:
  Builds a deterministic InvoiceDocument for one customer and one
  calendar month, and decides when monthly export opens.

EXPORT ELIGIBILITY:
  Invoices cover only fully elapsed months, and export for "last month"
  opens on the 4th calendar day of the current month. The grace period
  lets all of the previous month's entries be recorded first. The
  predicate is decoupled from BuildInvoice so the UI can show
  availability before the user requests generation.

DETERMINISM:
  Given the same record set, BuildInvoice produces identical structured
  output except for GeneratedAt.
*/
package clinic

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceBuilder assembles invoice documents from stored records.
type InvoiceBuilder struct {
	Users   UserStore
	Records RecordStore

	// Now is overridable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewInvoiceBuilder(users UserStore, records RecordStore) *InvoiceBuilder {
	return &InvoiceBuilder{Users: users, Records: records, Now: time.Now}
}

// BuildInvoice returns the invoice for one customer and month.
// Returns ErrNotFound for an unknown customer and ErrNothingToExport
// when the month has zero matching records.
func (b *InvoiceBuilder) BuildInvoice(ctx context.Context, customerID string, month time.Month, year int) (*InvoiceDocument, error) {
	customer, err := b.Users.GetByID(ctx, customerID)
	if err != nil {
		return nil, storeErr("get customer", err)
	}

	all, err := b.Records.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, storeErr("load records", err)
	}

	monthly := FilterByMonth(all, month, year)
	if len(monthly) == 0 {
		return nil, ErrNothingToExport
	}

	total := Rupees(0)
	for _, rec := range monthly {
		total = total.Add(rec.Price)
	}

	return &InvoiceDocument{
		ID:            uuid.NewString(),
		Customer:      *customer,
		Month:         month,
		Year:          year,
		RecordsByDate: GroupByDate(monthly),
		TotalSessions: len(monthly),
		TotalAmount:   total,
		GeneratedAt:   b.Now(),
	}, nil
}

// IsExportAvailable reports whether last month's invoice may be
// exported today. Opens on the 4th calendar day of any month.
func IsExportAvailable(today Date) bool {
	return today.Day() >= 4
}

// PreviousMonth returns the invoiceable month relative to today.
func PreviousMonth(today Date) (time.Month, int) {
	prev := NewDate(today.Year(), today.Month(), 1).AddMonths(-1)
	return prev.Month(), prev.Year()
}
