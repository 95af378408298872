/*
revenue.go - Monthly revenue reports for the therapist dashboard

PURPOSE:
  Builds the per-month, all-customers revenue summary: per-therapy-type
  counts and amounts plus a per-customer breakdown. Amounts are summed
  from each record's frozen price, never recomputed from the current
  price table, so reports agree with historical invoices.

POLICY:
  Customers with zero records in the month contribute nothing and do
  not appear as breakdown rows. Their (zero) contribution is still part
  of the grand totals by construction.

COST:
  One O(customers x records-per-customer) scan per report. Reports are
  computed fresh per request; no incremental aggregation is kept.
*/
package clinic

import (
	"context"
	"time"
)

// RevenueReporter computes monthly revenue breakdowns.
type RevenueReporter struct {
	Users   UserStore
	Records RecordStore
	Prices  *PriceTable
}

func NewRevenueReporter(users UserStore, records RecordStore, prices *PriceTable) *RevenueReporter {
	return &RevenueReporter{Users: users, Records: records, Prices: prices}
}

// BuildReport scans every customer's records for the month and
// accumulates per-type and per-customer totals.
func (r *RevenueReporter) BuildReport(ctx context.Context, month time.Month, year int) (*RevenueReport, error) {
	customers, err := r.Users.ListCustomers(ctx)
	if err != nil {
		return nil, storeErr("list customers", err)
	}

	from, to := StartOfMonth(month, year), EndOfMonth(month, year)

	report := &RevenueReport{
		Month:       month,
		Year:        year,
		ByType:      r.zeroTotals(),
		TotalAmount: Rupees(0),
	}
	grand := indexTotals(report.ByType)

	for _, customer := range customers {
		records, err := r.Records.FindByCustomerAndRange(ctx, customer.ID, from, to)
		if err != nil {
			return nil, storeErr("load records", err)
		}
		if len(records) == 0 {
			continue
		}

		row := CustomerRevenue{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			ByType:       r.zeroTotals(),
			TotalAmount:  Rupees(0),
		}
		perCustomer := indexTotals(row.ByType)

		for _, rec := range records {
			row.TotalSessions++
			row.TotalAmount = row.TotalAmount.Add(rec.Price)
			tallyInto(perCustomer, rec)
			tallyInto(grand, rec)
			report.TotalSessions++
			report.TotalAmount = report.TotalAmount.Add(rec.Price)
		}

		report.Customers = append(report.Customers, row)
	}

	return report, nil
}

// zeroTotals seeds one TypeTotal per configured therapy so every report
// row carries the full type axis, even at zero.
func (r *RevenueReporter) zeroTotals() []TypeTotal {
	therapies := r.Prices.Therapies()
	totals := make([]TypeTotal, 0, len(therapies))
	for _, th := range therapies {
		totals = append(totals, TypeTotal{Code: th.Code, Name: th.Name, Amount: Rupees(0)})
	}
	return totals
}

func indexTotals(totals []TypeTotal) map[string]*TypeTotal {
	idx := make(map[string]*TypeTotal, len(totals))
	for i := range totals {
		idx[totals[i].Code] = &totals[i]
	}
	return idx
}

func tallyInto(idx map[string]*TypeTotal, rec AttendanceRecord) {
	tt, ok := idx[rec.TherapyType]
	if !ok {
		// Record carries a therapy no longer configured; it still counts
		// toward session and amount totals via the caller.
		return
	}
	tt.Count++
	tt.Amount = tt.Amount.Add(rec.Price)
}
