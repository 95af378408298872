/*
render.go - Invoice document rendering

PURPOSE:
  DocumentRenderer is the opaque rendering collaborator: it accepts a
  structured invoice and produces a binary plus content type. The
  shipped TextRenderer lays out the same sections as the customer-
  facing PDF (clinic header, customer block, period, per-date table,
  summary) as deterministic plain text. A PDF implementation can be
  swapped in without touching the core.
*/
package clinic

import (
	"fmt"
	"strings"
)

// DocumentRenderer turns an invoice document into a downloadable binary.
type DocumentRenderer interface {
	// Render returns the document bytes and their content type.
	Render(doc *InvoiceDocument) ([]byte, string, error)
}

// TextRenderer renders invoices as plain text.
type TextRenderer struct {
	ClinicName string
}

func (r *TextRenderer) Render(doc *InvoiceDocument) ([]byte, string, error) {
	var b strings.Builder

	name := r.ClinicName
	if name == "" {
		name = "AuraTheraCare"
	}

	rule := strings.Repeat("=", 56)
	fmt.Fprintf(&b, "%s\n%s\nMonthly Invoice\n%s\n\n", rule, name, rule)

	fmt.Fprintf(&b, "Name:  %s\n", doc.Customer.Name)
	fmt.Fprintf(&b, "Email: %s\n", doc.Customer.Email)
	if doc.Customer.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", doc.Customer.Phone)
	}
	fmt.Fprintf(&b, "\nInvoice Period: %s %d\n\n", MonthName(doc.Month), doc.Year)

	fmt.Fprintf(&b, "%-14s %-22s %12s\n", "Date", "Therapy", "Amount")
	fmt.Fprintln(&b, strings.Repeat("-", 50))
	for _, group := range doc.RecordsByDate {
		for i, rec := range group.Records {
			dateCol := ""
			if i == 0 {
				dateCol = FormatDate(group.Date)
			}
			fmt.Fprintf(&b, "%-14s %-22s %12s\n", dateCol, rec.TherapyType, FormatINR(rec.Price))
		}
	}
	fmt.Fprintln(&b, strings.Repeat("-", 50))

	fmt.Fprintf(&b, "\nTotal Sessions: %d\n", doc.TotalSessions)
	fmt.Fprintf(&b, "Total Amount:   %s\n", FormatINR(doc.TotalAmount))
	fmt.Fprintf(&b, "\nGenerated at: %s\n", doc.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	return []byte(b.String()), "text/plain; charset=utf-8", nil
}
