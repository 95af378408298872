/*
format.go - Display formatting for amounts, dates, and months

PURPOSE:
  The formatting contract preserved for frontend compatibility:
  amounts render with the rupee symbol and en-IN digit grouping
  ("₹1,200", "₹1,00,000"), dates render as "DD Mon YYYY"
  ("05 Jan 2025").
*/
package clinic

import (
	"strings"
	"time"
)

// FormatINR renders an amount as "₹" plus en-IN grouped digits: the
// last three digits form one group, every group above that has two.
func FormatINR(m Money) string {
	s := m.Decimal().StringFixed(0)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(s))
	return b.String()
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}

// FormatDate renders a date as "DD Mon YYYY", e.g. "05 Jan 2025".
func FormatDate(d Date) string {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Format("02 Jan 2006")
}

// MonthName returns the English month name.
func MonthName(m time.Month) string { return m.String() }
