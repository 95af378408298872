package clinic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auratheracare/clinic-engine/clinic"
)

func TestFormatINR_IndianGrouping(t *testing.T) {
	// Last three digits form one group, then pairs above that.
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "₹0"},
		{300, "₹300"},
		{1200, "₹1,200"},
		{45000, "₹45,000"},
		{100000, "₹1,00,000"},
		{1234567, "₹12,34,567"},
		{12345678, "₹1,23,45,678"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, clinic.FormatINR(clinic.Rupees(tc.amount)),
			"amount %d", tc.amount)
	}
}

func TestFormatINR_Negative(t *testing.T) {
	assert.Equal(t, "-₹1,200", clinic.FormatINR(clinic.Rupees(-1200)))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05 Jan 2025", clinic.FormatDate(day("2025-01-05")))
	assert.Equal(t, "28 Dec 2024", clinic.FormatDate(day("2024-12-28")))
}
