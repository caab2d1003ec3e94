package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBillingMonth(t *testing.T) {
	cases := map[string]string{
		"2024-01":                   "January, 2024",
		"2024-01-01":                "January, 2024",
		"2024-12-01T00:00:00Z":      "December, 2024",
		"2023-02-01 00:00:00+00:00": "February, 2023",
	}
	for in, want := range cases {
		got, err := FormatBillingMonth(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "2024", "2024-13", "January 2024", "24-01-01"} {
		_, err := FormatBillingMonth(in)
		assert.ErrorIs(t, err, ErrInvalidBillingMonth, in)
	}
}

func TestFormatAmounts(t *testing.T) {
	assert.Equal(t, "€42.50", FormatValue(42.5))
	assert.Equal(t, "€0.13", FormatValue(0.125))
	assert.Equal(t, "€2.68", FormatValue(2.675))
	assert.Equal(t, "€1.01", FormatValue(1.005))
	assert.Equal(t, "€-2.68", FormatValue(-2.675))
	assert.Equal(t, "€0.00", FormatValue(0))
	assert.Equal(t, "10.00 kW", FormatConsumption(10))
	assert.Equal(t, "1234.57 kW", FormatConsumption(1234.5678))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "bill_report-abc123_2024-01.pdf", Filename("ABC123", "2024-01"))
	assert.Equal(t, "bill_report-acme-ljubljana_2024-02.pdf", Filename("ACME Ljubljana", "2024-02"))
	assert.Equal(t, "bill_report-customer_2024-03.pdf", Filename("!!!", "2024-03"))
}
