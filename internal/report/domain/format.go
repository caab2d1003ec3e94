package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// MonthKey validates the leading YYYY-MM of raw and returns it.
func MonthKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 7 {
		return "", ErrInvalidBillingMonth
	}
	key := raw[:7]
	if _, err := time.Parse("2006-01", key); err != nil {
		return "", ErrInvalidBillingMonth
	}
	return key, nil
}

// FormatBillingMonth turns "2024-01..." into "January, 2024".
func FormatBillingMonth(raw string) (string, error) {
	key, err := MonthKey(raw)
	if err != nil {
		return "", err
	}
	month, _ := time.Parse("2006-01", key)
	return month.Format("January, 2006"), nil
}

// FormatValue rounds the shortest decimal form of v half away from zero,
// so 2.675 renders as €2.68 rather than the binary-float €2.67.
func FormatValue(v float64) string {
	return "€" + decimal.NewFromFloat(v).StringFixed(2)
}

func FormatConsumption(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + " kW"
}

// Filename is the stored name of a customer's report for monthKey.
func Filename(customerID, monthKey string) string {
	name := slug.Make(customerID)
	if name == "" {
		name = "customer"
	}
	return fmt.Sprintf("bill_report-%s_%s.pdf", name, monthKey)
}
