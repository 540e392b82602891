package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}
