package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalculateLineTotals(t *testing.T) {
	// 2 x 100, 10% discount, 18% tax.
	got := CalculateLineTotals(d("2"), d("100"), d("10"), d("18"))

	if !got.SubTotal.Equal(d("200")) {
		t.Errorf("SubTotal = %s, want 200", got.SubTotal)
	}
	if !got.DiscountAmount.Equal(d("20")) {
		t.Errorf("DiscountAmount = %s, want 20", got.DiscountAmount)
	}
	if !got.TaxableAmount.Equal(d("180")) {
		t.Errorf("TaxableAmount = %s, want 180", got.TaxableAmount)
	}
	if !got.TaxAmount.Equal(d("32.4")) {
		t.Errorf("TaxAmount = %s, want 32.4", got.TaxAmount)
	}
	if !got.TotalAmount.Equal(d("212.4")) {
		t.Errorf("TotalAmount = %s, want 212.4", got.TotalAmount)
	}
}

func TestCalculateLineTotals_NoDiscountNoTax(t *testing.T) {
	got := CalculateLineTotals(d("3"), d("50"), decimal.Zero, decimal.Zero)

	if !got.SubTotal.Equal(d("150")) || !got.TotalAmount.Equal(d("150")) {
		t.Errorf("got sub=%s total=%s, want both 150", got.SubTotal, got.TotalAmount)
	}
	if !got.DiscountAmount.IsZero() || !got.TaxAmount.IsZero() {
		t.Errorf("expected zero discount/tax, got %s/%s", got.DiscountAmount, got.TaxAmount)
	}
}

func TestCalculateLineTotals_FractionalQuantity(t *testing.T) {
	// 2.5 x 40.20 = 100.50, no rounding inside the computation.
	got := CalculateLineTotals(d("2.5"), d("40.20"), decimal.Zero, d("5"))

	if !got.SubTotal.Equal(d("100.50")) {
		t.Errorf("SubTotal = %s, want 100.50", got.SubTotal)
	}
	if !got.TaxAmount.Equal(d("5.025")) {
		t.Errorf("TaxAmount = %s, want 5.025", got.TaxAmount)
	}
	if !got.TotalAmount.Equal(d("105.525")) {
		t.Errorf("TotalAmount = %s, want 105.525", got.TotalAmount)
	}
}
