package utils

import (
	"github.com/shopspring/decimal"
)

var decimalOneHundred = decimal.NewFromInt(100)

// LineTotals holds the computed amounts for one invoice line.
// Document totals are exact sums of these per-line components; rounding
// happens only at display time, never here.
type LineTotals struct {
	SubTotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// CalculateLineTotals computes one invoice line:
// subTotal = qty * unitPrice
// discount = subTotal * discountPercent / 100
// taxable  = subTotal - discount
// tax      = taxable * taxPercent / 100
// total    = taxable + tax
func CalculateLineTotals(quantity decimal.Decimal, unitPrice decimal.Decimal, discountPercent decimal.Decimal, taxPercent decimal.Decimal) LineTotals {

	subTotal := quantity.Mul(unitPrice)

	var discountAmount decimal.Decimal
	if discountPercent.GreaterThan(decimal.Zero) {
		discountAmount = subTotal.Mul(discountPercent).Div(decimalOneHundred)
	} else {
		discountAmount = decimal.Zero
	}

	taxableAmount := subTotal.Sub(discountAmount)

	var taxAmount decimal.Decimal
	if taxPercent.GreaterThan(decimal.Zero) {
		taxAmount = taxableAmount.Mul(taxPercent).Div(decimalOneHundred)
	} else {
		taxAmount = decimal.Zero
	}

	return LineTotals{
		SubTotal:       subTotal,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxableAmount,
		TaxAmount:      taxAmount,
		TotalAmount:    taxableAmount.Add(taxAmount),
	}
}
