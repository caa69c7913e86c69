package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSalesInvoiceDisplayStatus(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -10)
	future := now.AddDate(0, 0, 10)

	cases := []struct {
		name    string
		status  InvoiceStatus
		dueDate time.Time
		due     decimal.Decimal
		want    InvoiceStatus
	}{
		{"draft never overdue", InvoiceStatusDraft, past, d("100"), InvoiceStatusDraft},
		{"sent before due date", InvoiceStatusSent, future, d("100"), InvoiceStatusSent},
		{"sent past due date", InvoiceStatusSent, past, d("100"), InvoiceStatusOverdue},
		{"partially paid past due date", InvoiceStatusPartiallyPaid, past, d("40"), InvoiceStatusOverdue},
		{"paid past due date stays paid", InvoiceStatusPaid, past, decimal.Zero, InvoiceStatusPaid},
		{"sent past due date but settled", InvoiceStatusSent, past, decimal.Zero, InvoiceStatusSent},
	}

	for _, tc := range cases {
		invoice := SalesInvoice{Status: tc.status, DueDate: tc.dueDate, DueAmount: tc.due}
		if got := invoice.displayStatus(now); got != tc.want {
			t.Errorf("%s: displayStatus = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestPurchaseInvoiceDisplayStatus(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)

	open := PurchaseInvoice{Status: InvoiceStatusReceived, DueDate: past, DueAmount: d("10")}
	if got := open.displayStatus(now); got != InvoiceStatusOverdue {
		t.Errorf("received bill past due = %s, want OVERDUE", got)
	}

	draft := PurchaseInvoice{Status: InvoiceStatusDraft, DueDate: past, DueAmount: d("10")}
	if got := draft.displayStatus(now); got != InvoiceStatusDraft {
		t.Errorf("draft bill = %s, want DRAFT", got)
	}
}

func TestCalculateDueDate(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	if got := calculateDueDate(date, 30); !got.Equal(date.AddDate(0, 0, 30)) {
		t.Errorf("30 credit days: got %s", got)
	}
	if got := calculateDueDate(date, 0); !got.Equal(date) {
		t.Errorf("no credit days: got %s", got)
	}
}
