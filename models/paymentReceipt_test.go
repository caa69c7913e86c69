package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestApplyAndVoidPaymentRoundTrip(t *testing.T) {
	// Apply a partial payment, then the remainder, then void both; the
	// document must walk SENT -> PARTIALLY_PAID -> PAID and back.
	paid := decimal.Zero
	due := d("212.40")

	var status InvoiceStatus
	paid, due, status = applyPayment(paid, due, d("100"))
	if status != InvoiceStatusPartiallyPaid {
		t.Fatalf("after partial payment: %s", status)
	}
	if !paid.Equal(d("100")) || !due.Equal(d("112.40")) {
		t.Fatalf("after partial payment: paid=%s due=%s", paid, due)
	}

	paid, due, status = applyPayment(paid, due, d("112.40"))
	if status != InvoiceStatusPaid {
		t.Fatalf("after full payment: %s", status)
	}

	paid, due, status = voidPayment(paid, due, d("112.40"), InvoiceStatusSent)
	if status != InvoiceStatusPartiallyPaid {
		t.Fatalf("after voiding second payment: %s", status)
	}

	paid, due, status = voidPayment(paid, due, d("100"), InvoiceStatusSent)
	if status != InvoiceStatusSent {
		t.Fatalf("after voiding first payment: %s", status)
	}
	if !due.Equal(d("212.40")) || !paid.IsZero() {
		t.Errorf("round trip left paid=%s due=%s", paid, due)
	}
}

func TestVoidPaymentRestoresBillStatus(t *testing.T) {
	// The payable side goes back to RECEIVED, not SENT.
	paid, due, status := applyPayment(decimal.Zero, d("50"), d("50"))
	if status != InvoiceStatusPaid {
		t.Fatalf("after full payment: %s", status)
	}

	_, _, status = voidPayment(paid, due, d("50"), InvoiceStatusReceived)
	if status != InvoiceStatusReceived {
		t.Errorf("after voiding the only payment: %s, want RECEIVED", status)
	}
}

func TestDepositAccountCode(t *testing.T) {
	if got := depositAccountCode(PaymentMethodCash); got != SystemAccountCash {
		t.Errorf("CASH routes to %s, want %s", got, SystemAccountCash)
	}
	for _, method := range []PaymentMethod{PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodCard} {
		if got := depositAccountCode(method); got != SystemAccountBank {
			t.Errorf("%s routes to %s, want %s", method, got, SystemAccountBank)
		}
	}
}
