package models

import "testing"

func TestFormatDocumentNumber(t *testing.T) {
	cases := []struct {
		docType DocumentType
		year    int
		number  int
		want    string
	}{
		{DocumentTypeJournal, 2026, 1, "JV-2026-00001"},
		{DocumentTypeJournal, 2026, 12345, "JV-2026-12345"},
		{DocumentTypeSalesInvoice, 0, 42, "INV-00042"},
		{DocumentTypePurchaseInvoice, 0, 7, "BILL-00007"},
		{DocumentTypePaymentReceipt, 0, 1, "RCPT-00001"},
		{DocumentTypePaymentVoucher, 0, 99999, "PV-99999"},
	}

	for _, tc := range cases {
		got := FormatDocumentNumber(tc.docType, tc.year, tc.number)
		if got != tc.want {
			t.Errorf("FormatDocumentNumber(%s, %d, %d) = %q, want %q", tc.docType, tc.year, tc.number, got, tc.want)
		}
	}
}

func TestSequenceYear(t *testing.T) {
	// Only ledger vouchers restart per calendar year; document numbers for
	// invoices and payments run in one unbroken sequence.
	if got := sequenceYear(DocumentTypeJournal, 2026); got != 2026 {
		t.Errorf("journal sequence year = %d, want 2026", got)
	}
	for _, docType := range []DocumentType{DocumentTypeSalesInvoice, DocumentTypePurchaseInvoice, DocumentTypePaymentReceipt, DocumentTypePaymentVoucher} {
		if got := sequenceYear(docType, 2026); got != 0 {
			t.Errorf("%s sequence year = %d, want 0", docType, got)
		}
	}
}

func TestParseDocumentType(t *testing.T) {
	if _, err := ParseDocumentType("SALES_INVOICE"); err != nil {
		t.Errorf("valid document type rejected: %v", err)
	}
	if _, err := ParseDocumentType("QUOTE"); err == nil {
		t.Error("invalid document type accepted")
	}
}
