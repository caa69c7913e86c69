package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// These tests are intentionally DB-free: they validate the sign rule and
// the posting validation, which both the write path and the statement
// reader depend on.

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSignedDelta_NormalBalanceRule(t *testing.T) {
	amount := d("100")

	cases := []struct {
		group     AccountGroup
		entryType EntryType
		want      string
	}{
		{AccountGroupAsset, EntryTypeDebit, "100"},
		{AccountGroupAsset, EntryTypeCredit, "-100"},
		{AccountGroupExpense, EntryTypeDebit, "100"},
		{AccountGroupExpense, EntryTypeCredit, "-100"},
		{AccountGroupLiability, EntryTypeDebit, "-100"},
		{AccountGroupLiability, EntryTypeCredit, "100"},
		{AccountGroupEquity, EntryTypeDebit, "-100"},
		{AccountGroupEquity, EntryTypeCredit, "100"},
		{AccountGroupIncome, EntryTypeDebit, "-100"},
		{AccountGroupIncome, EntryTypeCredit, "100"},
	}

	for _, tc := range cases {
		got := SignedDelta(tc.group, tc.entryType, amount)
		if !got.Equal(d(tc.want)) {
			t.Errorf("SignedDelta(%s, %s) = %s, want %s", tc.group, tc.entryType, got, tc.want)
		}
	}
}

func TestSignedDelta_RoundTripCancels(t *testing.T) {
	// A posting followed by its reversal must always net to zero.
	for _, group := range []AccountGroup{AccountGroupAsset, AccountGroupLiability, AccountGroupEquity, AccountGroupIncome, AccountGroupExpense} {
		for _, entryType := range []EntryType{EntryTypeDebit, EntryTypeCredit} {
			forward := SignedDelta(group, entryType, d("42.5"))
			if !forward.Add(forward.Neg()).IsZero() {
				t.Errorf("reversal does not cancel for %s/%s", group, entryType)
			}
		}
	}
}

func TestValidateLedgerPosting_Balanced(t *testing.T) {
	entries := []NewLedgerEntry{
		{AccountId: 1, EntryType: EntryTypeDebit, Amount: d("500")},
		{AccountId: 2, EntryType: EntryTypeCredit, Amount: d("450")},
		{AccountId: 3, EntryType: EntryTypeCredit, Amount: d("50")},
	}
	if err := ValidateLedgerPosting(entries); err != nil {
		t.Fatalf("balanced posting rejected: %v", err)
	}
}

func TestValidateLedgerPosting_WithinTolerance(t *testing.T) {
	entries := []NewLedgerEntry{
		{AccountId: 1, EntryType: EntryTypeDebit, Amount: d("100.00")},
		{AccountId: 2, EntryType: EntryTypeCredit, Amount: d("99.99")},
	}
	if err := ValidateLedgerPosting(entries); err != nil {
		t.Fatalf("posting within tolerance rejected: %v", err)
	}
}

func TestValidateLedgerPosting_Unbalanced(t *testing.T) {
	entries := []NewLedgerEntry{
		{AccountId: 1, EntryType: EntryTypeDebit, Amount: d("100.00")},
		{AccountId: 2, EntryType: EntryTypeCredit, Amount: d("99.98")},
	}
	err := ValidateLedgerPosting(entries)
	if err == nil {
		t.Fatal("unbalanced posting accepted")
	}

	var unbalanced *UnbalancedEntryError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("expected UnbalancedEntryError, got %T", err)
	}
	if !unbalanced.TotalDebit.Equal(d("100.00")) {
		t.Errorf("TotalDebit = %s, want 100.00", unbalanced.TotalDebit)
	}
	if !unbalanced.TotalCredit.Equal(d("99.98")) {
		t.Errorf("TotalCredit = %s, want 99.98", unbalanced.TotalCredit)
	}
}

func TestValidateLedgerPosting_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		entries []NewLedgerEntry
	}{
		{"empty", nil},
		{"single entry", []NewLedgerEntry{
			{AccountId: 1, EntryType: EntryTypeDebit, Amount: d("100")},
		}},
		{"zero amount", []NewLedgerEntry{
			{AccountId: 1, EntryType: EntryTypeDebit, Amount: decimal.Zero},
			{AccountId: 2, EntryType: EntryTypeCredit, Amount: decimal.Zero},
		}},
		{"negative amount", []NewLedgerEntry{
			{AccountId: 1, EntryType: EntryTypeDebit, Amount: d("-10")},
			{AccountId: 2, EntryType: EntryTypeCredit, Amount: d("-10")},
		}},
		{"bad entry type", []NewLedgerEntry{
			{AccountId: 1, EntryType: "WITHDRAW", Amount: d("10")},
			{AccountId: 2, EntryType: EntryTypeCredit, Amount: d("10")},
		}},
		{"missing account", []NewLedgerEntry{
			{EntryType: EntryTypeDebit, Amount: d("10")},
			{AccountId: 2, EntryType: EntryTypeCredit, Amount: d("10")},
		}},
	}

	for _, tc := range cases {
		if err := ValidateLedgerPosting(tc.entries); err == nil {
			t.Errorf("%s: expected rejection", tc.name)
		}
	}
}

func TestStatementRunningBalanceFold(t *testing.T) {
	// The statement reader folds with SignedDelta from the opening
	// balance. Simulate a small receivable history.
	opening := d("1000")
	entries := []struct {
		entryType EntryType
		amount    string
	}{
		{EntryTypeDebit, "250"},  // invoice
		{EntryTypeCredit, "100"}, // payment
		{EntryTypeCredit, "150"}, // payment
	}

	running := opening
	for _, e := range entries {
		running = running.Add(SignedDelta(AccountGroupAsset, e.entryType, d(e.amount)))
	}
	if !running.Equal(d("1000")) {
		t.Errorf("closing balance = %s, want 1000", running)
	}
}
