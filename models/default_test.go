package models

import "testing"

func TestDefaultChartOfAccounts(t *testing.T) {
	chart := GetDefaultChartOfAccounts()

	if len(chart) != 12 {
		t.Fatalf("default chart has %d accounts, want 12", len(chart))
	}

	byCode := make(map[string]defaultAccount, len(chart))
	for _, account := range chart {
		if !account.AccountGroup.IsValid() {
			t.Errorf("account %s has invalid group %q", account.Code, account.AccountGroup)
		}
		if _, dup := byCode[account.Code]; dup {
			t.Errorf("duplicate account code %s", account.Code)
		}
		byCode[account.Code] = account
	}

	// The posting bridges resolve against these; provisioning sub-ledgers
	// hangs off the receivable and payable parents.
	required := map[string]AccountGroup{
		SystemAccountCash:           AccountGroupAsset,
		SystemAccountBank:           AccountGroupAsset,
		SystemAccountReceivable:     AccountGroupAsset,
		SystemAccountPayable:        AccountGroupLiability,
		SystemAccountTaxPayable:     AccountGroupLiability,
		SystemAccountSalesRevenue:   AccountGroupIncome,
		SystemAccountPurchases:      AccountGroupExpense,
		SystemAccountOpeningBalance: AccountGroupEquity,
	}
	for code, group := range required {
		account, ok := byCode[code]
		if !ok {
			t.Errorf("default chart is missing account %s", code)
			continue
		}
		if account.AccountGroup != group {
			t.Errorf("account %s group = %s, want %s", code, account.AccountGroup, group)
		}
	}
}
