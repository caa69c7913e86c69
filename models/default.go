package models

import (
	"context"

	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"gorm.io/gorm"
)

// System account codes the posting bridges resolve against.
const (
	SystemAccountCash           = "1000"
	SystemAccountBank           = "1100"
	SystemAccountReceivable     = "1200"
	SystemAccountInventory      = "1300"
	SystemAccountPayable        = "2100"
	SystemAccountTaxPayable     = "2200"
	SystemAccountOwnersEquity   = "3000"
	SystemAccountOpeningBalance = "3100"
	SystemAccountSalesRevenue   = "4000"
	SystemAccountOtherIncome    = "4100"
	SystemAccountPurchases      = "5000"
	SystemAccountOperatingExp   = "5100"
)

type defaultAccount struct {
	Code         string
	Name         string
	AccountGroup AccountGroup
	AccountType  string
}

func GetDefaultChartOfAccounts() []defaultAccount {
	return []defaultAccount{
		{SystemAccountCash, "Cash", AccountGroupAsset, "Cash"},
		{SystemAccountBank, "Bank", AccountGroupAsset, "Bank"},
		{SystemAccountReceivable, "Accounts Receivable", AccountGroupAsset, "Accounts Receivable"},
		{SystemAccountInventory, "Inventory", AccountGroupAsset, "Stock"},
		{SystemAccountPayable, "Accounts Payable", AccountGroupLiability, "Accounts Payable"},
		{SystemAccountTaxPayable, "Tax Payable", AccountGroupLiability, "Output Tax"},
		{SystemAccountOwnersEquity, "Owner's Equity", AccountGroupEquity, "Equity"},
		{SystemAccountOpeningBalance, "Opening Balance Equity", AccountGroupEquity, "Equity"},
		{SystemAccountSalesRevenue, "Sales Revenue", AccountGroupIncome, "Income"},
		{SystemAccountOtherIncome, "Other Income", AccountGroupIncome, "Other Income"},
		{SystemAccountPurchases, "Purchases", AccountGroupExpense, "Cost Of Goods Sold"},
		{SystemAccountOperatingExp, "Operating Expenses", AccountGroupExpense, "Expense"},
	}
}

func CreateDefaultAccounts(tx *gorm.DB, ctx context.Context, companyId string) error {

	chartOfAccounts := GetDefaultChartOfAccounts()

	for _, data := range chartOfAccounts {
		account := Account{
			CompanyId:       companyId,
			Code:            data.Code,
			Name:            data.Name,
			AccountGroup:    data.AccountGroup,
			AccountType:     data.AccountType,
			IsSystemAccount: utils.NewTrue(),
			IsEnabled:       utils.NewTrue(),
		}

		if err := tx.WithContext(ctx).Create(&account).Error; err != nil {
			return err
		}
	}

	return nil
}

func CreateDefaultOwner(tx *gorm.DB, ctx context.Context, companyId string, email string, name string, password string) (*User, error) {

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	owner := User{
		CompanyId: companyId,
		Name:      name,
		Email:     email,
		Password:  string(hashedPassword),
		Role:      UserRoleAdmin,
		IsActive:  utils.NewTrue(),
	}
	if err := tx.WithContext(ctx).Create(&owner).Error; err != nil {
		return nil, err
	}

	return &owner, nil
}
