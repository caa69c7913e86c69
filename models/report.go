package models

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type TrialBalanceRow struct {
	AccountId    int             `json:"account_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	AccountGroup AccountGroup    `json:"account_group"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
}

type TrialBalance struct {
	AsOf        time.Time          `json:"as_of"`
	Rows        []*TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
}

// GetTrialBalance lists every account's running balance split into debit
// and credit columns by normal balance side. A balanced ledger produces
// equal column totals.
func GetTrialBalance(ctx context.Context) (*TrialBalance, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	var accounts []*Account
	err := db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Order("code").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	report := TrialBalance{AsOf: time.Now().UTC()}
	for _, account := range accounts {
		if account.CurrentBalance.IsZero() {
			continue
		}

		row := TrialBalanceRow{
			AccountId:    account.ID,
			Code:         account.Code,
			Name:         account.Name,
			AccountGroup: account.AccountGroup,
		}

		// A positive balance sits on the account's normal side; a negative
		// one flips to the opposite column.
		debitNormal := account.AccountGroup == AccountGroupAsset || account.AccountGroup == AccountGroupExpense
		if debitNormal == account.CurrentBalance.GreaterThan(decimal.Zero) {
			row.Debit = account.CurrentBalance.Abs()
		} else {
			row.Credit = account.CurrentBalance.Abs()
		}

		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
		report.Rows = append(report.Rows, &row)
	}

	return &report, nil
}

// ExportAccountStatementXlsx renders a statement as a spreadsheet for
// download.
func ExportAccountStatementXlsx(ctx context.Context, accountId int, startDate *time.Time, endDate *time.Time) (*bytes.Buffer, string, error) {

	statement, err := GetAccountStatement(ctx, accountId, startDate, endDate)
	if err != nil {
		return nil, "", err
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := "Statement"
	file.SetSheetName("Sheet1", sheet)

	file.SetCellValue(sheet, "A1", statement.Account.Code+" "+statement.Account.Name)
	file.SetCellValue(sheet, "A2", "Opening Balance")
	file.SetCellValue(sheet, "B2", statement.OpeningBalance.InexactFloat64())

	headers := []string{"Date", "Voucher", "Narration", "Debit", "Credit", "Balance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		file.SetCellValue(sheet, cell, h)
	}

	for i, entry := range statement.Entries {
		row := i + 5
		file.SetCellValue(sheet, fmt.Sprintf("A%d", row), entry.EntryDate.Format("2006-01-02"))
		file.SetCellValue(sheet, fmt.Sprintf("B%d", row), entry.VoucherNumber)
		file.SetCellValue(sheet, fmt.Sprintf("C%d", row), entry.Narration)
		if entry.EntryType == EntryTypeDebit {
			file.SetCellValue(sheet, fmt.Sprintf("D%d", row), entry.Amount.InexactFloat64())
		} else {
			file.SetCellValue(sheet, fmt.Sprintf("E%d", row), entry.Amount.InexactFloat64())
		}
		file.SetCellValue(sheet, fmt.Sprintf("F%d", row), entry.RunningBalance.InexactFloat64())
	}

	closingRow := len(statement.Entries) + 6
	file.SetCellValue(sheet, fmt.Sprintf("A%d", closingRow), "Closing Balance")
	file.SetCellValue(sheet, fmt.Sprintf("F%d", closingRow), statement.ClosingBalance.InexactFloat64())

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("statement-%s-%s.xlsx", statement.Account.Code, time.Now().UTC().Format("20060102"))
	return buffer, filename, nil
}
