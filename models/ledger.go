package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerEntry struct {
	ID            int             `gorm:"primary_key;index:idx_le_acct_date,priority:3" json:"id"`
	CompanyId     string          `gorm:"index;not null;index:idx_le_ref,priority:1" json:"company_id"`
	AccountId     int             `gorm:"index;not null;index:idx_le_acct_date,priority:1" json:"account_id"`
	EntryDate     time.Time       `gorm:"index;not null;index:idx_le_acct_date,priority:2" json:"entry_date"`
	EntryType     EntryType       `gorm:"type:enum('DEBIT','CREDIT');size:6;not null" json:"entry_type"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Narration     string          `gorm:"size:255" json:"narration"`
	VoucherNumber string          `gorm:"size:255;index" json:"voucher_number"`
	ReferenceType ReferenceType   `gorm:"type:enum('JN','IV','BL','CP','SP','OB');index:idx_le_ref,priority:2" json:"reference_type"`
	ReferenceId   int             `gorm:"index:idx_le_ref,priority:3" json:"reference_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Ledger immutability guardrails: entries are append-only. Voidance flows
// (invoice delete, payment void) remove them with a SkipHooks session and
// compensating balance updates in the same transaction.

func (e *LedgerEntry) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("immutable ledger: entries cannot be updated")
}

func (e *LedgerEntry) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: entries cannot be deleted")
}

type NewLedgerEntry struct {
	AccountId int             `json:"account_id" binding:"required"`
	EntryType EntryType       `json:"entry_type" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Narration string          `json:"narration"`
}

type NewLedgerPosting struct {
	EntryDate     time.Time        `json:"date"`
	Narration     string           `json:"narration"`
	VoucherNumber string           `json:"voucher_number"`
	ReferenceType ReferenceType    `json:"reference_type"`
	ReferenceId   int              `json:"reference_id"`
	Entries       []NewLedgerEntry `json:"entries" binding:"required"`
}

// UnbalancedEntryError reports the debit/credit sums alongside the
// rejection so the caller can echo them back.
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return "total debits must equal total credits"
}

// balancedTolerance is a fixed, auditable business rule: postings whose
// debit/credit sums differ by more than 0.01 are rejected.
var balancedTolerance = decimal.NewFromFloat(0.01)

// SignedDelta is the single normal-balance sign rule: a debit increases
// ASSET/EXPENSE accounts, a credit increases LIABILITY/EQUITY/INCOME
// accounts. Both the posting engine and the statement reader fold with
// this function so the two can never drift apart.
func SignedDelta(group AccountGroup, entryType EntryType, amount decimal.Decimal) decimal.Decimal {
	delta := amount
	if entryType == EntryTypeCredit {
		delta = delta.Neg()
	}
	switch group {
	case AccountGroupLiability, AccountGroupEquity, AccountGroupIncome:
		delta = delta.Neg()
	}
	return delta
}

// ValidateLedgerPosting checks the candidate entries before anything is
// written: at least two entries, positive amounts, valid entry types, and
// debit/credit sums balanced within the tolerance.
func ValidateLedgerPosting(entries []NewLedgerEntry) error {
	if len(entries) < 2 {
		return errors.New("at least two entries are required")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, e := range entries {
		if !e.EntryType.IsValid() {
			return errors.New("entry type must be DEBIT or CREDIT")
		}
		if e.AccountId <= 0 {
			return errors.New("account id is required")
		}
		if !e.Amount.GreaterThan(decimal.Zero) {
			return errors.New("amount must be greater than zero")
		}
		if e.EntryType == EntryTypeDebit {
			totalDebit = totalDebit.Add(e.Amount)
		} else {
			totalCredit = totalCredit.Add(e.Amount)
		}
	}

	if totalDebit.Sub(totalCredit).Abs().GreaterThan(balancedTolerance) {
		return &UnbalancedEntryError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}
	return nil
}

// PostLedgerEntries validates and records one balanced entry group inside
// the caller's transaction: it inserts the LedgerEntry rows and applies
// the signed balance delta to every touched account. Either everything
// commits with the caller's transaction or nothing does.
func PostLedgerEntries(ctx context.Context, tx *gorm.DB, companyId string, input *NewLedgerPosting) ([]*LedgerEntry, error) {

	if err := ValidateLedgerPosting(input.Entries); err != nil {
		return nil, err
	}

	entryDate := input.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now().UTC()
	}

	voucherNumber := input.VoucherNumber
	if voucherNumber == "" {
		var err error
		voucherNumber, err = NextDocumentNumber(ctx, tx, companyId, DocumentTypeJournal, entryDate.Year())
		if err != nil {
			return nil, err
		}
	}

	referenceType := input.ReferenceType
	if referenceType == "" {
		referenceType = ReferenceTypeJournal
	}

	entries := make([]*LedgerEntry, 0, len(input.Entries))
	for _, e := range input.Entries {
		account, err := getAccountForUpdate(ctx, tx, companyId, e.AccountId)
		if err != nil {
			return nil, err
		}

		narration := e.Narration
		if narration == "" {
			narration = input.Narration
		}

		entry := LedgerEntry{
			CompanyId:     companyId,
			AccountId:     account.ID,
			EntryDate:     entryDate,
			EntryType:     e.EntryType,
			Amount:        e.Amount,
			Narration:     narration,
			VoucherNumber: voucherNumber,
			ReferenceType: referenceType,
			ReferenceId:   input.ReferenceId,
		}
		if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
			return nil, err
		}

		delta := SignedDelta(account.AccountGroup, e.EntryType, e.Amount)
		if err := applyBalanceDelta(ctx, tx, companyId, account.ID, delta); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

// applyBalanceDelta increments the account running balance in place;
// concurrent postings to the same account serialize on the row lock.
func applyBalanceDelta(ctx context.Context, tx *gorm.DB, companyId string, accountId int, delta decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&Account{}).
		Where("id = ? AND company_id = ?", accountId, companyId).
		UpdateColumn("current_balance", gorm.Expr("current_balance + ?", delta)).Error
}

// reverseLedgerEntries voids every entry of one source document: balances
// get the inverse delta and the rows are removed (SkipHooks bypasses the
// append-only guard), all inside the caller's transaction.
func reverseLedgerEntries(ctx context.Context, tx *gorm.DB, companyId string, referenceType ReferenceType, referenceId int) error {

	var entries []*LedgerEntry
	if err := tx.WithContext(ctx).
		Where("company_id = ? AND reference_type = ? AND reference_id = ?", companyId, referenceType, referenceId).
		Find(&entries).Error; err != nil {
		return err
	}

	for _, entry := range entries {
		account, err := getAccountForUpdate(ctx, tx, companyId, entry.AccountId)
		if err != nil {
			return err
		}
		delta := SignedDelta(account.AccountGroup, entry.EntryType, entry.Amount).Neg()
		if err := applyBalanceDelta(ctx, tx, companyId, account.ID, delta); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Session(&gorm.Session{SkipHooks: true}).
			Delete(&LedgerEntry{}, entry.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateLedgerEntries records a manual journal: one balanced group in its
// own transaction.
func CreateLedgerEntries(ctx context.Context, input *NewLedgerPosting) ([]*LedgerEntry, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	tx := db.Begin()
	entries, err := PostLedgerEntries(ctx, tx, companyId, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return entries, nil
}

type StatementEntry struct {
	LedgerEntry
	RunningBalance decimal.Decimal `json:"running_balance"`
}

type AccountStatement struct {
	Account        *Account          `json:"account"`
	OpeningBalance decimal.Decimal   `json:"opening_balance"`
	ClosingBalance decimal.Decimal   `json:"closing_balance"`
	Entries        []*StatementEntry `json:"entries"`
}

// GetAccountStatement is a read-side projection: the account's entries in
// chronological order, each annotated with the running balance folded with
// the same sign rule the posting engine uses. Ties on identical dates keep
// insertion order (id ASC).
func GetAccountStatement(ctx context.Context, accountId int, startDate *time.Time, endDate *time.Time) (*AccountStatement, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	account, err := utils.FetchModel[Account](ctx, companyId, accountId)
	if err != nil {
		return nil, fmt.Errorf("account not found: %w", utils.ErrorRecordNotFound)
	}

	db := config.GetDB()

	// Opening balance of the window: the account's own opening balance plus
	// everything posted before startDate.
	opening := account.OpeningBalance
	if startDate != nil {
		var before []*LedgerEntry
		if err := db.WithContext(ctx).
			Where("company_id = ? AND account_id = ? AND entry_date < ?", companyId, accountId, *startDate).
			Order("entry_date ASC, id ASC").
			Find(&before).Error; err != nil {
			return nil, err
		}
		for _, e := range before {
			opening = opening.Add(SignedDelta(account.AccountGroup, e.EntryType, e.Amount))
		}
	}

	dbCtx := db.WithContext(ctx).
		Where("company_id = ? AND account_id = ?", companyId, accountId)
	if startDate != nil {
		dbCtx = dbCtx.Where("entry_date >= ?", *startDate)
	}
	if endDate != nil {
		dbCtx = dbCtx.Where("entry_date <= ?", *endDate)
	}

	var entries []*LedgerEntry
	if err := dbCtx.Order("entry_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}

	running := opening
	statementEntries := make([]*StatementEntry, 0, len(entries))
	for _, e := range entries {
		running = running.Add(SignedDelta(account.AccountGroup, e.EntryType, e.Amount))
		statementEntries = append(statementEntries, &StatementEntry{
			LedgerEntry:    *e,
			RunningBalance: running,
		})
	}

	return &AccountStatement{
		Account:        account,
		OpeningBalance: opening,
		ClosingBalance: running,
		Entries:        statementEntries,
	}, nil
}

// GetLedgerEntries lists entries by voucher number or reference, newest first.
func GetLedgerEntries(ctx context.Context, voucherNumber *string, referenceType *ReferenceType, referenceId *int) ([]*LedgerEntry, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if voucherNumber != nil && *voucherNumber != "" {
		dbCtx = dbCtx.Where("voucher_number = ?", *voucherNumber)
	}
	if referenceType != nil && *referenceType != "" {
		dbCtx = dbCtx.Where("reference_type = ?", *referenceType)
	}
	if referenceId != nil && *referenceId > 0 {
		dbCtx = dbCtx.Where("reference_id = ?", *referenceId)
	}

	var entries []*LedgerEntry
	if err := dbCtx.Order("entry_date DESC, id DESC").Limit(config.SearchLimit * 20).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
