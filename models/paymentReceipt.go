package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/shopspring/decimal"
)

// PaymentReceipt is money received against a sales invoice.
type PaymentReceipt struct {
	ID             int             `gorm:"primary_key" json:"id"`
	CompanyId      string          `gorm:"index;not null" json:"company_id"`
	ReceiptNumber  string          `gorm:"size:30;index;not null" json:"receipt_number"`
	CustomerId     int             `gorm:"index;not null" json:"customer_id"`
	Customer       *Customer       `json:"customer,omitempty"`
	SalesInvoiceId int             `gorm:"index;not null" json:"sales_invoice_id"`
	SalesInvoice   *SalesInvoice   `json:"sales_invoice,omitempty"`
	PaymentDate    time.Time       `gorm:"index;not null" json:"payment_date"`
	Method         PaymentMethod   `gorm:"size:20;not null" json:"method"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPaymentReceipt struct {
	SalesInvoiceId int             `json:"sales_invoice_id" binding:"required"`
	PaymentDate    time.Time       `json:"payment_date"`
	Method         PaymentMethod   `json:"method" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Notes          string          `json:"notes"`
}

// depositAccountCode maps a payment method to the money account it moves
// through: physical cash goes to Cash, everything else to Bank.
func depositAccountCode(method PaymentMethod) string {
	if method == PaymentMethodCash {
		return SystemAccountCash
	}
	return SystemAccountBank
}

// applyPayment folds a payment into a document's paid/due amounts and
// returns the resulting status: PAID once nothing is due, otherwise
// PARTIALLY_PAID. Shared by the receivable and payable flows.
func applyPayment(paid, due, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, InvoiceStatus) {
	paid = paid.Add(amount)
	due = due.Sub(amount)
	status := InvoiceStatusPartiallyPaid
	if due.IsZero() {
		status = InvoiceStatusPaid
	}
	return paid, due, status
}

// voidPayment is the exact inverse of applyPayment. openStatus is what
// the document returns to once nothing remains paid: SENT for invoices,
// RECEIVED for bills.
func voidPayment(paid, due, amount decimal.Decimal, openStatus InvoiceStatus) (decimal.Decimal, decimal.Decimal, InvoiceStatus) {
	paid = paid.Sub(amount)
	due = due.Add(amount)
	status := InvoiceStatusPartiallyPaid
	if !paid.GreaterThan(decimal.Zero) {
		status = openStatus
	}
	return paid, due, status
}

// CreatePaymentReceipt applies a payment to an open invoice in one
// transaction. The invoice is locked, the amount checked against what is
// still due, and only then the receipt, ledger posting and balance
// updates are written. A rejected payment writes nothing.
func CreatePaymentReceipt(ctx context.Context, input *NewPaymentReceipt) (*PaymentReceipt, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if !input.Method.IsValid() {
		return nil, errors.New("invalid payment method")
	}
	if !input.Amount.GreaterThan(decimal.Zero) {
		return nil, errors.New("amount must be greater than zero")
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}

	db := config.GetDB()
	tx := db.Begin()

	invoice, err := getSalesInvoiceForUpdate(ctx, tx, companyId, input.SalesInvoiceId)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("invoice not found: %w", utils.ErrorRecordNotFound)
	}
	if invoice.Status != InvoiceStatusSent && invoice.Status != InvoiceStatusPartiallyPaid {
		tx.Rollback()
		return nil, errors.New("invoice is not open for payment")
	}
	if input.Amount.GreaterThan(invoice.DueAmount) {
		tx.Rollback()
		return nil, errors.New("payment exceeds due amount")
	}

	customer, err := utils.FetchModel[Customer](ctx, companyId, invoice.CustomerId)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("customer not found: %w", utils.ErrorRecordNotFound)
	}

	receiptNumber, err := NextDocumentNumber(ctx, tx, companyId, DocumentTypePaymentReceipt, paymentDate.Year())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	receipt := PaymentReceipt{
		CompanyId:      companyId,
		ReceiptNumber:  receiptNumber,
		CustomerId:     customer.ID,
		SalesInvoiceId: invoice.ID,
		PaymentDate:    paymentDate,
		Method:         input.Method,
		Amount:         input.Amount,
		Notes:          input.Notes,
	}
	if err := tx.WithContext(ctx).Create(&receipt).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	paidAmount, dueAmount, status := applyPayment(invoice.PaidAmount, invoice.DueAmount, input.Amount)
	err = tx.WithContext(ctx).Model(invoice).Updates(map[string]interface{}{
		"PaidAmount": paidAmount,
		"DueAmount":  dueAmount,
		"Status":     status,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	deposit, err := findParentAccountByCode(ctx, tx, companyId, depositAccountCode(input.Method))
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	_, err = PostLedgerEntries(ctx, tx, companyId, &NewLedgerPosting{
		EntryDate:     paymentDate,
		Narration:     "Payment received for " + invoice.InvoiceNumber,
		VoucherNumber: receiptNumber,
		ReferenceType: ReferenceTypePaymentReceipt,
		ReferenceId:   receipt.ID,
		Entries: []NewLedgerEntry{
			{AccountId: deposit.ID, EntryType: EntryTypeDebit, Amount: input.Amount},
			{AccountId: customer.LedgerAccountId, EntryType: EntryTypeCredit, Amount: input.Amount},
		},
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := adjustCustomerBalance(ctx, tx, companyId, customer.ID, input.Amount.Neg()); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

// DeletePaymentReceipt voids a payment: the ledger posting is reversed
// and the invoice gets the paid amount handed back, restoring the state
// it had before the payment.
func DeletePaymentReceipt(ctx context.Context, id int) (*PaymentReceipt, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	var receipt PaymentReceipt
	err := tx.WithContext(ctx).
		Clauses(forUpdateClause()).
		Where("company_id = ?", companyId).
		First(&receipt, id).Error
	if err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	invoice, err := getSalesInvoiceForUpdate(ctx, tx, companyId, receipt.SalesInvoiceId)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("invoice not found: %w", utils.ErrorRecordNotFound)
	}

	if err := reverseLedgerEntries(ctx, tx, companyId, ReferenceTypePaymentReceipt, receipt.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	paidAmount, dueAmount, status := voidPayment(invoice.PaidAmount, invoice.DueAmount, receipt.Amount, InvoiceStatusSent)
	err = tx.WithContext(ctx).Model(invoice).Updates(map[string]interface{}{
		"PaidAmount": paidAmount,
		"DueAmount":  dueAmount,
		"Status":     status,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := adjustCustomerBalance(ctx, tx, companyId, receipt.CustomerId, receipt.Amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).Delete(&receipt).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &receipt, nil
}

func GetPaymentReceipt(ctx context.Context, id int) (*PaymentReceipt, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchModel[PaymentReceipt](ctx, companyId, id, "Customer", "SalesInvoice")
}

func GetPaymentReceipts(ctx context.Context, customerId *int, salesInvoiceId *int) ([]*PaymentReceipt, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Preload("Customer").
		Where("company_id = ?", companyId)
	if customerId != nil && *customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}
	if salesInvoiceId != nil && *salesInvoiceId > 0 {
		dbCtx = dbCtx.Where("sales_invoice_id = ?", *salesInvoiceId)
	}

	var results []*PaymentReceipt
	if err := dbCtx.Order("payment_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
