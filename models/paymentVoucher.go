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

// PaymentVoucher is money paid out against a purchase bill.
type PaymentVoucher struct {
	ID                int              `gorm:"primary_key" json:"id"`
	CompanyId         string           `gorm:"index;not null" json:"company_id"`
	VoucherNumber     string           `gorm:"size:30;index;not null" json:"voucher_number"`
	VendorId          int              `gorm:"index;not null" json:"vendor_id"`
	Vendor            *Vendor          `json:"vendor,omitempty"`
	PurchaseInvoiceId int              `gorm:"index;not null" json:"purchase_invoice_id"`
	PurchaseInvoice   *PurchaseInvoice `json:"purchase_invoice,omitempty"`
	PaymentDate       time.Time        `gorm:"index;not null" json:"payment_date"`
	Method            PaymentMethod    `gorm:"size:20;not null" json:"method"`
	Amount            decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"amount"`
	Notes             string           `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPaymentVoucher struct {
	PurchaseInvoiceId int             `json:"purchase_invoice_id" binding:"required"`
	PaymentDate       time.Time       `json:"payment_date"`
	Method            PaymentMethod   `json:"method" binding:"required"`
	Amount            decimal.Decimal `json:"amount"`
	Notes             string          `json:"notes"`
}

// CreatePaymentVoucher settles (part of) an open bill in one transaction,
// mirroring the receipt flow on the payable side.
func CreatePaymentVoucher(ctx context.Context, input *NewPaymentVoucher) (*PaymentVoucher, error) {

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

	invoice, err := getPurchaseInvoiceForUpdate(ctx, tx, companyId, input.PurchaseInvoiceId)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("bill not found: %w", utils.ErrorRecordNotFound)
	}
	if invoice.Status != InvoiceStatusReceived && invoice.Status != InvoiceStatusPartiallyPaid {
		tx.Rollback()
		return nil, errors.New("bill is not open for payment")
	}
	if input.Amount.GreaterThan(invoice.DueAmount) {
		tx.Rollback()
		return nil, errors.New("payment exceeds due amount")
	}

	vendor, err := utils.FetchModel[Vendor](ctx, companyId, invoice.VendorId)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("vendor not found: %w", utils.ErrorRecordNotFound)
	}

	voucherNumber, err := NextDocumentNumber(ctx, tx, companyId, DocumentTypePaymentVoucher, paymentDate.Year())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	voucher := PaymentVoucher{
		CompanyId:         companyId,
		VoucherNumber:     voucherNumber,
		VendorId:          vendor.ID,
		PurchaseInvoiceId: invoice.ID,
		PaymentDate:       paymentDate,
		Method:            input.Method,
		Amount:            input.Amount,
		Notes:             input.Notes,
	}
	if err := tx.WithContext(ctx).Create(&voucher).Error; err != nil {
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
		Narration:     "Payment made for " + invoice.BillNumber,
		VoucherNumber: voucherNumber,
		ReferenceType: ReferenceTypePaymentVoucher,
		ReferenceId:   voucher.ID,
		Entries: []NewLedgerEntry{
			{AccountId: vendor.LedgerAccountId, EntryType: EntryTypeDebit, Amount: input.Amount},
			{AccountId: deposit.ID, EntryType: EntryTypeCredit, Amount: input.Amount},
		},
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := adjustVendorBalance(ctx, tx, companyId, vendor.ID, input.Amount.Neg()); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

// DeletePaymentVoucher voids an outgoing payment: exact reversal of the
// posting plus the bill's paid and due amounts rolled back.
func DeletePaymentVoucher(ctx context.Context, id int) (*PaymentVoucher, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	var voucher PaymentVoucher
	err := tx.WithContext(ctx).
		Clauses(forUpdateClause()).
		Where("company_id = ?", companyId).
		First(&voucher, id).Error
	if err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	invoice, err := getPurchaseInvoiceForUpdate(ctx, tx, companyId, voucher.PurchaseInvoiceId)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("bill not found: %w", utils.ErrorRecordNotFound)
	}

	if err := reverseLedgerEntries(ctx, tx, companyId, ReferenceTypePaymentVoucher, voucher.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	paidAmount, dueAmount, status := voidPayment(invoice.PaidAmount, invoice.DueAmount, voucher.Amount, InvoiceStatusReceived)
	err = tx.WithContext(ctx).Model(invoice).Updates(map[string]interface{}{
		"PaidAmount": paidAmount,
		"DueAmount":  dueAmount,
		"Status":     status,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := adjustVendorBalance(ctx, tx, companyId, voucher.VendorId, voucher.Amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).Delete(&voucher).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &voucher, nil
}

func GetPaymentVoucher(ctx context.Context, id int) (*PaymentVoucher, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchModel[PaymentVoucher](ctx, companyId, id, "Vendor", "PurchaseInvoice")
}

func GetPaymentVouchers(ctx context.Context, vendorId *int, purchaseInvoiceId *int) ([]*PaymentVoucher, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Preload("Vendor").
		Where("company_id = ?", companyId)
	if vendorId != nil && *vendorId > 0 {
		dbCtx = dbCtx.Where("vendor_id = ?", *vendorId)
	}
	if purchaseInvoiceId != nil && *purchaseInvoiceId > 0 {
		dbCtx = dbCtx.Where("purchase_invoice_id = ?", *purchaseInvoiceId)
	}

	var results []*PaymentVoucher
	if err := dbCtx.Order("payment_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
