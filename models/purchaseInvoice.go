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

type PurchaseInvoice struct {
	ID             int                   `gorm:"primary_key" json:"id"`
	CompanyId      string                `gorm:"index;not null" json:"company_id"`
	BillNumber     string                `gorm:"size:30;index;not null" json:"bill_number"`
	VendorId       int                   `gorm:"index;not null" json:"vendor_id"`
	Vendor         *Vendor               `json:"vendor,omitempty"`
	WarehouseId    int                   `gorm:"index" json:"warehouse_id"`
	InvoiceDate    time.Time             `gorm:"index;not null" json:"invoice_date"`
	DueDate        time.Time             `gorm:"index" json:"due_date"`
	Status         InvoiceStatus         `gorm:"type:enum('DRAFT','SENT','RECEIVED','PARTIALLY_PAID','PAID');size:20;not null;default:'DRAFT'" json:"status"`
	Notes          string                `gorm:"type:text" json:"notes"`
	SubTotal       decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountAmount decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	DueAmount      decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"due_amount"`
	Items          []PurchaseInvoiceItem `json:"items"`
	CreatedAt      time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseInvoiceItem struct {
	ID                int             `gorm:"primary_key" json:"id"`
	PurchaseInvoiceId int             `gorm:"index;not null" json:"purchase_invoice_id"`
	ProductId         int             `gorm:"index" json:"product_id"`
	Product           *Product        `json:"product,omitempty"`
	Description       string          `gorm:"size:255" json:"description"`
	Quantity          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	DiscountPercent   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_percent"`
	TaxPercent        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_percent"`
	SubTotal          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
}

type NewPurchaseInvoiceItem struct {
	ProductId       int             `json:"product_id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
}

type NewPurchaseInvoice struct {
	VendorId    int                      `json:"vendor_id" binding:"required"`
	WarehouseId int                      `json:"warehouse_id"`
	InvoiceDate time.Time                `json:"invoice_date"`
	DueDate     *time.Time               `json:"due_date"`
	Notes       string                   `json:"notes"`
	Items       []NewPurchaseInvoiceItem `json:"items" binding:"required"`
}

func (invoice *PurchaseInvoice) displayStatus(now time.Time) InvoiceStatus {
	switch invoice.Status {
	case InvoiceStatusReceived, InvoiceStatusPartiallyPaid:
		if !invoice.DueDate.IsZero() && invoice.DueDate.Before(now) && invoice.DueAmount.GreaterThan(decimal.Zero) {
			return InvoiceStatusOverdue
		}
	}
	return invoice.Status
}

func validatePurchaseInvoiceItems(ctx context.Context, companyId string, items []NewPurchaseInvoiceItem) error {
	if len(items) == 0 {
		return errors.New("at least one item is required")
	}
	for _, item := range items {
		if item.ProductId > 0 {
			if err := utils.ValidateResourceId[Product](ctx, companyId, item.ProductId); err != nil {
				return errors.New("product not found")
			}
		} else if item.Description == "" {
			return errors.New("item requires a product or a description")
		}
		if !item.Quantity.GreaterThan(decimal.Zero) {
			return errors.New("quantity must be greater than zero")
		}
		if item.UnitPrice.IsNegative() {
			return errors.New("unit price cannot be negative")
		}
		if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return errors.New("discount percent must be between 0 and 100")
		}
		if item.TaxPercent.IsNegative() {
			return errors.New("tax percent cannot be negative")
		}
	}
	return nil
}

// CreatePurchaseInvoice records a bill in one transaction: items with
// computed line totals, the reserved bill number, the payable posting and
// the incoming stock movements.
func CreatePurchaseInvoice(ctx context.Context, input *NewPurchaseInvoice) (*PurchaseInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	vendor, err := utils.FetchModel[Vendor](ctx, companyId, input.VendorId)
	if err != nil {
		return nil, fmt.Errorf("vendor not found: %w", utils.ErrorRecordNotFound)
	}
	if vendor.IsActive == nil || !*vendor.IsActive {
		return nil, errors.New("vendor is disabled")
	}

	if err := validatePurchaseInvoiceItems(ctx, companyId, input.Items); err != nil {
		return nil, err
	}

	invoiceDate := input.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now().UTC()
	}
	dueDate := calculateDueDate(invoiceDate, vendor.CreditDays)
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}

	db := config.GetDB()
	tx := db.Begin()

	warehouseId := input.WarehouseId
	if warehouseId <= 0 {
		warehouse, err := GetDefaultWarehouse(ctx, companyId)
		if err == nil {
			warehouseId = warehouse.ID
		}
	}

	items, totals, err := buildPurchaseInvoiceItems(ctx, tx, companyId, input.Items)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	billNumber, err := NextDocumentNumber(ctx, tx, companyId, DocumentTypePurchaseInvoice, invoiceDate.Year())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	invoice := PurchaseInvoice{
		CompanyId:      companyId,
		BillNumber:     billNumber,
		VendorId:       vendor.ID,
		WarehouseId:    warehouseId,
		InvoiceDate:    invoiceDate,
		DueDate:        dueDate,
		Status:         InvoiceStatusDraft,
		Notes:          input.Notes,
		SubTotal:       totals.SubTotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		TotalAmount:    totals.TotalAmount,
		PaidAmount:     decimal.Zero,
		DueAmount:      totals.TotalAmount,
		Items:          items,
	}
	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := postPurchaseInvoiceEntries(ctx, tx, companyId, vendor, &invoice); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := applyPurchaseInvoiceStock(ctx, tx, companyId, &invoice, decimal.NewFromInt(1)); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := adjustVendorBalance(ctx, tx, companyId, vendor.ID, invoice.TotalAmount); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func buildPurchaseInvoiceItems(ctx context.Context, tx *gorm.DB, companyId string, inputs []NewPurchaseInvoiceItem) ([]PurchaseInvoiceItem, utils.LineTotals, error) {

	items := make([]PurchaseInvoiceItem, 0, len(inputs))
	var totals utils.LineTotals

	for _, in := range inputs {
		unitPrice := in.UnitPrice
		taxPercent := in.TaxPercent
		description := in.Description

		if in.ProductId > 0 {
			var product Product
			if err := tx.WithContext(ctx).
				Where("company_id = ?", companyId).
				First(&product, in.ProductId).Error; err != nil {
				return nil, totals, errors.New("product not found")
			}
			if unitPrice.IsZero() {
				unitPrice = product.PurchasePrice
			}
			if taxPercent.IsZero() {
				taxPercent = product.TaxPercent
			}
			if description == "" {
				description = product.Name
			}
		}

		line := utils.CalculateLineTotals(in.Quantity, unitPrice, in.DiscountPercent, taxPercent)
		items = append(items, PurchaseInvoiceItem{
			ProductId:       in.ProductId,
			Description:     description,
			Quantity:        in.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: in.DiscountPercent,
			TaxPercent:      taxPercent,
			SubTotal:        line.SubTotal,
			DiscountAmount:  line.DiscountAmount,
			TaxAmount:       line.TaxAmount,
			TotalAmount:     line.TotalAmount,
		})

		totals.SubTotal = totals.SubTotal.Add(line.SubTotal)
		totals.DiscountAmount = totals.DiscountAmount.Add(line.DiscountAmount)
		totals.TaxableAmount = totals.TaxableAmount.Add(line.TaxableAmount)
		totals.TaxAmount = totals.TaxAmount.Add(line.TaxAmount)
		totals.TotalAmount = totals.TotalAmount.Add(line.TotalAmount)
	}

	return items, totals, nil
}

// postPurchaseInvoiceEntries writes the payable posting for one bill:
// debit purchases for the taxable amount and tax payable for the input
// tax, credit the vendor's sub-ledger for the grand total.
func postPurchaseInvoiceEntries(ctx context.Context, tx *gorm.DB, companyId string, vendor *Vendor, invoice *PurchaseInvoice) error {

	purchases, err := findParentAccountByCode(ctx, tx, companyId, SystemAccountPurchases)
	if err != nil {
		return err
	}

	entries := []NewLedgerEntry{
		{AccountId: purchases.ID, EntryType: EntryTypeDebit, Amount: invoice.TotalAmount.Sub(invoice.TaxAmount)},
	}
	if invoice.TaxAmount.GreaterThan(decimal.Zero) {
		taxPayable, err := findParentAccountByCode(ctx, tx, companyId, SystemAccountTaxPayable)
		if err != nil {
			return err
		}
		entries = append(entries, NewLedgerEntry{
			AccountId: taxPayable.ID, EntryType: EntryTypeDebit, Amount: invoice.TaxAmount,
		})
	}
	entries = append(entries, NewLedgerEntry{
		AccountId: vendor.LedgerAccountId, EntryType: EntryTypeCredit, Amount: invoice.TotalAmount,
	})

	_, err = PostLedgerEntries(ctx, tx, companyId, &NewLedgerPosting{
		EntryDate:     invoice.InvoiceDate,
		Narration:     "Purchase bill " + invoice.BillNumber,
		VoucherNumber: invoice.BillNumber,
		ReferenceType: ReferenceTypePurchaseInvoice,
		ReferenceId:   invoice.ID,
		Entries:       entries,
	})
	return err
}

func applyPurchaseInvoiceStock(ctx context.Context, tx *gorm.DB, companyId string, invoice *PurchaseInvoice, direction decimal.Decimal) error {

	if invoice.WarehouseId <= 0 {
		return nil
	}

	for _, item := range invoice.Items {
		if item.ProductId <= 0 {
			continue
		}
		var product Product
		if err := tx.WithContext(ctx).
			Where("company_id = ?", companyId).
			First(&product, item.ProductId).Error; err != nil {
			return errors.New("product not found")
		}
		if product.TrackStock == nil || !*product.TrackStock {
			continue
		}
		delta := item.Quantity.Mul(direction)
		if err := adjustProductStock(ctx, tx, companyId, item.ProductId, invoice.WarehouseId, delta); err != nil {
			return err
		}
	}
	return nil
}

// MarkPurchaseInvoiceReceived moves a draft bill into the open state;
// only then can payments be made against it.
func MarkPurchaseInvoiceReceived(ctx context.Context, id int) (*PurchaseInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	invoice, err := getPurchaseInvoiceForUpdate(ctx, tx, companyId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if invoice.Status != InvoiceStatusDraft {
		tx.Rollback()
		return nil, errors.New("only draft bills can be received")
	}

	if err := tx.WithContext(ctx).Model(invoice).
		UpdateColumn("status", InvoiceStatusReceived).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invoice.Status = InvoiceStatusReceived
	return invoice, nil
}

// DeletePurchaseInvoice voids the bill: the payable posting is reversed,
// incoming stock is taken back out and the mirror balance rolls back.
// Paid bills must have their payments voided first.
func DeletePurchaseInvoice(ctx context.Context, id int) (*PurchaseInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	invoice, err := getPurchaseInvoiceForUpdate(ctx, tx, companyId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if invoice.PaidAmount.GreaterThan(decimal.Zero) {
		tx.Rollback()
		return nil, errors.New("void payments first")
	}

	if err := tx.WithContext(ctx).
		Where("purchase_invoice_id = ?", invoice.ID).
		Find(&invoice.Items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := reverseLedgerEntries(ctx, tx, companyId, ReferenceTypePurchaseInvoice, invoice.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := applyPurchaseInvoiceStock(ctx, tx, companyId, invoice, decimal.NewFromInt(-1)); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := adjustVendorBalance(ctx, tx, companyId, invoice.VendorId, invoice.TotalAmount.Neg()); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).
		Where("purchase_invoice_id = ?", invoice.ID).
		Delete(&PurchaseInvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return invoice, nil
}

func getPurchaseInvoiceForUpdate(ctx context.Context, tx *gorm.DB, companyId string, id int) (*PurchaseInvoice, error) {
	var invoice PurchaseInvoice
	err := tx.WithContext(ctx).
		Clauses(forUpdateClause()).
		Where("company_id = ?", companyId).
		First(&invoice, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &invoice, nil
}

func GetPurchaseInvoice(ctx context.Context, id int) (*PurchaseInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	invoice, err := utils.FetchModel[PurchaseInvoice](ctx, companyId, id, "Vendor", "Items", "Items.Product")
	if err != nil {
		return nil, err
	}
	invoice.Status = invoice.displayStatus(time.Now().UTC())
	return invoice, nil
}

func GetPurchaseInvoices(ctx context.Context, vendorId *int, status *InvoiceStatus) ([]*PurchaseInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Preload("Vendor").Preload("Items").
		Where("company_id = ?", companyId)
	if vendorId != nil && *vendorId > 0 {
		dbCtx = dbCtx.Where("vendor_id = ?", *vendorId)
	}

	var results []*PurchaseInvoice
	if err := dbCtx.Order("invoice_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, invoice := range results {
		invoice.Status = invoice.displayStatus(now)
	}

	if status != nil && *status != "" {
		filtered := results[:0]
		for _, invoice := range results {
			if invoice.Status == *status {
				filtered = append(filtered, invoice)
			}
		}
		results = filtered
	}
	return results, nil
}
