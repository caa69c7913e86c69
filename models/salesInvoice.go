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

type SalesInvoice struct {
	ID             int                 `gorm:"primary_key" json:"id"`
	CompanyId      string              `gorm:"index;not null" json:"company_id"`
	InvoiceNumber  string              `gorm:"size:30;index;not null" json:"invoice_number"`
	CustomerId     int                 `gorm:"index;not null" json:"customer_id"`
	Customer       *Customer           `json:"customer,omitempty"`
	WarehouseId    int                 `gorm:"index" json:"warehouse_id"`
	InvoiceDate    time.Time           `gorm:"index;not null" json:"invoice_date"`
	DueDate        time.Time           `gorm:"index" json:"due_date"`
	Status         InvoiceStatus       `gorm:"type:enum('DRAFT','SENT','RECEIVED','PARTIALLY_PAID','PAID');size:20;not null;default:'DRAFT'" json:"status"`
	Notes          string              `gorm:"type:text" json:"notes"`
	SubTotal       decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount     decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	DueAmount      decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"due_amount"`
	Items          []SalesInvoiceItem  `json:"items"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type SalesInvoiceItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	SalesInvoiceId  int             `gorm:"index;not null" json:"sales_invoice_id"`
	ProductId       int             `gorm:"index" json:"product_id"`
	Product         *Product        `json:"product,omitempty"`
	ServiceId       int             `gorm:"index" json:"service_id"`
	Service         *Service        `json:"service,omitempty"`
	Description     string          `gorm:"size:255" json:"description"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_percent"`
	TaxPercent      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_percent"`
	SubTotal        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
}

type NewSalesInvoiceItem struct {
	ProductId       int             `json:"product_id"`
	ServiceId       int             `json:"service_id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
}

type NewSalesInvoice struct {
	CustomerId  int                   `json:"customer_id" binding:"required"`
	WarehouseId int                   `json:"warehouse_id"`
	InvoiceDate time.Time             `json:"invoice_date"`
	DueDate     *time.Time            `json:"due_date"`
	Notes       string                `json:"notes"`
	Items       []NewSalesInvoiceItem `json:"items" binding:"required"`
}

// displayStatus derives OVERDUE at read time; it is never persisted.
func (invoice *SalesInvoice) displayStatus(now time.Time) InvoiceStatus {
	switch invoice.Status {
	case InvoiceStatusSent, InvoiceStatusPartiallyPaid:
		if !invoice.DueDate.IsZero() && invoice.DueDate.Before(now) && invoice.DueAmount.GreaterThan(decimal.Zero) {
			return InvoiceStatusOverdue
		}
	}
	return invoice.Status
}

func validateSalesInvoiceItems(ctx context.Context, companyId string, items []NewSalesInvoiceItem) error {
	if len(items) == 0 {
		return errors.New("at least one item is required")
	}
	for _, item := range items {
		if item.ProductId > 0 && item.ServiceId > 0 {
			return errors.New("item cannot reference both a product and a service")
		}
		if item.ProductId <= 0 && item.ServiceId <= 0 {
			return errors.New("item requires a product or a service")
		}
		if item.ProductId > 0 {
			if err := utils.ValidateResourceId[Product](ctx, companyId, item.ProductId); err != nil {
				return errors.New("product not found")
			}
		}
		if item.ServiceId > 0 {
			if err := utils.ValidateResourceId[Service](ctx, companyId, item.ServiceId); err != nil {
				return errors.New("service not found")
			}
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

// CreateSalesInvoice records an invoice in one transaction: items with
// computed line totals, the reserved invoice number, the receivable
// posting and the stock movements. Anything failing rolls the whole
// document back.
func CreateSalesInvoice(ctx context.Context, input *NewSalesInvoice) (*SalesInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	customer, err := utils.FetchModel[Customer](ctx, companyId, input.CustomerId)
	if err != nil {
		return nil, fmt.Errorf("customer not found: %w", utils.ErrorRecordNotFound)
	}
	if customer.IsActive == nil || !*customer.IsActive {
		return nil, errors.New("customer is disabled")
	}

	if err := validateSalesInvoiceItems(ctx, companyId, input.Items); err != nil {
		return nil, err
	}

	invoiceDate := input.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now().UTC()
	}
	dueDate := calculateDueDate(invoiceDate, customer.CreditDays)
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

	items, totals, err := buildSalesInvoiceItems(ctx, tx, companyId, input.Items)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	invoiceNumber, err := NextDocumentNumber(ctx, tx, companyId, DocumentTypeSalesInvoice, invoiceDate.Year())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	invoice := SalesInvoice{
		CompanyId:      companyId,
		InvoiceNumber:  invoiceNumber,
		CustomerId:     customer.ID,
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

	if err := postSalesInvoiceEntries(ctx, tx, companyId, customer, &invoice); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := applySalesInvoiceStock(ctx, tx, companyId, &invoice, decimal.NewFromInt(-1)); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := adjustCustomerBalance(ctx, tx, companyId, customer.ID, invoice.TotalAmount); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// buildSalesInvoiceItems computes line totals and fills prices from the
// catalog when the caller omitted them. Document totals are exact sums of
// the line components.
func buildSalesInvoiceItems(ctx context.Context, tx *gorm.DB, companyId string, inputs []NewSalesInvoiceItem) ([]SalesInvoiceItem, utils.LineTotals, error) {

	items := make([]SalesInvoiceItem, 0, len(inputs))
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
				unitPrice = product.SalesPrice
			}
			if taxPercent.IsZero() {
				taxPercent = product.TaxPercent
			}
			if description == "" {
				description = product.Name
			}
		}
		if in.ServiceId > 0 {
			var service Service
			if err := tx.WithContext(ctx).
				Where("company_id = ?", companyId).
				First(&service, in.ServiceId).Error; err != nil {
				return nil, totals, errors.New("service not found")
			}
			if unitPrice.IsZero() {
				unitPrice = service.SalesPrice
			}
			if taxPercent.IsZero() {
				taxPercent = service.TaxPercent
			}
			if description == "" {
				description = service.Name
			}
		}

		line := utils.CalculateLineTotals(in.Quantity, unitPrice, in.DiscountPercent, taxPercent)
		items = append(items, SalesInvoiceItem{
			ProductId:       in.ProductId,
			ServiceId:       in.ServiceId,
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

// postSalesInvoiceEntries writes the receivable posting for one invoice:
// debit the customer's sub-ledger for the grand total, credit revenue for
// the taxable amount and tax payable for the tax.
func postSalesInvoiceEntries(ctx context.Context, tx *gorm.DB, companyId string, customer *Customer, invoice *SalesInvoice) error {

	revenue, err := findParentAccountByCode(ctx, tx, companyId, SystemAccountSalesRevenue)
	if err != nil {
		return err
	}

	entries := []NewLedgerEntry{
		{AccountId: customer.LedgerAccountId, EntryType: EntryTypeDebit, Amount: invoice.TotalAmount},
		{AccountId: revenue.ID, EntryType: EntryTypeCredit, Amount: invoice.TotalAmount.Sub(invoice.TaxAmount)},
	}
	if invoice.TaxAmount.GreaterThan(decimal.Zero) {
		taxPayable, err := findParentAccountByCode(ctx, tx, companyId, SystemAccountTaxPayable)
		if err != nil {
			return err
		}
		entries = append(entries, NewLedgerEntry{
			AccountId: taxPayable.ID, EntryType: EntryTypeCredit, Amount: invoice.TaxAmount,
		})
	}

	_, err = PostLedgerEntries(ctx, tx, companyId, &NewLedgerPosting{
		EntryDate:     invoice.InvoiceDate,
		Narration:     "Sales invoice " + invoice.InvoiceNumber,
		VoucherNumber: invoice.InvoiceNumber,
		ReferenceType: ReferenceTypeSalesInvoice,
		ReferenceId:   invoice.ID,
		Entries:       entries,
	})
	return err
}

// applySalesInvoiceStock moves stock for every tracked product line.
// direction is -1 on create (goods leave) and +1 on delete (voidance puts
// them back).
func applySalesInvoiceStock(ctx context.Context, tx *gorm.DB, companyId string, invoice *SalesInvoice, direction decimal.Decimal) error {

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

// MarkSalesInvoiceSent moves a draft invoice into the open state; only
// then can payments be applied against it.
func MarkSalesInvoiceSent(ctx context.Context, id int) (*SalesInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	invoice, err := getSalesInvoiceForUpdate(ctx, tx, companyId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if invoice.Status != InvoiceStatusDraft {
		tx.Rollback()
		return nil, errors.New("only draft invoices can be sent")
	}

	if err := tx.WithContext(ctx).Model(invoice).
		UpdateColumn("status", InvoiceStatusSent).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invoice.Status = InvoiceStatusSent
	return invoice, nil
}

// DeleteSalesInvoice voids the whole document: the receivable posting is
// reversed, stock movements are compensated and the mirror balance rolls
// back, all in one transaction. Paid invoices must have their payments
// voided first.
func DeleteSalesInvoice(ctx context.Context, id int) (*SalesInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	invoice, err := getSalesInvoiceForUpdate(ctx, tx, companyId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if invoice.PaidAmount.GreaterThan(decimal.Zero) {
		tx.Rollback()
		return nil, errors.New("void payments first")
	}

	if err := tx.WithContext(ctx).
		Where("sales_invoice_id = ?", invoice.ID).
		Find(&invoice.Items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := reverseLedgerEntries(ctx, tx, companyId, ReferenceTypeSalesInvoice, invoice.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := applySalesInvoiceStock(ctx, tx, companyId, invoice, decimal.NewFromInt(1)); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := adjustCustomerBalance(ctx, tx, companyId, invoice.CustomerId, invoice.TotalAmount.Neg()); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).
		Where("sales_invoice_id = ?", invoice.ID).
		Delete(&SalesInvoiceItem{}).Error; err != nil {
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

func getSalesInvoiceForUpdate(ctx context.Context, tx *gorm.DB, companyId string, id int) (*SalesInvoice, error) {
	var invoice SalesInvoice
	err := tx.WithContext(ctx).
		Clauses(forUpdateClause()).
		Where("company_id = ?", companyId).
		First(&invoice, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &invoice, nil
}

func GetSalesInvoice(ctx context.Context, id int) (*SalesInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	invoice, err := utils.FetchModel[SalesInvoice](ctx, companyId, id, "Customer", "Items", "Items.Product", "Items.Service")
	if err != nil {
		return nil, err
	}
	invoice.Status = invoice.displayStatus(time.Now().UTC())
	return invoice, nil
}

func GetSalesInvoices(ctx context.Context, customerId *int, status *InvoiceStatus) ([]*SalesInvoice, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Preload("Customer").Preload("Items").
		Where("company_id = ?", companyId)
	if customerId != nil && *customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}

	var results []*SalesInvoice
	if err := dbCtx.Order("invoice_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, invoice := range results {
		invoice.Status = invoice.displayStatus(now)
	}

	// OVERDUE only exists after derivation, so status filtering happens here.
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
