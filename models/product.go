package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int             `gorm:"primary_key" json:"id"`
	CompanyId     string          `gorm:"index;not null" json:"company_id"`
	Name          string          `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Sku           string          `gorm:"index;size:50;not null" json:"sku" binding:"required"`
	Description   string          `gorm:"type:text" json:"description"`
	UnitId        int             `gorm:"index" json:"unit_id"`
	Unit          *UnitOfMeasure  `json:"unit,omitempty"`
	SalesPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sales_price"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	TaxPercent    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_percent"`
	TrackStock    *bool           `gorm:"not null;default:true" json:"track_stock"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name          string          `json:"name" binding:"required"`
	Sku           string          `json:"sku" binding:"required"`
	Description   string          `json:"description"`
	UnitId        int             `json:"unit_id"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	TaxPercent    decimal.Decimal `json:"tax_percent"`
	TrackStock    *bool           `json:"track_stock"`
}

func (input *NewProduct) validate(ctx context.Context, companyId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Product](ctx, companyId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Product](ctx, companyId, "sku", input.Sku, id); err != nil {
		return err
	}
	if input.UnitId > 0 {
		if err := utils.ValidateResourceId[UnitOfMeasure](ctx, companyId, input.UnitId); err != nil {
			return errors.New("unit not found")
		}
	}
	if input.SalesPrice.IsNegative() || input.PurchasePrice.IsNegative() {
		return errors.New("price cannot be negative")
	}
	if input.TaxPercent.IsNegative() {
		return errors.New("tax percent cannot be negative")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, 0); err != nil {
		return nil, err
	}

	trackStock := input.TrackStock
	if trackStock == nil {
		trackStock = utils.NewTrue()
	}

	product := Product{
		CompanyId:     companyId,
		Name:          input.Name,
		Sku:           input.Sku,
		Description:   input.Description,
		UnitId:        input.UnitId,
		SalesPrice:    input.SalesPrice,
		PurchasePrice: input.PurchasePrice,
		TaxPercent:    input.TaxPercent,
		TrackStock:    trackStock,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":          input.Name,
		"Sku":           input.Sku,
		"Description":   input.Description,
		"UnitId":        input.UnitId,
		"SalesPrice":    input.SalesPrice,
		"PurchasePrice": input.PurchasePrice,
		"TaxPercent":    input.TaxPercent,
	}
	if input.TrackStock != nil {
		updates["TrackStock"] = input.TrackStock
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	product, err := utils.FetchModel[Product](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[SalesInvoiceItem](ctx, "", "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this product is used by invoices")
	}
	count, err = utils.ResourceCountWhere[PurchaseInvoiceItem](ctx, "", "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this product is used by bills")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("product_id = ?", id).Delete(&ProductStock{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchModel[Product](ctx, companyId, id, "Unit")
}

func GetProducts(ctx context.Context, name *string, sku *string) ([]*Product, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Unit").Where("company_id = ?", companyId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if sku != nil && len(*sku) > 0 {
		dbCtx = dbCtx.Where("sku LIKE ?", "%"+*sku+"%")
	}

	var results []*Product
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
