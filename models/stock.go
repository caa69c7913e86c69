package models

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductStock holds the on-hand quantity per product and warehouse.
// Rows are written additively so concurrent movements never lose updates.
type ProductStock struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CompanyId   string          `gorm:"index;not null" json:"company_id"`
	ProductId   int             `gorm:"not null;uniqueIndex:product_warehouse_key" json:"product_id"`
	Product     *Product        `json:"product,omitempty"`
	WarehouseId int             `gorm:"not null;uniqueIndex:product_warehouse_key" json:"warehouse_id"`
	Warehouse   *Warehouse      `json:"warehouse,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
}

// adjustProductStock applies a signed quantity movement inside the
// caller's transaction, creating the row on first touch.
func adjustProductStock(ctx context.Context, tx *gorm.DB, companyId string, productId int, warehouseId int, delta decimal.Decimal) error {

	if delta.IsZero() {
		return nil
	}

	row := ProductStock{
		CompanyId:   companyId,
		ProductId:   productId,
		WarehouseId: warehouseId,
		Quantity:    delta,
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", delta),
		}),
	}).Create(&row).Error
}

func GetProductStocks(ctx context.Context, productId *int, warehouseId *int) ([]*ProductStock, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Preload("Product").Preload("Warehouse").
		Where("company_id = ?", companyId)
	if productId != nil && *productId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", *productId)
	}
	if warehouseId != nil && *warehouseId > 0 {
		dbCtx = dbCtx.Where("warehouse_id = ?", *warehouseId)
	}

	var results []*ProductStock
	if err := dbCtx.Order("product_id, warehouse_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
