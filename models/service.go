package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/shopspring/decimal"
)

type Service struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CompanyId   string          `gorm:"index;not null" json:"company_id"`
	Name        string          `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	UnitId      int             `gorm:"index" json:"unit_id"`
	Unit        *UnitOfMeasure  `json:"unit,omitempty"`
	SalesPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sales_price"`
	TaxPercent  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_percent"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewService struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	UnitId      int             `json:"unit_id"`
	SalesPrice  decimal.Decimal `json:"sales_price"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
}

func (input *NewService) validate(ctx context.Context, companyId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Service](ctx, companyId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Service](ctx, companyId, "name", input.Name, id); err != nil {
		return err
	}
	if input.UnitId > 0 {
		if err := utils.ValidateResourceId[UnitOfMeasure](ctx, companyId, input.UnitId); err != nil {
			return errors.New("unit not found")
		}
	}
	if input.SalesPrice.IsNegative() {
		return errors.New("price cannot be negative")
	}
	if input.TaxPercent.IsNegative() {
		return errors.New("tax percent cannot be negative")
	}
	return nil
}

func CreateService(ctx context.Context, input *NewService) (*Service, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, 0); err != nil {
		return nil, err
	}

	service := Service{
		CompanyId:   companyId,
		Name:        input.Name,
		Description: input.Description,
		UnitId:      input.UnitId,
		SalesPrice:  input.SalesPrice,
		TaxPercent:  input.TaxPercent,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func UpdateService(ctx context.Context, id int, input *NewService) (*Service, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, id); err != nil {
		return nil, err
	}

	service, err := utils.FetchModel[Service](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&service).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
		"UnitId":      input.UnitId,
		"SalesPrice":  input.SalesPrice,
		"TaxPercent":  input.TaxPercent,
	}).Error
	if err != nil {
		return nil, err
	}
	return service, nil
}

func DeleteService(ctx context.Context, id int) (*Service, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	service, err := utils.FetchModel[Service](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[SalesInvoiceItem](ctx, "", "service_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this service is used by invoices")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&service).Error; err != nil {
		return nil, err
	}
	return service, nil
}

func GetService(ctx context.Context, id int) (*Service, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchModel[Service](ctx, companyId, id, "Unit")
}

func GetServices(ctx context.Context, name *string) ([]*Service, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Unit").Where("company_id = ?", companyId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}

	var results []*Service
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
