package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
)

type UnitOfMeasure struct {
	ID           int       `gorm:"primary_key" json:"id"`
	CompanyId    string    `gorm:"index;not null" json:"company_id"`
	Name         string    `gorm:"size:50;not null" json:"name" binding:"required"`
	Abbreviation string    `gorm:"size:10" json:"abbreviation"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUnitOfMeasure struct {
	Name         string `json:"name" binding:"required"`
	Abbreviation string `json:"abbreviation"`
}

func CreateUnitOfMeasure(ctx context.Context, input *NewUnitOfMeasure) (*UnitOfMeasure, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := utils.ValidateUnique[UnitOfMeasure](ctx, companyId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	unit := UnitOfMeasure{
		CompanyId:    companyId,
		Name:         input.Name,
		Abbreviation: input.Abbreviation,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func UpdateUnitOfMeasure(ctx context.Context, id int, input *NewUnitOfMeasure) (*UnitOfMeasure, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := utils.ValidateResourceId[UnitOfMeasure](ctx, companyId, id); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[UnitOfMeasure](ctx, companyId, "name", input.Name, id); err != nil {
		return nil, err
	}

	unit, err := utils.FetchModel[UnitOfMeasure](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&unit).Updates(map[string]interface{}{
		"Name":         input.Name,
		"Abbreviation": input.Abbreviation,
	}).Error
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// DeleteUnitOfMeasure refuses while products or services still reference
// the unit, and the error says how many of each.
func DeleteUnitOfMeasure(ctx context.Context, id int) (*UnitOfMeasure, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	unit, err := utils.FetchModel[UnitOfMeasure](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	productCount, err := utils.ResourceCountWhere[Product](ctx, companyId, "unit_id = ?", id)
	if err != nil {
		return nil, err
	}
	serviceCount, err := utils.ResourceCountWhere[Service](ctx, companyId, "unit_id = ?", id)
	if err != nil {
		return nil, err
	}
	if productCount > 0 || serviceCount > 0 {
		return nil, fmt.Errorf("this unit is used by %d products and %d services", productCount, serviceCount)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&unit).Error; err != nil {
		return nil, err
	}
	return unit, nil
}

func GetUnitOfMeasure(ctx context.Context, id int) (*UnitOfMeasure, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchModel[UnitOfMeasure](ctx, companyId, id)
}

func GetUnitOfMeasures(ctx context.Context) ([]*UnitOfMeasure, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchAllModels[UnitOfMeasure](ctx, companyId)
}
