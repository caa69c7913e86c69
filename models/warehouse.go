package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
)

type Warehouse struct {
	ID        int       `gorm:"primary_key" json:"id"`
	CompanyId string    `gorm:"index;not null" json:"company_id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Address   string    `gorm:"type:text" json:"address"`
	IsDefault *bool     `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewWarehouse struct {
	Name      string `json:"name" binding:"required"`
	Address   string `json:"address"`
	IsDefault *bool  `json:"is_default"`
}

func CreateWarehouse(ctx context.Context, input *NewWarehouse) (*Warehouse, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := utils.ValidateUnique[Warehouse](ctx, companyId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	isDefault := input.IsDefault
	if isDefault == nil {
		// First warehouse becomes the default.
		count, err := utils.ResourceCountWhere[Warehouse](ctx, companyId, "1 = 1")
		if err != nil {
			return nil, err
		}
		if count == 0 {
			isDefault = utils.NewTrue()
		} else {
			isDefault = utils.NewFalse()
		}
	}

	warehouse := Warehouse{
		CompanyId: companyId,
		Name:      input.Name,
		Address:   input.Address,
		IsDefault: isDefault,
	}

	db := config.GetDB()
	tx := db.Begin()
	if *isDefault {
		err := tx.WithContext(ctx).Model(&Warehouse{}).
			Where("company_id = ?", companyId).
			UpdateColumn("is_default", false).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.WithContext(ctx).Create(&warehouse).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func UpdateWarehouse(ctx context.Context, id int, input *NewWarehouse) (*Warehouse, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := utils.ValidateResourceId[Warehouse](ctx, companyId, id); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Warehouse](ctx, companyId, "name", input.Name, id); err != nil {
		return nil, err
	}

	warehouse, err := utils.FetchModel[Warehouse](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":    input.Name,
		"Address": input.Address,
	}

	db := config.GetDB()
	tx := db.Begin()
	if input.IsDefault != nil && *input.IsDefault {
		err := tx.WithContext(ctx).Model(&Warehouse{}).
			Where("company_id = ?", companyId).
			UpdateColumn("is_default", false).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		updates["IsDefault"] = true
	}
	if err := tx.WithContext(ctx).Model(&warehouse).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return warehouse, nil
}

func DeleteWarehouse(ctx context.Context, id int) (*Warehouse, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	warehouse, err := utils.FetchModel[Warehouse](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[ProductStock](ctx, "", "warehouse_id = ? AND quantity <> 0", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this warehouse has stock")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("warehouse_id = ?", id).Delete(&ProductStock{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&warehouse).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return warehouse, nil
}

func GetWarehouse(ctx context.Context, id int) (*Warehouse, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchModel[Warehouse](ctx, companyId, id)
}

func GetWarehouses(ctx context.Context) ([]*Warehouse, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchAllModels[Warehouse](ctx, companyId)
}

// GetDefaultWarehouse falls back to the oldest warehouse when none is
// flagged default.
func GetDefaultWarehouse(ctx context.Context, companyId string) (*Warehouse, error) {
	db := config.GetDB()
	var warehouse Warehouse
	err := db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Order("is_default DESC, id ASC").
		First(&warehouse).Error
	if err != nil {
		return nil, errors.New("no warehouse configured")
	}
	return &warehouse, nil
}
