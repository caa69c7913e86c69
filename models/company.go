package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/google/uuid"
)

// Company is the tenant. Every business row carries its id.
type Company struct {
	ID        string    `gorm:"primary_key;size:64" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	OwnerName string `json:"owner_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// RegisterCompany provisions a tenant: the company row, the owner user and
// the default chart of accounts, in one transaction.
func RegisterCompany(ctx context.Context, input *NewCompany) (*Company, *User, error) {

	if !utils.IsValidEmail(input.Email) {
		return nil, nil, errors.New("invalid email")
	}
	if len(input.Password) < 8 {
		return nil, nil, errors.New("password must be at least 8 characters")
	}

	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, errors.New("email already registered")
	}

	company := Company{
		ID:      uuid.NewString(),
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&company).Error; err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	owner, err := CreateDefaultOwner(tx, ctx, company.ID, input.Email, input.OwnerName, input.Password)
	if err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	if err := CreateDefaultAccounts(tx, ctx, company.ID); err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, nil, err
	}
	return &company, owner, nil
}

func GetCompany(ctx context.Context) (*Company, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	var company Company
	if err := db.WithContext(ctx).Where("id = ?", companyId).First(&company).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &company, nil
}
