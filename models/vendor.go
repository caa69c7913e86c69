package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Vendor struct {
	ID              int             `gorm:"primary_key" json:"id"`
	CompanyId       string          `gorm:"index;not null" json:"company_id"`
	Name            string          `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Email           string          `gorm:"size:100" json:"email"`
	Phone           string          `gorm:"size:20" json:"phone"`
	Address         string          `gorm:"type:text" json:"address"`
	CreditLimit     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_limit"`
	CreditDays      int             `gorm:"default:0" json:"credit_days"`
	OpeningBalance  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	CurrentBalance  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_balance"`
	LedgerAccountId int             `gorm:"index" json:"ledger_account_id"`
	IsActive        *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVendor struct {
	Name           string          `json:"name" binding:"required"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	CreditDays     int             `json:"credit_days"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func (input *NewVendor) validate(ctx context.Context, companyId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Vendor](ctx, companyId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Vendor](ctx, companyId, "name", input.Name, id); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	if input.OpeningBalance.IsNegative() {
		return errors.New("opening balance cannot be negative")
	}
	return nil
}

func CreateVendor(ctx context.Context, input *NewVendor) (*Vendor, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	parent, err := findParentAccountByCode(ctx, tx, companyId, SystemAccountPayable)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	subLedger := Account{
		CompanyId:       companyId,
		Code:            subLedgerAccountCode(parent.Code),
		Name:            "AP - " + input.Name,
		AccountGroup:    AccountGroupLiability,
		AccountType:     "Accounts Payable",
		ParentAccountId: parent.ID,
		OpeningBalance:  input.OpeningBalance,
		CurrentBalance:  input.OpeningBalance,
		IsSystemAccount: utils.NewFalse(),
		IsEnabled:       utils.NewTrue(),
	}
	if err := tx.WithContext(ctx).Create(&subLedger).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	vendor := Vendor{
		CompanyId:       companyId,
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		Address:         input.Address,
		CreditLimit:     input.CreditLimit,
		CreditDays:      input.CreditDays,
		OpeningBalance:  input.OpeningBalance,
		CurrentBalance:  input.OpeningBalance,
		LedgerAccountId: subLedger.ID,
		IsActive:        utils.NewTrue(),
	}
	if err := tx.WithContext(ctx).Create(&vendor).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func UpdateVendor(ctx context.Context, id int, input *NewVendor) (*Vendor, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, id); err != nil {
		return nil, err
	}

	vendor, err := utils.FetchModel[Vendor](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	err = tx.WithContext(ctx).Model(&vendor).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Email":       input.Email,
		"Phone":       input.Phone,
		"Address":     input.Address,
		"CreditLimit": input.CreditLimit,
		"CreditDays":  input.CreditDays,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if vendor.LedgerAccountId > 0 {
		err = tx.WithContext(ctx).Model(&Account{}).
			Where("id = ? AND company_id = ?", vendor.LedgerAccountId, companyId).
			UpdateColumn("name", "AP - "+input.Name).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return vendor, nil
}

func DeleteVendor(ctx context.Context, id int) (*Vendor, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	vendor, err := utils.FetchModel[Vendor](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&PurchaseInvoice{}).
		Where("vendor_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this vendor has bills")
	}

	if vendor.LedgerAccountId > 0 {
		if err := db.WithContext(ctx).Model(&LedgerEntry{}).
			Where("account_id = ?", vendor.LedgerAccountId).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("this vendor has ledger entries")
		}
	}

	tx := db.Begin()
	if vendor.LedgerAccountId > 0 {
		if err := tx.WithContext(ctx).
			Where("company_id = ?", companyId).
			Delete(&Account{}, vendor.LedgerAccountId).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.WithContext(ctx).Delete(&vendor).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return vendor, nil
}

func GetVendor(ctx context.Context, id int) (*Vendor, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchModel[Vendor](ctx, companyId, id)
}

func GetVendors(ctx context.Context, name *string) ([]*Vendor, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}

	var results []*Vendor
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func adjustVendorBalance(ctx context.Context, tx *gorm.DB, companyId string, vendorId int, delta decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&Vendor{}).
		Where("id = ? AND company_id = ?", vendorId, companyId).
		UpdateColumn("current_balance", gorm.Expr("current_balance + ?", delta)).Error
}
