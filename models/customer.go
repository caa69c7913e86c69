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

type Customer struct {
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

type NewCustomer struct {
	Name           string          `json:"name" binding:"required"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	CreditDays     int             `json:"credit_days"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// Opening balance is seeded into the generated sub-ledger account's own
// opening balance, never posted as entries, so the account invariant
// (currentBalance = openingBalance + signed entries) holds from day one.
// It cannot be changed after creation.

func (input *NewCustomer) validate(ctx context.Context, companyId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, companyId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Customer](ctx, companyId, "name", input.Name, id); err != nil {
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

// subLedgerAccountCode generates a unique child code under the AR/AP
// parent: parent code + timestamp suffix.
func subLedgerAccountCode(parentCode string) string {
	return fmt.Sprintf("%s-%d", parentCode, time.Now().UnixNano())
}

func findParentAccountByCode(ctx context.Context, tx *gorm.DB, companyId string, code string) (*Account, error) {
	var parent Account
	err := tx.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyId, code).
		First(&parent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("parent account %s not found", code)
		}
		return nil, err
	}
	return &parent, nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	parent, err := findParentAccountByCode(ctx, tx, companyId, SystemAccountReceivable)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	subLedger := Account{
		CompanyId:       companyId,
		Code:            subLedgerAccountCode(parent.Code),
		Name:            "AR - " + input.Name,
		AccountGroup:    AccountGroupAsset,
		AccountType:     "Accounts Receivable",
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

	customer := Customer{
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
	if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	err = tx.WithContext(ctx).Model(&customer).Updates(map[string]interface{}{
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

	// Renaming the customer renames the linked sub-ledger account.
	if customer.LedgerAccountId > 0 {
		err = tx.WithContext(ctx).Model(&Account{}).
			Where("id = ? AND company_id = ?", customer.LedgerAccountId, companyId).
			UpdateColumn("name", "AR - "+input.Name).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	customer, err := utils.FetchModel[Customer](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&SalesInvoice{}).
		Where("customer_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this customer has invoices")
	}

	if customer.LedgerAccountId > 0 {
		if err := db.WithContext(ctx).Model(&LedgerEntry{}).
			Where("account_id = ?", customer.LedgerAccountId).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("this customer has ledger entries")
		}
	}

	tx := db.Begin()
	if customer.LedgerAccountId > 0 {
		if err := tx.WithContext(ctx).
			Where("company_id = ?", companyId).
			Delete(&Account{}, customer.LedgerAccountId).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.WithContext(ctx).Delete(&customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchModel[Customer](ctx, companyId, id)
}

func GetCustomers(ctx context.Context, name *string) ([]*Customer, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}

	var results []*Customer
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// adjustCustomerBalance keeps the denormalized mirror of the sub-ledger
// account balance in sync, inside the caller's transaction.
func adjustCustomerBalance(ctx context.Context, tx *gorm.DB, companyId string, customerId int, delta decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&Customer{}).
		Where("id = ? AND company_id = ?", customerId, companyId).
		UpdateColumn("current_balance", gorm.Expr("current_balance + ?", delta)).Error
}
