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

type Account struct {
	ID              int             `gorm:"primary_key" json:"id"`
	CompanyId       string          `gorm:"index;not null;uniqueIndex:idx_acc_company_code,priority:1" json:"company_id"`
	Code            string          `gorm:"size:100;not null;uniqueIndex:idx_acc_company_code,priority:2" json:"code"`
	Name            string          `gorm:"index;size:100;not null" json:"name" binding:"required"`
	AccountGroup    AccountGroup    `gorm:"type:enum('ASSET','LIABILITY','EQUITY','INCOME','EXPENSE');default:'EXPENSE';index;size:10;not null" json:"account_group" binding:"required"`
	AccountType     string          `gorm:"size:50" json:"account_type"`
	Description     string          `gorm:"type:text" json:"description"`
	ParentAccountId int             `gorm:"index" json:"parent_account_id"`
	OpeningBalance  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	CurrentBalance  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_balance"`
	IsSystemAccount *bool           `gorm:"not null;default:false" json:"is_system_account"`
	IsEnabled       *bool           `gorm:"not null;default:true" json:"is_enabled"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccount struct {
	Code            string          `json:"code" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	AccountGroup    AccountGroup    `json:"account_group" binding:"required"`
	AccountType     string          `json:"account_type"`
	Description     string          `json:"description"`
	ParentAccountId int             `json:"parent_account_id"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewAccount) validate(ctx context.Context, companyId string, id int) error {
	if id > 0 {
		if id == input.ParentAccountId {
			return errors.New("self-parent not allowed")
		}
		if err := utils.ValidateResourceId[Account](ctx, companyId, id); err != nil {
			return err
		}
	}
	if !input.AccountGroup.IsValid() {
		return errors.New("invalid account group")
	}
	// name
	if err := utils.ValidateUnique[Account](ctx, companyId, "name", input.Name, id); err != nil {
		return err
	}
	// code
	if err := utils.ValidateUnique[Account](ctx, companyId, "code", input.Code, id); err != nil {
		return err
	}

	if input.ParentAccountId > 0 {
		if err := utils.ValidateResourceId[Account](ctx, companyId, input.ParentAccountId); err != nil {
			return errors.New("parent not found")
		}
	}
	return nil
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, 0); err != nil {
		return nil, err
	}

	account := Account{
		CompanyId:       companyId,
		Code:            input.Code,
		Name:            input.Name,
		AccountGroup:    input.AccountGroup,
		AccountType:     input.AccountType,
		Description:     input.Description,
		ParentAccountId: input.ParentAccountId,
		OpeningBalance:  input.OpeningBalance,
		CurrentBalance:  input.OpeningBalance,
		IsSystemAccount: utils.NewFalse(),
		IsEnabled:       utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func UpdateAccount(ctx context.Context, id int, input *NewAccount) (*Account, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	if err := input.validate(ctx, companyId, id); err != nil {
		return nil, err
	}

	account, err := utils.FetchModel[Account](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
	}

	// System accounts keep their code, group and position; only the
	// descriptive fields may change.
	if !*account.IsSystemAccount {
		updates["Code"] = input.Code
		updates["AccountGroup"] = input.AccountGroup
		updates["AccountType"] = input.AccountType
		if input.ParentAccountId > 0 {
			updates["ParentAccountId"] = input.ParentAccountId
		}
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&account).Updates(updates).Error
	if err != nil {
		return nil, err
	}

	return account, nil
}

func MarkAccountEnabled(ctx context.Context, id int, isEnabled bool) (*Account, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	main, err := utils.FetchModel[Account](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	err = markChildAccountsEnabled(tx, ctx, main, isEnabled)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return main, tx.Commit().Error
}

func markChildAccountsEnabled(tx *gorm.DB, ctx context.Context, main *Account, isEnabled bool) error {
	err := tx.WithContext(ctx).Model(&main).Updates(Account{
		IsEnabled: &isEnabled,
	}).Error
	if err != nil {
		return err
	}

	// find & update child accounts
	var children []*Account
	err = tx.WithContext(ctx).Where("parent_account_id = ?", main.ID).Find(&children).Error
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := markChildAccountsEnabled(tx, ctx, child, isEnabled); err != nil {
			return err
		}
	}
	return nil
}

func DeleteAccount(ctx context.Context, id int) (*Account, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	db := config.GetDB()

	result, err := utils.FetchModel[Account](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	if result.IsSystemAccount != nil && *result.IsSystemAccount {
		return nil, errors.New("cannot delete system account")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&Account{}).
		Where("parent_account_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this account has child account(s)")
	}

	if err := db.WithContext(ctx).Model(&LedgerEntry{}).
		Where("account_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this account has ledger entries")
	}

	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func GetAccount(ctx context.Context, id int) (*Account, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	return utils.FetchModel[Account](ctx, companyId, id)
}

func GetAccounts(ctx context.Context, name *string, code *string) ([]*Account, error) {

	db := config.GetDB()
	var results []*Account

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}

	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if code != nil && len(*code) > 0 {
		dbCtx = dbCtx.Where("code LIKE ?", "%"+*code+"%")
	}
	err := dbCtx.Order("code").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetSystemAccounts returns the tenant's code => account id map for
// system accounts, redis-cached.
func GetSystemAccounts(companyId string) (map[string]int, error) {
	var accounts []*Account
	var sysAccounts map[string]int

	exists, err := config.GetRedisObject("SystemAccounts:"+companyId, &sysAccounts)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		if err := db.Select("id", "code").Where("company_id = ?", companyId).
			Where("is_system_account = ?", true).Find(&accounts).Error; err != nil {
			return nil, err
		}
		sysAccounts = make(map[string]int)
		for _, acc := range accounts {
			sysAccounts[acc.Code] = acc.ID
		}
		if err := config.SetRedisObject("SystemAccounts:"+companyId, &sysAccounts, 0); err != nil {
			return nil, err
		}
	}
	return sysAccounts, nil
}

// getAccountForUpdate locks the account row inside tx (scoped to the tenant).
func getAccountForUpdate(ctx context.Context, tx *gorm.DB, companyId string, id int) (*Account, error) {
	var account Account
	err := tx.WithContext(ctx).
		Clauses(forUpdateClause()).
		Where("company_id = ?", companyId).
		First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("account not found")
		}
		return nil, err
	}
	return &account, nil
}
