package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	CompanyId string    `gorm:"index;not null" json:"company_id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email" binding:"required"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('Admin','Staff');default:'Staff';size:10;not null" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func Login(ctx context.Context, input *LoginInput) (*AuthPayload, error) {

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("email = ?", input.Email).Take(&user).Error; err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, errors.New("invalid email or password")
	}

	if user.IsActive == nil || !*user.IsActive {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, user.CompanyId, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &AuthPayload{Token: token, User: &user}, nil
}

func GetCurrentUser(ctx context.Context) (*User, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[User](ctx, companyId, userId)
}
