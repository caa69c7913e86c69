package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/erp_backend/models"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/gin-gonic/gin"
)

func CreateAccount(c *gin.Context) {
	var input models.NewAccount
	if !bindJSON(c, &input) {
		return
	}
	account, err := models.CreateAccount(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func UpdateAccount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewAccount
	if !bindJSON(c, &input) {
		return
	}
	account, err := models.UpdateAccount(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func DeleteAccount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	account, err := models.DeleteAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

type markEnabledInput struct {
	IsEnabled *bool `json:"is_enabled" binding:"required"`
}

func MarkAccountEnabled(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input markEnabledInput
	if !bindJSON(c, &input) {
		return
	}
	account, err := models.MarkAccountEnabled(c.Request.Context(), id, *input.IsEnabled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func GetAccount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	account, err := models.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// GetSystemAccounts exposes the tenant's code => account id map so
// clients can target system accounts without hardcoding ids.
func GetSystemAccounts(c *gin.Context) {
	companyId, ok := utils.GetCompanyIdFromContext(c.Request.Context())
	if !ok || companyId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	accounts, err := models.GetSystemAccounts(companyId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func GetAccounts(c *gin.Context) {
	accounts, err := models.GetAccounts(c.Request.Context(), queryString(c, "name"), queryString(c, "code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}
