package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/erp_backend/models"
	"github.com/gin-gonic/gin"
)

func RegisterCompany(c *gin.Context) {
	var input models.NewCompany
	if !bindJSON(c, &input) {
		return
	}
	company, owner, err := models.RegisterCompany(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company, "owner": owner})
}

func Login(c *gin.Context) {
	var input models.LoginInput
	if !bindJSON(c, &input) {
		return
	}
	payload, err := models.Login(c.Request.Context(), &input)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func GetCurrentUser(c *gin.Context) {
	user, err := models.GetCurrentUser(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func GetCompany(c *gin.Context) {
	company, err := models.GetCompany(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
