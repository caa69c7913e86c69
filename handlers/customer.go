package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/erp_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateCustomer(c *gin.Context) {
	var input models.NewCustomer
	if !bindJSON(c, &input) {
		return
	}
	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func UpdateCustomer(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewCustomer
	if !bindJSON(c, &input) {
		return
	}
	customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func DeleteCustomer(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	customer, err := models.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func GetCustomer(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func GetCustomers(c *gin.Context) {
	customers, err := models.GetCustomers(c.Request.Context(), queryString(c, "name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func CreateVendor(c *gin.Context) {
	var input models.NewVendor
	if !bindJSON(c, &input) {
		return
	}
	vendor, err := models.CreateVendor(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

func UpdateVendor(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewVendor
	if !bindJSON(c, &input) {
		return
	}
	vendor, err := models.UpdateVendor(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func DeleteVendor(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	vendor, err := models.DeleteVendor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func GetVendor(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	vendor, err := models.GetVendor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func GetVendors(c *gin.Context) {
	vendors, err := models.GetVendors(c.Request.Context(), queryString(c, "name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}
