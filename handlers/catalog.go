package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/erp_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateProduct(c *gin.Context) {
	var input models.NewProduct
	if !bindJSON(c, &input) {
		return
	}
	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func UpdateProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewProduct
	if !bindJSON(c, &input) {
		return
	}
	product, err := models.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func DeleteProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func GetProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func GetProducts(c *gin.Context) {
	products, err := models.GetProducts(c.Request.Context(), queryString(c, "name"), queryString(c, "sku"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func CreateService(c *gin.Context) {
	var input models.NewService
	if !bindJSON(c, &input) {
		return
	}
	service, err := models.CreateService(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service)
}

func UpdateService(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewService
	if !bindJSON(c, &input) {
		return
	}
	service, err := models.UpdateService(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func DeleteService(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	service, err := models.DeleteService(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func GetService(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	service, err := models.GetService(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func GetServices(c *gin.Context) {
	services, err := models.GetServices(c.Request.Context(), queryString(c, "name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

func CreateUnitOfMeasure(c *gin.Context) {
	var input models.NewUnitOfMeasure
	if !bindJSON(c, &input) {
		return
	}
	unit, err := models.CreateUnitOfMeasure(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

func UpdateUnitOfMeasure(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewUnitOfMeasure
	if !bindJSON(c, &input) {
		return
	}
	unit, err := models.UpdateUnitOfMeasure(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

func DeleteUnitOfMeasure(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	unit, err := models.DeleteUnitOfMeasure(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

func GetUnitOfMeasures(c *gin.Context) {
	units, err := models.GetUnitOfMeasures(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

func CreateWarehouse(c *gin.Context) {
	var input models.NewWarehouse
	if !bindJSON(c, &input) {
		return
	}
	warehouse, err := models.CreateWarehouse(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, warehouse)
}

func UpdateWarehouse(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewWarehouse
	if !bindJSON(c, &input) {
		return
	}
	warehouse, err := models.UpdateWarehouse(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, warehouse)
}

func DeleteWarehouse(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	warehouse, err := models.DeleteWarehouse(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, warehouse)
}

func GetWarehouses(c *gin.Context) {
	warehouses, err := models.GetWarehouses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, warehouses)
}

func GetProductStocks(c *gin.Context) {
	stocks, err := models.GetProductStocks(c.Request.Context(), queryInt(c, "product_id"), queryInt(c, "warehouse_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}
