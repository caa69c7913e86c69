package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/erp_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateSalesInvoice(c *gin.Context) {
	var input models.NewSalesInvoice
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := models.CreateSalesInvoice(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func MarkSalesInvoiceSent(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.MarkSalesInvoiceSent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func DeleteSalesInvoice(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.DeleteSalesInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func GetSalesInvoice(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.GetSalesInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func GetSalesInvoices(c *gin.Context) {
	var status *models.InvoiceStatus
	if raw := c.Query("status"); raw != "" {
		s := models.InvoiceStatus(raw)
		status = &s
	}
	invoices, err := models.GetSalesInvoices(c.Request.Context(), queryInt(c, "customer_id"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func CreatePurchaseInvoice(c *gin.Context) {
	var input models.NewPurchaseInvoice
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := models.CreatePurchaseInvoice(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func MarkPurchaseInvoiceReceived(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.MarkPurchaseInvoiceReceived(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func DeletePurchaseInvoice(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.DeletePurchaseInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func GetPurchaseInvoice(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.GetPurchaseInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func GetPurchaseInvoices(c *gin.Context) {
	var status *models.InvoiceStatus
	if raw := c.Query("status"); raw != "" {
		s := models.InvoiceStatus(raw)
		status = &s
	}
	invoices, err := models.GetPurchaseInvoices(c.Request.Context(), queryInt(c, "vendor_id"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}
