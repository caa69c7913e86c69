package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/erp_backend/models"
	"github.com/gin-gonic/gin"
)

func CreatePaymentReceipt(c *gin.Context) {
	var input models.NewPaymentReceipt
	if !bindJSON(c, &input) {
		return
	}
	receipt, err := models.CreatePaymentReceipt(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func DeletePaymentReceipt(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	receipt, err := models.DeletePaymentReceipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func GetPaymentReceipt(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	receipt, err := models.GetPaymentReceipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func GetPaymentReceipts(c *gin.Context) {
	receipts, err := models.GetPaymentReceipts(c.Request.Context(), queryInt(c, "customer_id"), queryInt(c, "sales_invoice_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipts)
}

func CreatePaymentVoucher(c *gin.Context) {
	var input models.NewPaymentVoucher
	if !bindJSON(c, &input) {
		return
	}
	voucher, err := models.CreatePaymentVoucher(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, voucher)
}

func DeletePaymentVoucher(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	voucher, err := models.DeletePaymentVoucher(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucher)
}

func GetPaymentVoucher(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	voucher, err := models.GetPaymentVoucher(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucher)
}

func GetPaymentVouchers(c *gin.Context) {
	vouchers, err := models.GetPaymentVouchers(c.Request.Context(), queryInt(c, "vendor_id"), queryInt(c, "purchase_invoice_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vouchers)
}

func GetTrialBalance(c *gin.Context) {
	report, err := models.GetTrialBalance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
