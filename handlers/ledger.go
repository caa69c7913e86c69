package handlers

import (
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateJournal(c *gin.Context) {
	var input models.NewLedgerPosting
	if !bindJSON(c, &input) {
		return
	}
	// Manual journals never carry a caller-chosen voucher number or
	// reference; those belong to document flows.
	input.VoucherNumber = ""
	input.ReferenceType = models.ReferenceTypeJournal
	input.ReferenceId = 0

	entries, err := models.CreateLedgerEntries(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entries)
}

func GetLedgerEntries(c *gin.Context) {
	var referenceType *models.ReferenceType
	if raw := c.Query("reference_type"); raw != "" {
		rt := models.ReferenceType(raw)
		referenceType = &rt
	}
	entries, err := models.GetLedgerEntries(c.Request.Context(), queryString(c, "voucher_number"), referenceType, queryInt(c, "reference_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func parseDateQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &date
}

func GetAccountStatement(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	statement, err := models.GetAccountStatement(c.Request.Context(), id, parseDateQuery(c, "start_date"), parseDateQuery(c, "end_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}

func ExportAccountStatement(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	buffer, filename, err := models.ExportAccountStatementXlsx(c.Request.Context(), id, parseDateQuery(c, "start_date"), parseDateQuery(c, "end_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buffer.Bytes())
}

func PeekDocumentNumber(c *gin.Context) {
	raw := c.Query("type")
	if raw == "" {
		raw = c.Query("doc_type")
	}
	docType, err := models.ParseDocumentType(raw)
	if err != nil {
		respondError(c, err)
		return
	}
	number, err := models.PeekDocumentNumber(c.Request.Context(), docType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voucherNumber": number})
}
