package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/erp_backend/models"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func recordError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)
	return w
}

func TestRespondErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing row", utils.ErrorRecordNotFound, http.StatusNotFound},
		{"wrapped missing invoice", fmt.Errorf("invoice not found: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{"wrapped missing customer", fmt.Errorf("customer not found: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{"business rejection", errors.New("payment exceeds due amount"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		if w := recordError(t, tc.err); w.Code != tc.want {
			t.Errorf("%s: status %d, want %d", tc.name, w.Code, tc.want)
		}
	}
}

func TestRespondErrorUnbalancedEchoesTotals(t *testing.T) {
	err := &models.UnbalancedEntryError{
		TotalDebit:  decimal.NewFromInt(100),
		TotalCredit: decimal.RequireFromString("99.98"),
	}

	w := recordError(t, err)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unbalanced posting: status %d, want %d", w.Code, http.StatusBadRequest)
	}
	body := w.Body.String()
	if !strings.Contains(body, "total_debit") || !strings.Contains(body, "total_credit") {
		t.Errorf("unbalanced posting: response %q is missing the totals", body)
	}
}
