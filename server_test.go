package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerRoutes(r)
	return r
}

func TestRegisteredRoutes(t *testing.T) {
	registered := make(map[string]bool)
	for _, route := range newTestEngine().Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	want := []string{
		"POST /api/ledgers",
		"GET /api/ledgers/account/:id",
		"GET /api/ledgers/voucher-number",
		"POST /api/sales/invoices",
		"POST /api/sales/payments",
		"POST /api/purchases/invoices",
		"POST /api/purchases/payments",
		"POST /api/journals",
		"GET /api/accounts/:id/statement",
		"POST /api/register",
		"POST /api/login",
		"POST /api/sales-invoices",
		"POST /api/purchase-invoices",
		"POST /api/payment-receipts",
		"POST /api/payment-vouchers",
		"DELETE /api/accounts/:id",
		"GET /api/reports/trial-balance",
	}
	for _, w := range want {
		if !registered[w] {
			t.Errorf("route %s is not registered", w)
		}
	}
}

func TestRequestBodyLimit(t *testing.T) {
	r := newTestEngine()

	// Valid JSON, just over the limit; binding must fail before the
	// handler touches anything.
	body := `{"email":"a@b.c","password":"` + strings.Repeat("a", maxRequestBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized body: status %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "request body too large") {
		t.Errorf("oversized body: response %q does not name the size limit", w.Body.String())
	}
}
