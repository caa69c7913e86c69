package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/handlers"
	"bitbucket.org/mmdatafocus/erp_backend/middlewares"
	"bitbucket.org/mmdatafocus/erp_backend/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// JSON bodies above this size are rejected at bind time.
const maxRequestBodyBytes = 10 << 20

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// customErrorLogger logs only requests that collected errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func registerRoutes(r *gin.Engine) {

	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)
		c.Next()
	})

	api.POST("/register", handlers.RegisterCompany)
	api.POST("/login", handlers.Login)

	auth := api.Group("", middlewares.AuthMiddleware())
	admin := auth.Group("", middlewares.RequireRole(string(models.UserRoleAdmin)))

	auth.GET("/me", handlers.GetCurrentUser)
	auth.GET("/company", handlers.GetCompany)

	auth.GET("/accounts", handlers.GetAccounts)
	auth.GET("/system-accounts", handlers.GetSystemAccounts)
	auth.GET("/accounts/:id", handlers.GetAccount)
	auth.POST("/accounts", handlers.CreateAccount)
	auth.PUT("/accounts/:id", handlers.UpdateAccount)
	auth.PATCH("/accounts/:id/enabled", handlers.MarkAccountEnabled)
	admin.DELETE("/accounts/:id", handlers.DeleteAccount)
	auth.GET("/accounts/:id/statement", handlers.GetAccountStatement)
	auth.GET("/accounts/:id/statement/export", handlers.ExportAccountStatement)

	auth.POST("/ledgers", handlers.CreateJournal)
	auth.GET("/ledgers/account/:id", handlers.GetAccountStatement)
	auth.GET("/ledgers/voucher-number", handlers.PeekDocumentNumber)
	auth.POST("/journals", handlers.CreateJournal)
	auth.GET("/ledger-entries", handlers.GetLedgerEntries)
	auth.GET("/document-numbers/next", handlers.PeekDocumentNumber)

	auth.GET("/customers", handlers.GetCustomers)
	auth.GET("/customers/:id", handlers.GetCustomer)
	auth.POST("/customers", handlers.CreateCustomer)
	auth.PUT("/customers/:id", handlers.UpdateCustomer)
	admin.DELETE("/customers/:id", handlers.DeleteCustomer)

	auth.GET("/vendors", handlers.GetVendors)
	auth.GET("/vendors/:id", handlers.GetVendor)
	auth.POST("/vendors", handlers.CreateVendor)
	auth.PUT("/vendors/:id", handlers.UpdateVendor)
	admin.DELETE("/vendors/:id", handlers.DeleteVendor)

	auth.GET("/products", handlers.GetProducts)
	auth.GET("/products/:id", handlers.GetProduct)
	auth.POST("/products", handlers.CreateProduct)
	auth.PUT("/products/:id", handlers.UpdateProduct)
	admin.DELETE("/products/:id", handlers.DeleteProduct)

	auth.GET("/services", handlers.GetServices)
	auth.GET("/services/:id", handlers.GetService)
	auth.POST("/services", handlers.CreateService)
	auth.PUT("/services/:id", handlers.UpdateService)
	admin.DELETE("/services/:id", handlers.DeleteService)

	auth.GET("/units", handlers.GetUnitOfMeasures)
	auth.POST("/units", handlers.CreateUnitOfMeasure)
	auth.PUT("/units/:id", handlers.UpdateUnitOfMeasure)
	admin.DELETE("/units/:id", handlers.DeleteUnitOfMeasure)

	auth.GET("/warehouses", handlers.GetWarehouses)
	auth.POST("/warehouses", handlers.CreateWarehouse)
	auth.PUT("/warehouses/:id", handlers.UpdateWarehouse)
	admin.DELETE("/warehouses/:id", handlers.DeleteWarehouse)
	auth.GET("/stocks", handlers.GetProductStocks)

	auth.POST("/sales/invoices", handlers.CreateSalesInvoice)
	auth.POST("/sales/payments", handlers.CreatePaymentReceipt)
	auth.POST("/purchases/invoices", handlers.CreatePurchaseInvoice)
	auth.POST("/purchases/payments", handlers.CreatePaymentVoucher)

	auth.GET("/sales-invoices", handlers.GetSalesInvoices)
	auth.GET("/sales-invoices/:id", handlers.GetSalesInvoice)
	auth.POST("/sales-invoices", handlers.CreateSalesInvoice)
	auth.POST("/sales-invoices/:id/send", handlers.MarkSalesInvoiceSent)
	admin.DELETE("/sales-invoices/:id", handlers.DeleteSalesInvoice)

	auth.GET("/purchase-invoices", handlers.GetPurchaseInvoices)
	auth.GET("/purchase-invoices/:id", handlers.GetPurchaseInvoice)
	auth.POST("/purchase-invoices", handlers.CreatePurchaseInvoice)
	auth.POST("/purchase-invoices/:id/receive", handlers.MarkPurchaseInvoiceReceived)
	admin.DELETE("/purchase-invoices/:id", handlers.DeletePurchaseInvoice)

	auth.GET("/payment-receipts", handlers.GetPaymentReceipts)
	auth.GET("/payment-receipts/:id", handlers.GetPaymentReceipt)
	auth.POST("/payment-receipts", handlers.CreatePaymentReceipt)
	admin.DELETE("/payment-receipts/:id", handlers.DeletePaymentReceipt)

	auth.GET("/payment-vouchers", handlers.GetPaymentVouchers)
	auth.GET("/payment-vouchers/:id", handlers.GetPaymentVoucher)
	auth.POST("/payment-vouchers", handlers.CreatePaymentVoucher)
	admin.DELETE("/payment-vouchers/:id", handlers.DeletePaymentVoucher)

	auth.GET("/reports/trial-balance", handlers.GetTrialBalance)
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until the DB is ready, app endpoints return 503.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "X-Correlation-Id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can run DDL that blocks tables; allow running migrations
	// as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	if err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error; err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Warn("failed to set isolation level: " + err.Error())
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/api")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
