package models

import (
	"log"

	"bitbucket.org/mmdatafocus/erp_backend/config"
)

func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&Company{},
		&User{},
		&Account{},
		&LedgerEntry{},
		&DocumentSequence{},
		&Customer{},
		&Vendor{},
		&UnitOfMeasure{},
		&Product{},
		&Service{},
		&Warehouse{},
		&ProductStock{},
		&SalesInvoice{},
		&SalesInvoiceItem{},
		&PurchaseInvoice{},
		&PurchaseInvoiceItem{},
		&PaymentReceipt{},
		&PaymentVoucher{},
	)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}
