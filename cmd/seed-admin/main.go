// seed-admin provisions a demo tenant with its owner user and the
// default chart of accounts. Intended for dev and staging databases.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/models"
)

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "changeme123"
	ownerName     = "Demo Owner"
	companyName   = "Demo Trading Co."
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", ownerEmail).Count(&count).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
		os.Exit(1)
	}
	if count > 0 {
		fmt.Println("seed owner already exists:", ownerEmail)
		return
	}

	company, owner, err := models.RegisterCompany(ctx, &models.NewCompany{
		Name:      companyName,
		Email:     ownerEmail,
		OwnerName: ownerName,
		Password:  ownerPassword,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed tenant: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("seeded company:", company.ID, company.Name)
	fmt.Println("owner login:", owner.Email)
}
