package models

import (
	"time"

	"gorm.io/gorm/clause"
)

func forUpdateClause() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// calculateDueDate derives an invoice due date from the party's credit
// terms when the caller did not supply one.
func calculateDueDate(date time.Time, creditDays int) time.Time {
	if creditDays <= 0 {
		return date
	}
	return date.AddDate(0, 0, creditDays)
}
