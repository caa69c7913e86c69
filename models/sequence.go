package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/erp_backend/config"
	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/bsm/redislock"
	"gorm.io/gorm"
)

// DocumentSequence reserves sequential document numbers per tenant and
// document type. The reservation is a locked read-increment inside the
// caller's transaction, so two concurrent requests can never hand out the
// same number. Year is 0 for types whose numbers have no year segment.
type DocumentSequence struct {
	ID         int          `gorm:"primary_key" json:"id"`
	CompanyId  string       `gorm:"not null;uniqueIndex:idx_seq_scope,priority:1" json:"company_id"`
	DocType    DocumentType `gorm:"size:30;not null;uniqueIndex:idx_seq_scope,priority:2" json:"doc_type"`
	Year       int          `gorm:"not null;default:0;uniqueIndex:idx_seq_scope,priority:3" json:"year"`
	NextNumber int          `gorm:"not null;default:1" json:"next_number"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func DocumentTypePrefix(docType DocumentType) string {
	switch docType {
	case DocumentTypeJournal:
		return "JV"
	case DocumentTypeSalesInvoice:
		return "INV"
	case DocumentTypePurchaseInvoice:
		return "BILL"
	case DocumentTypePaymentReceipt:
		return "RCPT"
	case DocumentTypePaymentVoucher:
		return "PV"
	}
	return ""
}

// FormatDocumentNumber renders `{PREFIX}-{year}-{n:05d}` for ledger
// vouchers and `{PREFIX}-{n:05d}` for everything else.
func FormatDocumentNumber(docType DocumentType, year int, number int) string {
	prefix := DocumentTypePrefix(docType)
	if docType == DocumentTypeJournal {
		return fmt.Sprintf("%s-%d-%05d", prefix, year, number)
	}
	return fmt.Sprintf("%s-%05d", prefix, number)
}

func sequenceYear(docType DocumentType, year int) int {
	// Only ledger vouchers restart per calendar year.
	if docType == DocumentTypeJournal {
		return year
	}
	return 0
}

// NextDocumentNumber reserves the next number inside tx. The row lock on
// the sequence row is the correctness guarantee; the redis lock around it
// is a best-effort optimization that shortens lock contention windows and
// must never be relied on.
func NextDocumentNumber(ctx context.Context, tx *gorm.DB, companyId string, docType DocumentType, year int) (string, error) {

	year = sequenceYear(docType, year)

	if locker := config.GetRedisLock(); locker != nil {
		lockKey := fmt.Sprintf("seq:%s:%s:%d", companyId, docType, year)
		if lock, err := locker.Obtain(ctx, lockKey, 3*time.Second, nil); err == nil {
			defer lock.Release(ctx)
		} else if err != redislock.ErrNotObtained {
			config.LogError(config.GetLogger(), "sequence.go", "NextDocumentNumber", "redislock.Obtain", lockKey, err)
		}
	}

	var seq DocumentSequence
	err := tx.WithContext(ctx).
		Clauses(forUpdateClause()).
		Where("company_id = ? AND doc_type = ? AND year = ?", companyId, docType, year).
		First(&seq).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		seq = DocumentSequence{
			CompanyId:  companyId,
			DocType:    docType,
			Year:       year,
			NextNumber: 1,
		}
		if err := tx.WithContext(ctx).Create(&seq).Error; err != nil {
			return "", err
		}
	}

	number := seq.NextNumber
	if err := tx.WithContext(ctx).Model(&DocumentSequence{}).
		Where("id = ?", seq.ID).
		UpdateColumn("next_number", gorm.Expr("next_number + 1")).Error; err != nil {
		return "", err
	}

	return FormatDocumentNumber(docType, year, number), nil
}

// PeekDocumentNumber previews the next number without reserving it.
func PeekDocumentNumber(ctx context.Context, docType DocumentType) (string, error) {

	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return "", errors.New("company id is required")
	}

	year := sequenceYear(docType, time.Now().UTC().Year())

	db := config.GetDB()
	var seq DocumentSequence
	err := db.WithContext(ctx).
		Where("company_id = ? AND doc_type = ? AND year = ?", companyId, docType, year).
		First(&seq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FormatDocumentNumber(docType, year, 1), nil
		}
		return "", err
	}
	return FormatDocumentNumber(docType, year, seq.NextNumber), nil
}
