package models

import (
	"errors"
)

type AccountGroup string

const (
	AccountGroupAsset     AccountGroup = "ASSET"
	AccountGroupLiability AccountGroup = "LIABILITY"
	AccountGroupEquity    AccountGroup = "EQUITY"
	AccountGroupIncome    AccountGroup = "INCOME"
	AccountGroupExpense   AccountGroup = "EXPENSE"
)

func (g AccountGroup) IsValid() bool {
	switch g {
	case AccountGroupAsset, AccountGroupLiability, AccountGroupEquity,
		AccountGroupIncome, AccountGroupExpense:
		return true
	}
	return false
}

type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

func (t EntryType) IsValid() bool {
	return t == EntryTypeDebit || t == EntryTypeCredit
}

// ReferenceType links a ledger entry back to the document that produced it.
type ReferenceType string

const (
	ReferenceTypeJournal         ReferenceType = "JN"
	ReferenceTypeSalesInvoice    ReferenceType = "IV"
	ReferenceTypePurchaseInvoice ReferenceType = "BL"
	ReferenceTypePaymentReceipt  ReferenceType = "CP"
	ReferenceTypePaymentVoucher  ReferenceType = "SP"
	ReferenceTypeOpeningBalance  ReferenceType = "OB"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusReceived      InvoiceStatus = "RECEIVED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	// InvoiceStatusOverdue is derived at read time from dueDate and dueAmount.
	// It is never stored.
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCard         PaymentMethod = "CARD"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodCard:
		return true
	}
	return false
}

// DocumentType identifies a per-tenant number sequence.
type DocumentType string

const (
	DocumentTypeJournal         DocumentType = "JOURNAL"
	DocumentTypeSalesInvoice    DocumentType = "SALES_INVOICE"
	DocumentTypePurchaseInvoice DocumentType = "PURCHASE_INVOICE"
	DocumentTypePaymentReceipt  DocumentType = "PAYMENT_RECEIPT"
	DocumentTypePaymentVoucher  DocumentType = "PAYMENT_VOUCHER"
)

func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocumentTypeJournal, DocumentTypeSalesInvoice, DocumentTypePurchaseInvoice,
		DocumentTypePaymentReceipt, DocumentTypePaymentVoucher:
		return DocumentType(s), nil
	}
	return "", errors.New("invalid document type")
}

type UserRole string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleStaff UserRole = "Staff"
)
