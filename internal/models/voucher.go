package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus mirrors domain.VoucherStatus for persistence.
type VoucherStatus string

// Voucher is the database representation of a voucher header.
type Voucher struct {
	VoucherID      string        `db:"voucher_id"`
	TenantID       string        `db:"tenant_id"`
	VoucherNo      string        `db:"voucher_no"`
	VoucherDate    time.Time     `db:"voucher_date"`
	VoucherType    string        `db:"voucher_type"`
	Note           string        `db:"note"`
	CurrencyCode   string        `db:"currency_code"`
	CounterpartyID *string       `db:"counterparty_id"`
	IssuerID       string        `db:"issuer_id"`
	Status         VoucherStatus `db:"status"`
	SupersededByID *string       `db:"superseded_by_id"`
	DeletedAt      *time.Time    `db:"deleted_at"`
	Version        int64         `db:"version"`
	AuditFields
}

// LineItem is the database representation of one voucher leg.
type LineItem struct {
	LineItemID string          `db:"line_item_id"`
	VoucherID  string          `db:"voucher_id"`
	AccountID  string          `db:"account_id"`
	Side       string          `db:"side"`
	Amount     decimal.Decimal `db:"amount"`
	Memo       string          `db:"memo"`
	AuditFields
}
