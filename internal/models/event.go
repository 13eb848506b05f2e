package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherEvent is the database representation of a reversal/write-off event.
type VoucherEvent struct {
	EventID           string    `db:"event_id"`
	Kind              string    `db:"kind"`
	OriginalVoucherID string    `db:"original_voucher_id"`
	ResultVoucherID   string    `db:"result_voucher_id"`
	CreatedAt         time.Time `db:"created_at"`
	CreatedBy         string    `db:"created_by"`
}

// AssociateVoucher groups the associate line items of one event.
type AssociateVoucher struct {
	AssociateVoucherID string `db:"associate_voucher_id"`
	EventID            string `db:"event_id"`
	OriginalVoucherID  string `db:"original_voucher_id"`
	ResultVoucherID    string `db:"result_voucher_id"`
	AuditFields
}

// AssociateLineItem records one offsetting relationship between two legs.
type AssociateLineItem struct {
	AssociateLineItemID string          `db:"associate_line_item_id"`
	AssociateVoucherID  string          `db:"associate_voucher_id"`
	OriginalLineItemID  string          `db:"original_line_item_id"`
	ResultLineItemID    string          `db:"result_line_item_id"`
	Side                string          `db:"side"`
	Amount              decimal.Decimal `db:"amount"`
	AuditFields
}
