package domain

import "github.com/shopspring/decimal"

// AssociateVoucher groups the associate line items produced by a single
// event, tying an original voucher to the result voucher that offset it.
type AssociateVoucher struct {
	AssociateVoucherID string `json:"associateVoucherID"` // Primary Key (e.g., UUID)
	EventID            string `json:"eventID"`            // FK -> VoucherEvent.eventID
	OriginalVoucherID  string `json:"originalVoucherID"`
	ResultVoucherID    string `json:"resultVoucherID"`
	AuditFields
}

// AssociateLineItem records that one line item offsets another: the result
// leg reduces the original leg by Amount, in direction Side. One original leg
// may accumulate several associates over time (partial write-offs), and a
// result leg may itself later be the original of a further offset. The record
// holds back-references only; it carries no authority to mutate either leg.
type AssociateLineItem struct {
	AssociateLineItemID string          `json:"associateLineItemID"` // Primary Key (e.g., UUID)
	AssociateVoucherID  string          `json:"associateVoucherID"`  // FK -> AssociateVoucher
	OriginalLineItemID  string          `json:"originalLineItemID"`  // FK -> LineItem, the leg being offset
	ResultLineItemID    string          `json:"resultLineItemID"`    // FK -> LineItem, the offsetting leg
	Side                EntrySide       `json:"side"`                // Direction of the offsetting leg
	Amount              decimal.Decimal `json:"amount"`              // Portion of the original amount offset
	AuditFields
}
