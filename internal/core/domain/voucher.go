package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide indicates whether a line item is a Debit or a Credit leg.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Opposite returns the mirrored side, used when synthesizing reversal legs.
func (s EntrySide) Opposite() EntrySide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// VoucherStatus is the lifecycle state of a voucher. A voucher is created
// CURRENT; a deletion reverses it to REVERSED; a structural amendment
// reverses it and marks it SUPERSEDED by the replacement voucher. There is no
// transition out of REVERSED or SUPERSEDED.
type VoucherStatus string

const (
	StatusCurrent    VoucherStatus = "CURRENT"
	StatusReversed   VoucherStatus = "REVERSED"
	StatusSuperseded VoucherStatus = "SUPERSEDED"
)

// LineItem represents a single debit or credit leg within a voucher,
// affecting one account. Immutable once the owning voucher is posted; all
// amendment happens through reversal.
type LineItem struct {
	LineItemID string          `json:"lineItemID"` // Primary Key (e.g., UUID)
	VoucherID  string          `json:"voucherID"`  // FK -> Voucher.voucherID (Not Null)
	AccountID  string          `json:"accountID"`  // FK -> Account.accountID (Not Null)
	Side       EntrySide       `json:"side"`       // DEBIT or CREDIT (Not Null)
	Amount     decimal.Decimal `json:"amount"`     // Positive exact decimal
	Memo       string          `json:"memo"`       // Nullable
	AuditFields
}

// Voucher represents a single, balanced double-entry accounting transaction.
// Its line items are never mutated after posting: structural amendment
// produces a reversal voucher plus a fresh replacement voucher.
type Voucher struct {
	VoucherID         string        `json:"voucherID"` // Primary Key (e.g., UUID)
	TenantID          string        `json:"tenantID"`  // FK -> tenants.tenant_id (Not Null)
	VoucherNo         string        `json:"voucherNo"` // Human-facing sequence within the tenant
	VoucherDate       time.Time     `json:"voucherDate"`
	VoucherType       string        `json:"voucherType"` // e.g. GENERAL, RECEIPT, PAYMENT
	Note              string        `json:"note"`
	CurrencyCode      string        `json:"currencyCode"`
	CounterpartyID    *string       `json:"counterpartyID,omitempty"`
	IssuerID          string        `json:"issuerID"`
	Status            VoucherStatus `json:"status"`
	SupersededByID    *string       `json:"supersededByID,omitempty"` // Set when an amendment replaced this voucher
	DeletedAt         *time.Time    `json:"deletedAt,omitempty"`      // Logical deletion marker, row is never erased
	Version           int64         `json:"version"`                  // Monotonic counter, checked-and-incremented per write
	LineItems         []LineItem    `json:"lineItems,omitempty"`
	CertificateIDs    []string      `json:"certificateIDs,omitempty"`    // Attached source documents
	AssetIDs          []string      `json:"assetIDs,omitempty"`          // Linked fixed assets
	ReverseVoucherIDs []string      `json:"reverseVoucherIDs,omitempty"` // Vouchers recorded as reversing this one
	AuditFields
}

// IsReversed reports whether the voucher has already been retired by a
// reversal, through deletion or structural amendment.
func (v *Voucher) IsReversed() bool {
	return v.Status != StatusCurrent || v.DeletedAt != nil
}

// lineItemKey is the structural identity of a leg: account, side and exact
// amount. Amount is keyed by its canonical string form so that 10.0 and 10.00
// compare equal, matching decimal.Equal semantics.
type lineItemKey struct {
	accountID string
	side      EntrySide
	amount    string
}

// StructurallyEqual reports whether two line-item sets are the same multiset
// of (account, side, amount) triples. Order and ids are not significant; a
// mismatch means an amendment must flow through reversal-and-recreate.
func StructurallyEqual(a, b []LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[lineItemKey]int, len(a))
	for _, li := range a {
		counts[keyOf(li)]++
	}
	for _, li := range b {
		k := keyOf(li)
		counts[k]--
		if counts[k] < 0 {
			return false
		}
	}
	return true
}

func keyOf(li LineItem) lineItemKey {
	return lineItemKey{
		accountID: li.AccountID,
		side:      li.Side,
		amount:    li.Amount.String(),
	}
}
