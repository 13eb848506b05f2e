package domain

import "time"

// EventKind names the transition that linked an original voucher to a result
// voucher. Events are created once and never mutated.
type EventKind string

const (
	// ReversalForDelete links a voucher to the reversal that logically deleted it.
	ReversalForDelete EventKind = "REVERSAL_FOR_DELETE"
	// ReversalForEdit links a voucher to the reversal created when it was
	// structurally amended; the replacement voucher is a fresh posting.
	ReversalForEdit EventKind = "REVERSAL_FOR_EDIT"
	// Opening marks a carried-forward opening balance voucher.
	Opening EventKind = "OPENING"
	// WriteOff links an open receivable/payable voucher to the voucher whose
	// leg offset it, partially or fully.
	WriteOff EventKind = "WRITE_OFF"
)

// VoucherEvent records one reversal, supersession or write-off transition
// between two vouchers. The associate records produced by the transition hang
// off the event through an AssociateVoucher.
type VoucherEvent struct {
	EventID           string    `json:"eventID"` // Primary Key (e.g., UUID)
	Kind              EventKind `json:"kind"`
	OriginalVoucherID string    `json:"originalVoucherID"`
	ResultVoucherID   string    `json:"resultVoucherID"`
	CreatedAt         time.Time `json:"createdAt"`
	CreatedBy         string    `json:"createdBy"`
}
