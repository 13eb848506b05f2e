package repositories

import (
	"context"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
)

// VoucherReader defines read operations for voucher data
type VoucherReader interface {
	// FindVoucherByID retrieves a voucher header including its certificate and
	// asset links, without line items.
	FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// FindLineItemsByVoucherID retrieves all line items belonging to a voucher.
	FindLineItemsByVoucherID(ctx context.Context, voucherID string) ([]domain.LineItem, error)

	// FindLineItemByID retrieves a single line item.
	FindLineItemByID(ctx context.Context, lineItemID string) (*domain.LineItem, error)

	// ListVouchersByTenant retrieves a paginated list of vouchers for a tenant
	// using token-based pagination. Reversal vouchers are excluded unless
	// includeReversals is set.
	ListVouchersByTenant(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversals bool) ([]domain.Voucher, *string, error)
}

// AssociateReader defines read operations over the reversal ledger
type AssociateReader interface {
	// FindAssociatesByOriginalLineItem retrieves every associate record whose
	// original side is the given line item (i.e. the offsets applied to it).
	FindAssociatesByOriginalLineItem(ctx context.Context, lineItemID string) ([]domain.AssociateLineItem, error)

	// FindAssociatesByResultLineItem retrieves every associate record whose
	// result side is the given line item (i.e. the legs it offset upstream).
	FindAssociatesByResultLineItem(ctx context.Context, lineItemID string) ([]domain.AssociateLineItem, error)

	// FindEventByID retrieves a voucher event.
	FindEventByID(ctx context.Context, eventID string) (*domain.VoucherEvent, error)
}

// VoucherWrite bundles a voucher header with its line items for insertion.
type VoucherWrite struct {
	Voucher   domain.Voucher
	LineItems []domain.LineItem
}

// ReversalWrite is the all-or-nothing write set produced by a deletion or a
// structural amendment: the reversal voucher with its sign-flipped legs, the
// event, the associate records, the original's state transition and, for
// amendments, the replacement voucher. ExpectedVersion is the original
// voucher version read before deciding; a mismatch at write time must fail
// the whole set with a conflict.
type ReversalWrite struct {
	OriginalVoucherID string
	ExpectedVersion   int64
	NewStatus         domain.VoucherStatus
	DeletedAt         *time.Time
	SupersededByID    *string

	Reversal           VoucherWrite
	Event              domain.VoucherEvent
	AssociateVoucher   domain.AssociateVoucher
	AssociateLineItems []domain.AssociateLineItem

	// Replacement is nil for deletions.
	Replacement *VoucherWrite

	UpdatedBy string
	UpdatedAt time.Time
}

// VoucherLinksUpdate is the atomic partial update applied on a non-structural
// amendment. Only the link differences travel; the voucher identity and its
// line items are untouched.
type VoucherLinksUpdate struct {
	VoucherID       string
	ExpectedVersion int64

	Note              *string
	VoucherDate       *time.Time
	CounterpartyID    *string
	ClearCounterparty bool

	CertificateIDsToAdd    []string
	CertificateIDsToRemove []string
	AssetIDsToAdd          []string
	AssetIDsToRemove       []string

	// Inbound reverse-voucher relationships: vouchers recorded as reversing
	// this one. Pairs are (reversedVoucherID, thisVoucherID).
	ReverseVoucherIDsToAdd    []string
	ReverseVoucherIDsToRemove []string

	UpdatedBy string
	UpdatedAt time.Time
}

// WriteOffWrite is the all-or-nothing write set for applying an offset
// against an open receivable/payable leg.
type WriteOffWrite struct {
	OriginalVoucherID string
	ExpectedVersion   int64

	Event              domain.VoucherEvent
	AssociateVoucher   domain.AssociateVoucher
	AssociateLineItems []domain.AssociateLineItem

	UpdatedBy string
	UpdatedAt time.Time
}

// VoucherWriter defines write operations for voucher data
type VoucherWriter interface {
	// SaveVoucher persists a new voucher and its line items atomically.
	SaveVoucher(ctx context.Context, write VoucherWrite) error

	// SaveReversal executes the reversal write set in one transaction.
	SaveReversal(ctx context.Context, write ReversalWrite) error

	// UpdateVoucherLinks applies a non-structural link update in one transaction.
	UpdateVoucherLinks(ctx context.Context, update VoucherLinksUpdate) error

	// SaveWriteOff executes the write-off write set in one transaction.
	SaveWriteOff(ctx context.Context, write WriteOffWrite) error
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
	AssociateReader
}

// VoucherRepositoryWithTx extends VoucherRepositoryFacade with transaction capabilities
type VoucherRepositoryWithTx interface {
	VoucherRepositoryFacade
	TransactionManager
}
