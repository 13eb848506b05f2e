package services

import (
	"context"

	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WriteoffSvcFacade derives the write-off status of line items from the
// persisted associate records. Pure reads, no writes.
type WriteoffSvcFacade interface {
	// IsEligible reports whether the account belongs to the configured
	// receivable/payable code ranges tracked for write-off accounting.
	IsEligible(account *domain.Account) bool

	// OutstandingAmount derives how much of the line item's original amount
	// remains un-offset, given every associate record against it.
	OutstandingAmount(ctx context.Context, lineItem domain.LineItem) (decimal.Decimal, error)

	// IsStillReversible reports whether the line item can still participate
	// in a reversal, i.e. no write-off has been recorded against it.
	IsStillReversible(ctx context.Context, lineItem domain.LineItem) (bool, error)

	// IsClosed evaluates both directions of the associate graph: whether the
	// line item has been fully written off by downstream offsets, and whether
	// its own offsets fully closed the upstream legs it targeted.
	IsClosed(ctx context.Context, lineItem domain.LineItem) (bool, error)
}
