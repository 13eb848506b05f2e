package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/ledgerkeep/ledgerkeep/internal/apperrors"
	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
	portsrepo "github.com/ledgerkeep/ledgerkeep/internal/core/ports/repositories"
	portssvc "github.com/ledgerkeep/ledgerkeep/internal/core/ports/services"
	"github.com/ledgerkeep/ledgerkeep/internal/middleware"
)

// WriteoffConfig carries the account-code patterns identifying the
// receivable and payable ranges tracked for write-off accounting. The
// patterns come from configuration; the chart of accounts itself does not
// mark eligibility.
type WriteoffConfig struct {
	ReceivablePatterns []string
	PayablePatterns    []string
}

// writeoffService derives outstanding amounts and closure status for line
// items from the persisted associate records. It never creates or mutates
// ledger rows.
type writeoffService struct {
	voucherRepo  portsrepo.VoucherRepositoryFacade
	accountRepo  portsrepo.AccountReader
	receivableRe []*regexp.Regexp
	payableRe    []*regexp.Regexp
}

// NewWriteoffService creates a new write-off calculator. It fails if any
// configured pattern is not a valid regular expression.
func NewWriteoffService(voucherRepo portsrepo.VoucherRepositoryFacade, accountRepo portsrepo.AccountReader, cfg WriteoffConfig) (portssvc.WriteoffSvcFacade, error) {
	compile := func(patterns []string) ([]*regexp.Regexp, error) {
		res := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("invalid write-off account pattern %q: %w", p, err)
			}
			res = append(res, re)
		}
		return res, nil
	}

	receivable, err := compile(cfg.ReceivablePatterns)
	if err != nil {
		return nil, err
	}
	payable, err := compile(cfg.PayablePatterns)
	if err != nil {
		return nil, err
	}

	return &writeoffService{
		voucherRepo:  voucherRepo,
		accountRepo:  accountRepo,
		receivableRe: receivable,
		payableRe:    payable,
	}, nil
}

var _ portssvc.WriteoffSvcFacade = (*writeoffService)(nil)

// IsEligible reports whether the account code falls in a configured
// receivable or payable range. Eligibility is a pure function of the code,
// independent of amounts or history.
func (s *writeoffService) IsEligible(account *domain.Account) bool {
	if account == nil {
		return false
	}
	for _, re := range s.receivableRe {
		if re.MatchString(account.Code) {
			return true
		}
	}
	for _, re := range s.payableRe {
		if re.MatchString(account.Code) {
			return true
		}
	}
	return false
}

// OutstandingAmount derives the un-offset portion of an eligible line item:
// the original amount minus every opposite-side associate amount recorded
// against it. Same-side associates enlarge the exposure rather than reduce
// it and are not treated as write-offs; they are left out of the sum. A
// negative result is an internal consistency fault and is surfaced, never
// clamped.
func (s *writeoffService) OutstandingAmount(ctx context.Context, lineItem domain.LineItem) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, lineItem.AccountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve account for line item %s: %w", lineItem.LineItemID, err)
	}
	if !s.IsEligible(account) {
		return decimal.Zero, fmt.Errorf("%w: account %s is not in a receivable/payable range", apperrors.ErrValidation, account.Code)
	}
	return s.outstanding(ctx, lineItem)
}

// outstanding is the eligibility-free core of OutstandingAmount, shared with
// the closure checks which have already established eligibility.
func (s *writeoffService) outstanding(ctx context.Context, lineItem domain.LineItem) (decimal.Decimal, error) {
	associates, err := s.voucherRepo.FindAssociatesByOriginalLineItem(ctx, lineItem.LineItemID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load associates for line item %s: %w", lineItem.LineItemID, err)
	}

	remaining := lineItem.Amount
	for _, assoc := range associates {
		if assoc.Side != lineItem.Side {
			remaining = remaining.Sub(assoc.Amount)
		}
	}

	if remaining.IsNegative() {
		logger := middleware.GetLoggerFromCtx(ctx)
		logger.Error("outstanding amount went negative",
			"line_item_id", lineItem.LineItemID,
			"original_amount", lineItem.Amount.String(),
			"outstanding", remaining.String(),
		)
		return decimal.Zero, fmt.Errorf("%w: line item %s outstanding amount is %s", apperrors.ErrInvariantViolation, lineItem.LineItemID, remaining.String())
	}
	return remaining, nil
}

// IsStillReversible reports whether the line item may still participate in a
// reversal. Line items outside the receivable/payable ranges carry no
// write-off accounting and are always reversible. Eligible ones are
// reversible only while untouched: a reversal mirrors the leg's full
// amount, and with associate records never deleted, reversing a leg that
// already carries offsets would drive its outstanding amount negative. Once
// any write-off is recorded this returns false permanently.
func (s *writeoffService) IsStillReversible(ctx context.Context, lineItem domain.LineItem) (bool, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, lineItem.AccountID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve account for line item %s: %w", lineItem.LineItemID, err)
	}
	if !s.IsEligible(account) {
		return true, nil
	}
	remaining, err := s.outstanding(ctx, lineItem)
	if err != nil {
		return false, err
	}
	return remaining.Equal(lineItem.Amount), nil
}

// IsClosed evaluates both directions of the associate graph independently.
// "Was I written off" anchors the outstanding calculation at this line item
// as original; "did my write-off close its targets" anchors it at each
// upstream leg this one offsets, after checking the target shares the
// account and that the offset ran opposite to the target's direction. When
// both relations exist, both must be fully closed; when only one exists, it
// alone decides; with neither relation the line item is simply open.
func (s *writeoffService) IsClosed(ctx context.Context, lineItem domain.LineItem) (bool, error) {
	if err := s.checkNoCycle(ctx, lineItem.LineItemID); err != nil {
		return false, err
	}

	downstream, err := s.voucherRepo.FindAssociatesByOriginalLineItem(ctx, lineItem.LineItemID)
	if err != nil {
		return false, fmt.Errorf("failed to load downstream associates for line item %s: %w", lineItem.LineItemID, err)
	}
	upstream, err := s.voucherRepo.FindAssociatesByResultLineItem(ctx, lineItem.LineItemID)
	if err != nil {
		return false, fmt.Errorf("failed to load upstream associates for line item %s: %w", lineItem.LineItemID, err)
	}

	if len(downstream) == 0 && len(upstream) == 0 {
		return false, nil
	}

	if len(downstream) > 0 {
		remaining, err := s.outstanding(ctx, lineItem)
		if err != nil {
			return false, err
		}
		if remaining.IsPositive() {
			return false, nil
		}
	}

	for _, assoc := range upstream {
		target, err := s.voucherRepo.FindLineItemByID(ctx, assoc.OriginalLineItemID)
		if err != nil {
			return false, fmt.Errorf("failed to load target line item %s: %w", assoc.OriginalLineItemID, err)
		}
		if target.AccountID != lineItem.AccountID {
			continue
		}
		if assoc.Side == target.Side {
			// A same-direction record is not a valid write-off; it cannot
			// close the target.
			continue
		}
		remaining, err := s.outstanding(ctx, *target)
		if err != nil {
			return false, err
		}
		if remaining.IsPositive() {
			return false, nil
		}
	}

	return true, nil
}

// checkNoCycle walks the result -> original edges of the associate graph
// from the given line item. The records form a directed graph in which a
// result leg can later become an original leg (multi-hop reversal chains); a
// line item reappearing among its own ancestors means the chain loops, which
// is an internal consistency fault. The walk is iterative over an id-indexed
// frontier so chain depth cannot overflow the stack.
func (s *writeoffService) checkNoCycle(ctx context.Context, lineItemID string) error {
	visited := map[string]struct{}{lineItemID: {}}
	frontier := []string{lineItemID}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		upstream, err := s.voucherRepo.FindAssociatesByResultLineItem(ctx, current)
		if err != nil {
			return fmt.Errorf("failed to walk associate chain from line item %s: %w", current, err)
		}
		for _, assoc := range upstream {
			next := assoc.OriginalLineItemID
			if next == lineItemID {
				logger := middleware.GetLoggerFromCtx(ctx)
				logger.Error("associate chain forms a cycle", "line_item_id", lineItemID)
				return fmt.Errorf("%w: line item %s is its own offset ancestor", apperrors.ErrInvariantViolation, lineItemID)
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			frontier = append(frontier, next)
		}
	}
	return nil
}
