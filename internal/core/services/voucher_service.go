package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkeep/ledgerkeep/internal/apperrors"
	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
	portsrepo "github.com/ledgerkeep/ledgerkeep/internal/core/ports/repositories"
	portssvc "github.com/ledgerkeep/ledgerkeep/internal/core/ports/services"
	"github.com/ledgerkeep/ledgerkeep/internal/dto"
	"github.com/ledgerkeep/ledgerkeep/internal/middleware"
)

// voucherService implements the voucher ledger state machine: posting,
// amendment via reversal, logical deletion and write-off recording. Every
// multi-row outcome is handed to the repository as one all-or-nothing write
// set.
type voucherService struct {
	voucherRepo   portsrepo.VoucherRepositoryWithTx
	accountSvc    portssvc.AccountSvcFacade
	referenceRepo portsrepo.ReferenceReader
	writeoffSvc   portssvc.WriteoffSvcFacade
}

// NewVoucherService creates a new VoucherService.
func NewVoucherService(voucherRepo portsrepo.VoucherRepositoryWithTx, accountSvc portssvc.AccountSvcFacade, referenceRepo portsrepo.ReferenceReader, writeoffSvc portssvc.WriteoffSvcFacade) portssvc.VoucherSvcFacade {
	return &voucherService{
		voucherRepo:   voucherRepo,
		accountSvc:    accountSvc,
		referenceRepo: referenceRepo,
		writeoffSvc:   writeoffSvc,
	}
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// validateLineItems checks a requested line-item set independently of any
// existing voucher: it must be non-empty, every amount positive, every
// account resolvable, active and inside the tenant, and the debit and credit
// sides must sum to the same exact amount.
func (s *voucherService) validateLineItems(ctx context.Context, tenantID string, items []dto.LineItemRequest) error {
	if len(items) == 0 {
		return apperrors.ErrMissingLineItems
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero
	accountIDs := make([]string, 0, len(items))
	for _, item := range items {
		if item.AccountID == "" {
			return fmt.Errorf("%w: line item is missing an account reference", apperrors.ErrMissingLineItems)
		}
		if item.Side != domain.Debit && item.Side != domain.Credit {
			return fmt.Errorf("%w: line item side must be DEBIT or CREDIT", apperrors.ErrValidation)
		}
		if item.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: line item amount must be positive for account %s", apperrors.ErrValidation, item.AccountID)
		}
		if item.Side == domain.Debit {
			debitsSum = debitsSum.Add(item.Amount)
		} else {
			creditsSum = creditsSum.Add(item.Amount)
		}
		accountIDs = append(accountIDs, item.AccountID)
	}

	if !debitsSum.Equal(creditsSum) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalanced, debitsSum.String(), creditsSum.String())
	}

	accountsMap, err := s.accountSvc.GetAccountByIDs(ctx, tenantID, uniqueStrings(accountIDs))
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range uniqueStrings(accountIDs) {
		acc, found := accountsMap[id]
		if !found {
			return fmt.Errorf("%w: account %s", apperrors.ErrDanglingReference, id)
		}
		if acc.TenantID != tenantID {
			return fmt.Errorf("%w: account %s does not belong to tenant %s", apperrors.ErrDanglingReference, id, tenantID)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrDanglingReference, id)
		}
	}
	return nil
}

// validateLinks checks the external references a voucher may carry.
func (s *voucherService) validateLinks(ctx context.Context, tenantID string, counterpartyID *string, certificateIDs, assetIDs []string) error {
	if counterpartyID != nil && *counterpartyID != "" {
		exists, err := s.referenceRepo.CounterpartyExists(ctx, tenantID, *counterpartyID)
		if err != nil {
			return fmt.Errorf("failed to resolve counterparty %s: %w", *counterpartyID, err)
		}
		if !exists {
			return fmt.Errorf("%w: counterparty %s", apperrors.ErrDanglingReference, *counterpartyID)
		}
	}
	if len(certificateIDs) > 0 {
		missing, err := s.referenceRepo.MissingCertificateIDs(ctx, tenantID, certificateIDs)
		if err != nil {
			return fmt.Errorf("failed to resolve certificates: %w", err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: certificates %v", apperrors.ErrDanglingReference, missing)
		}
	}
	if len(assetIDs) > 0 {
		missing, err := s.referenceRepo.MissingAssetIDs(ctx, tenantID, assetIDs)
		if err != nil {
			return fmt.Errorf("failed to resolve assets: %w", err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: assets %v", apperrors.ErrDanglingReference, missing)
		}
	}
	return nil
}

// buildLineItems materializes domain line items for a new voucher.
func buildLineItems(voucherID string, items []dto.LineItemRequest, userID string, now time.Time) []domain.LineItem {
	lineItems := make([]domain.LineItem, len(items))
	for i, item := range items {
		lineItems[i] = domain.LineItem{
			LineItemID:  uuid.NewString(),
			VoucherID:   voucherID,
			AccountID:   item.AccountID,
			Side:        item.Side,
			Amount:      item.Amount,
			Memo:        item.Memo,
			AuditFields: domain.NewAuditFields(userID, now),
		}
	}
	return lineItems
}

// requestedAsDomain converts requested line items into bare domain legs for
// the structural-equality check. Ids are irrelevant to structural identity.
func requestedAsDomain(items []dto.LineItemRequest) []domain.LineItem {
	lineItems := make([]domain.LineItem, len(items))
	for i, item := range items {
		lineItems[i] = domain.LineItem{
			AccountID: item.AccountID,
			Side:      item.Side,
			Amount:    item.Amount,
		}
	}
	return lineItems
}

// PostVoucher validates and persists a new voucher with its line items.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) PostVoucher(ctx context.Context, tenantID string, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.validateLineItems(ctx, tenantID, req.LineItems); err != nil {
		return nil, err
	}
	if err := s.validateLinks(ctx, tenantID, req.CounterpartyID, req.CertificateIDs, req.AssetIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	voucherID := uuid.NewString()

	voucher := domain.Voucher{
		VoucherID:      voucherID,
		TenantID:       tenantID,
		VoucherNo:      req.VoucherNo,
		VoucherDate:    req.Date,
		VoucherType:    req.VoucherType,
		Note:           req.Note,
		CurrencyCode:   req.CurrencyCode,
		CounterpartyID: req.CounterpartyID,
		IssuerID:       creatorUserID,
		Status:         domain.StatusCurrent,
		Version:        1,
		CertificateIDs: req.CertificateIDs,
		AssetIDs:       req.AssetIDs,
		AuditFields:    domain.NewAuditFields(creatorUserID, now),
	}
	lineItems := buildLineItems(voucherID, req.LineItems, creatorUserID, now)

	if err := s.voucherRepo.SaveVoucher(ctx, portsrepo.VoucherWrite{Voucher: voucher, LineItems: lineItems}); err != nil {
		logger.Error("Failed to save voucher", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save voucher: %w", err)
	}

	logger.Info("Voucher posted successfully", slog.String("voucher_id", voucherID), slog.String("tenant_id", tenantID))
	voucher.LineItems = lineItems
	return &voucher, nil
}

// GetVoucherByID retrieves a voucher with its line items.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) GetVoucherByID(ctx context.Context, tenantID string, voucherID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find voucher by ID", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		}
		return nil, fmt.Errorf("failed to find voucher by ID %s: %w", voucherID, err)
	}
	if voucher.TenantID != tenantID {
		// Obscure existence across tenants
		return nil, apperrors.ErrNotFound
	}

	lineItems, err := s.voucherRepo.FindLineItemsByVoucherID(ctx, voucherID)
	if err != nil {
		logger.Error("Failed to fetch line items for voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to retrieve line items for voucher %s: %w", voucherID, apperrors.ErrInternal)
	}
	voucher.LineItems = lineItems

	return voucher, nil
}

// ListVouchers retrieves a paginated list of vouchers for a tenant.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) ListVouchers(ctx context.Context, tenantID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	vouchers, nextToken, err := s.voucherRepo.ListVouchersByTenant(ctx, tenantID, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		logger.Error("Failed to list vouchers from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve vouchers: %w", err)
	}

	responses := make([]dto.VoucherResponse, len(vouchers))
	for i := range vouchers {
		if params.IncludeLineItems {
			lineItems, err := s.voucherRepo.FindLineItemsByVoucherID(ctx, vouchers[i].VoucherID)
			if err != nil {
				logger.Warn("Failed to fetch line items for voucher listing", "error", err, "voucher_id", vouchers[i].VoucherID)
			} else {
				vouchers[i].LineItems = lineItems
			}
		}
		responses[i] = dto.ToVoucherResponse(&vouchers[i])
	}

	return &dto.ListVouchersResponse{Vouchers: responses, NextToken: nextToken}, nil
}

// GetLineItem retrieves a single line item, scoped to the tenant via its
// parent voucher.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) GetLineItem(ctx context.Context, tenantID string, lineItemID string) (*domain.LineItem, error) {
	lineItem, err := s.voucherRepo.FindLineItemByID(ctx, lineItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to find line item %s: %w", lineItemID, err)
	}
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, lineItem.VoucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to find voucher for line item %s: %w", lineItemID, err)
	}
	if voucher.TenantID != tenantID {
		// Obscure existence across tenants
		return nil, apperrors.ErrNotFound
	}
	return lineItem, nil
}

// AmendVoucher applies a requested change to a voucher. When the requested
// line items are structurally equal to the persisted ones the change is a
// link-only update applied in place; otherwise the voucher is reversed and a
// fresh replacement is posted.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) AmendVoucher(ctx context.Context, tenantID string, voucherID string, req dto.AmendVoucherRequest, userID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	voucher, err := s.GetVoucherByID(ctx, tenantID, voucherID)
	if err != nil {
		return nil, err
	}

	if voucher.IsReversed() {
		return nil, fmt.Errorf("%w: voucher %s", apperrors.ErrAlreadyReversed, voucherID)
	}

	if domain.StructurallyEqual(voucher.LineItems, requestedAsDomain(req.LineItems)) {
		return s.amendLinks(ctx, tenantID, voucher, req, userID)
	}

	// Structural change: reverse and recreate.
	if err := s.ensureLineItemsReversible(ctx, voucher.LineItems); err != nil {
		return nil, err
	}
	if err := s.validateLineItems(ctx, tenantID, req.LineItems); err != nil {
		return nil, err
	}

	counterpartyID := voucher.CounterpartyID
	if req.ClearCounterparty {
		counterpartyID = nil
	} else if req.CounterpartyID != nil {
		counterpartyID = req.CounterpartyID
	}
	certificateIDs := voucher.CertificateIDs
	if req.CertificateIDs != nil {
		certificateIDs = *req.CertificateIDs
	}
	assetIDs := voucher.AssetIDs
	if req.AssetIDs != nil {
		assetIDs = *req.AssetIDs
	}
	if err := s.validateLinks(ctx, tenantID, counterpartyID, certificateIDs, assetIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversal, associates := s.buildReversal(voucher, userID, now)

	event := domain.VoucherEvent{
		EventID:           uuid.NewString(),
		Kind:              domain.ReversalForEdit,
		OriginalVoucherID: voucher.VoucherID,
		ResultVoucherID:   reversal.Voucher.VoucherID,
		CreatedAt:         now,
		CreatedBy:         userID,
	}
	associateVoucher := domain.AssociateVoucher{
		AssociateVoucherID: uuid.NewString(),
		EventID:            event.EventID,
		OriginalVoucherID:  voucher.VoucherID,
		ResultVoucherID:    reversal.Voucher.VoucherID,
		AuditFields:        domain.NewAuditFields(userID, now),
	}
	for i := range associates {
		associates[i].AssociateVoucherID = associateVoucher.AssociateVoucherID
	}

	// The replacement is a fresh posting, unrelated in storage identity to
	// the original.
	replacementID := uuid.NewString()
	voucherDate := voucher.VoucherDate
	if req.Date != nil {
		voucherDate = *req.Date
	}
	note := voucher.Note
	if req.Note != nil {
		note = *req.Note
	}
	replacement := domain.Voucher{
		VoucherID:      replacementID,
		TenantID:       tenantID,
		VoucherNo:      voucher.VoucherNo,
		VoucherDate:    voucherDate,
		VoucherType:    voucher.VoucherType,
		Note:           note,
		CurrencyCode:   voucher.CurrencyCode,
		CounterpartyID: counterpartyID,
		IssuerID:       userID,
		Status:         domain.StatusCurrent,
		Version:        1,
		CertificateIDs: certificateIDs,
		AssetIDs:       assetIDs,
		AuditFields:    domain.NewAuditFields(userID, now),
	}
	replacementLineItems := buildLineItems(replacementID, req.LineItems, userID, now)

	write := portsrepo.ReversalWrite{
		OriginalVoucherID:  voucher.VoucherID,
		ExpectedVersion:    voucher.Version,
		NewStatus:          domain.StatusSuperseded,
		SupersededByID:     &replacementID,
		Reversal:           reversal,
		Event:              event,
		AssociateVoucher:   associateVoucher,
		AssociateLineItems: associates,
		Replacement:        &portsrepo.VoucherWrite{Voucher: replacement, LineItems: replacementLineItems},
		UpdatedBy:          userID,
		UpdatedAt:          now,
	}
	if err := s.voucherRepo.SaveReversal(ctx, write); err != nil {
		logger.Error("Failed to save amendment reversal", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to save amendment: %w", err)
	}

	logger.Info("Voucher amended via reversal",
		slog.String("original_voucher_id", voucher.VoucherID),
		slog.String("reversal_voucher_id", reversal.Voucher.VoucherID),
		slog.String("replacement_voucher_id", replacementID),
	)
	replacement.LineItems = replacementLineItems
	return &replacement, nil
}

// amendLinks applies a non-structural amendment: the symmetric differences
// of certificates, assets and reverse-voucher links, plus counterparty, note
// and date, as one atomic partial update. The voucher identity and its line
// items are untouched.
func (s *voucherService) amendLinks(ctx context.Context, tenantID string, voucher *domain.Voucher, req dto.AmendVoucherRequest, userID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	update := portsrepo.VoucherLinksUpdate{
		VoucherID:       voucher.VoucherID,
		ExpectedVersion: voucher.Version,
		Note:            req.Note,
		VoucherDate:     req.Date,
		UpdatedBy:       userID,
		UpdatedAt:       time.Now().UTC(),
	}

	if req.ClearCounterparty {
		update.ClearCounterparty = true
	} else if req.CounterpartyID != nil {
		update.CounterpartyID = req.CounterpartyID
	}

	var wantCertificates, wantAssets []string
	if req.CertificateIDs != nil {
		wantCertificates = *req.CertificateIDs
		update.CertificateIDsToAdd, update.CertificateIDsToRemove = diffIDs(voucher.CertificateIDs, wantCertificates)
	}
	if req.AssetIDs != nil {
		wantAssets = *req.AssetIDs
		update.AssetIDsToAdd, update.AssetIDsToRemove = diffIDs(voucher.AssetIDs, wantAssets)
	}
	if req.ReverseVoucherIDs != nil {
		update.ReverseVoucherIDsToAdd, update.ReverseVoucherIDsToRemove = diffIDs(voucher.ReverseVoucherIDs, *req.ReverseVoucherIDs)
	}

	if err := s.validateLinks(ctx, tenantID, update.CounterpartyID, update.CertificateIDsToAdd, update.AssetIDsToAdd); err != nil {
		return nil, err
	}
	if len(update.ReverseVoucherIDsToAdd) > 0 {
		missing, err := s.referenceRepo.MissingVoucherIDs(ctx, tenantID, update.ReverseVoucherIDsToAdd)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reverse vouchers: %w", err)
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: reverse vouchers %v", apperrors.ErrDanglingReference, missing)
		}
	}

	if err := s.voucherRepo.UpdateVoucherLinks(ctx, update); err != nil {
		logger.Error("Failed to update voucher links", slog.String("error", err.Error()), slog.String("voucher_id", voucher.VoucherID))
		return nil, fmt.Errorf("failed to update voucher links: %w", err)
	}

	logger.Info("Voucher links updated in place", slog.String("voucher_id", voucher.VoucherID))
	return s.GetVoucherByID(ctx, tenantID, voucher.VoucherID)
}

// DeleteVoucher logically deletes a voucher: it posts a reversal voucher
// whose legs mirror the original's, records the event and associate rows and
// marks the original REVERSED with a deletion timestamp. The original row is
// never erased. A voucher may be reversed at most once.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) DeleteVoucher(ctx context.Context, tenantID string, voucherID string, userID string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	voucher, err := s.GetVoucherByID(ctx, tenantID, voucherID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: voucher %s", apperrors.ErrDanglingReference, voucherID)
		}
		return "", err
	}
	if voucher.IsReversed() {
		return "", fmt.Errorf("%w: voucher %s", apperrors.ErrAlreadyReversed, voucherID)
	}
	if err := s.ensureLineItemsReversible(ctx, voucher.LineItems); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	reversal, associates := s.buildReversal(voucher, userID, now)

	event := domain.VoucherEvent{
		EventID:           uuid.NewString(),
		Kind:              domain.ReversalForDelete,
		OriginalVoucherID: voucher.VoucherID,
		ResultVoucherID:   reversal.Voucher.VoucherID,
		CreatedAt:         now,
		CreatedBy:         userID,
	}
	associateVoucher := domain.AssociateVoucher{
		AssociateVoucherID: uuid.NewString(),
		EventID:            event.EventID,
		OriginalVoucherID:  voucher.VoucherID,
		ResultVoucherID:    reversal.Voucher.VoucherID,
		AuditFields:        domain.NewAuditFields(userID, now),
	}
	for i := range associates {
		associates[i].AssociateVoucherID = associateVoucher.AssociateVoucherID
	}

	deletedAt := now
	write := portsrepo.ReversalWrite{
		OriginalVoucherID:  voucher.VoucherID,
		ExpectedVersion:    voucher.Version,
		NewStatus:          domain.StatusReversed,
		DeletedAt:          &deletedAt,
		Reversal:           reversal,
		Event:              event,
		AssociateVoucher:   associateVoucher,
		AssociateLineItems: associates,
		UpdatedBy:          userID,
		UpdatedAt:          now,
	}
	if err := s.voucherRepo.SaveReversal(ctx, write); err != nil {
		logger.Error("Failed to save deletion reversal", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return "", fmt.Errorf("failed to delete voucher: %w", err)
	}

	logger.Info("Voucher deleted via reversal",
		slog.String("voucher_id", voucherID),
		slog.String("reversal_voucher_id", reversal.Voucher.VoucherID),
		slog.String("event_id", event.EventID),
	)
	return event.EventID, nil
}

// WriteOff records that a result leg offsets an open receivable/payable leg.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) WriteOff(ctx context.Context, tenantID string, req dto.WriteOffRequest, userID string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%w: write-off amount must be positive", apperrors.ErrValidation)
	}

	original, err := s.voucherRepo.FindLineItemByID(ctx, req.OriginalLineItemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: line item %s", apperrors.ErrDanglingReference, req.OriginalLineItemID)
		}
		return "", fmt.Errorf("failed to load original line item: %w", err)
	}
	result, err := s.voucherRepo.FindLineItemByID(ctx, req.ResultLineItemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: line item %s", apperrors.ErrDanglingReference, req.ResultLineItemID)
		}
		return "", fmt.Errorf("failed to load result line item: %w", err)
	}

	originalVoucher, err := s.GetVoucherByID(ctx, tenantID, original.VoucherID)
	if err != nil {
		return "", err
	}
	resultVoucher, err := s.GetVoucherByID(ctx, tenantID, result.VoucherID)
	if err != nil {
		return "", err
	}

	account, err := s.accountSvc.GetAccountByID(ctx, tenantID, original.AccountID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve account for write-off: %w", err)
	}
	if !s.writeoffSvc.IsEligible(account) {
		return "", fmt.Errorf("%w: account %s is not in a receivable/payable range", apperrors.ErrValidation, account.Code)
	}
	if result.AccountID != original.AccountID {
		return "", fmt.Errorf("%w: write-off legs must share the account", apperrors.ErrValidation)
	}
	if result.Side == original.Side {
		return "", fmt.Errorf("%w: write-off leg must run opposite to the original", apperrors.ErrValidation)
	}

	outstanding, err := s.writeoffSvc.OutstandingAmount(ctx, *original)
	if err != nil {
		return "", err
	}
	if req.Amount.GreaterThan(outstanding) {
		return "", fmt.Errorf("%w: write-off amount %s exceeds outstanding %s",
			apperrors.ErrValidation, req.Amount.String(), outstanding.String())
	}

	now := time.Now().UTC()
	event := domain.VoucherEvent{
		EventID:           uuid.NewString(),
		Kind:              domain.WriteOff,
		OriginalVoucherID: originalVoucher.VoucherID,
		ResultVoucherID:   resultVoucher.VoucherID,
		CreatedAt:         now,
		CreatedBy:         userID,
	}
	associateVoucher := domain.AssociateVoucher{
		AssociateVoucherID: uuid.NewString(),
		EventID:            event.EventID,
		OriginalVoucherID:  originalVoucher.VoucherID,
		ResultVoucherID:    resultVoucher.VoucherID,
		AuditFields:        domain.NewAuditFields(userID, now),
	}
	associate := domain.AssociateLineItem{
		AssociateLineItemID: uuid.NewString(),
		AssociateVoucherID:  associateVoucher.AssociateVoucherID,
		OriginalLineItemID:  original.LineItemID,
		ResultLineItemID:    result.LineItemID,
		Side:                result.Side,
		Amount:              req.Amount,
		AuditFields:         domain.NewAuditFields(userID, now),
	}

	write := portsrepo.WriteOffWrite{
		OriginalVoucherID:  originalVoucher.VoucherID,
		ExpectedVersion:    originalVoucher.Version,
		Event:              event,
		AssociateVoucher:   associateVoucher,
		AssociateLineItems: []domain.AssociateLineItem{associate},
		UpdatedBy:          userID,
		UpdatedAt:          now,
	}
	if err := s.voucherRepo.SaveWriteOff(ctx, write); err != nil {
		logger.Error("Failed to save write-off", slog.String("error", err.Error()), slog.String("line_item_id", original.LineItemID))
		return "", fmt.Errorf("failed to save write-off: %w", err)
	}

	logger.Info("Write-off recorded",
		slog.String("original_line_item_id", original.LineItemID),
		slog.String("result_line_item_id", result.LineItemID),
		slog.String("amount", req.Amount.String()),
	)
	return event.EventID, nil
}

// ensureLineItemsReversible rejects a reversal when any leg tracked for
// write-off accounting already carries offsets. The reversal associate
// mirrors the leg's full amount, so reversing an offset leg would push its
// outstanding amount negative.
func (s *voucherService) ensureLineItemsReversible(ctx context.Context, lineItems []domain.LineItem) error {
	for _, li := range lineItems {
		reversible, err := s.writeoffSvc.IsStillReversible(ctx, li)
		if err != nil {
			return err
		}
		if !reversible {
			return fmt.Errorf("%w: line item %s has write-off records against it", apperrors.ErrAlreadyReversed, li.LineItemID)
		}
	}
	return nil
}

// buildReversal synthesizes the delete-version voucher: a mirror leg for
// every original line item with the opposite side and the same account and
// amount, plus the associate records pairing each original leg with its
// mirror. Balance holds automatically since the set is a sign-flip of an
// already balanced set.
func (s *voucherService) buildReversal(original *domain.Voucher, userID string, now time.Time) (portsrepo.VoucherWrite, []domain.AssociateLineItem) {
	reversalID := uuid.NewString()
	audit := domain.NewAuditFields(userID, now)

	legs := make([]domain.LineItem, len(original.LineItems))
	associates := make([]domain.AssociateLineItem, len(original.LineItems))
	for i, orig := range original.LineItems {
		legs[i] = domain.LineItem{
			LineItemID:  uuid.NewString(),
			VoucherID:   reversalID,
			AccountID:   orig.AccountID,
			Side:        orig.Side.Opposite(),
			Amount:      orig.Amount,
			Memo:        orig.Memo,
			AuditFields: audit,
		}
		associates[i] = domain.AssociateLineItem{
			AssociateLineItemID: uuid.NewString(),
			OriginalLineItemID:  orig.LineItemID,
			ResultLineItemID:    legs[i].LineItemID,
			Side:                legs[i].Side,
			Amount:              orig.Amount,
			AuditFields:         audit,
		}
	}

	reversal := domain.Voucher{
		VoucherID:      reversalID,
		TenantID:       original.TenantID,
		VoucherNo:      original.VoucherNo,
		VoucherDate:    original.VoucherDate,
		VoucherType:    original.VoucherType,
		Note:           fmt.Sprintf("Reversal of voucher %s", original.VoucherNo),
		CurrencyCode:   original.CurrencyCode,
		CounterpartyID: original.CounterpartyID,
		IssuerID:       userID,
		Status:         domain.StatusCurrent,
		Version:        1,
		AuditFields:    audit,
	}

	return portsrepo.VoucherWrite{Voucher: reversal, LineItems: legs}, associates
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}

// diffIDs computes the symmetric difference between the persisted and the
// requested id sets.
func diffIDs(current, want []string) (toAdd, toRemove []string) {
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	wantSet := make(map[string]struct{}, len(want))
	for _, id := range want {
		wantSet[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range current {
		if _, ok := wantSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}
