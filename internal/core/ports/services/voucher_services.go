package services

import (
	"context"

	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
	"github.com/ledgerkeep/ledgerkeep/internal/dto"
)

// VoucherReaderSvc defines read operations for voucher data
type VoucherReaderSvc interface {
	// GetVoucherByID retrieves a voucher with its line items.
	GetVoucherByID(ctx context.Context, tenantID string, voucherID string) (*domain.Voucher, error)

	// ListVouchers retrieves a paginated list of vouchers in a tenant.
	ListVouchers(ctx context.Context, tenantID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)

	// GetLineItem retrieves a single line item, scoped to the tenant.
	GetLineItem(ctx context.Context, tenantID string, lineItemID string) (*domain.LineItem, error)
}

// VoucherWriterSvc defines the state transitions of the voucher ledger
type VoucherWriterSvc interface {
	// PostVoucher validates and persists a new voucher with its line items.
	PostVoucher(ctx context.Context, tenantID string, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error)

	// AmendVoucher applies a requested change. A structural change (different
	// line-item multiset) reverses the voucher and posts a replacement,
	// returning the replacement; a non-structural change updates links in
	// place and returns the same voucher.
	AmendVoucher(ctx context.Context, tenantID string, voucherID string, req dto.AmendVoucherRequest, userID string) (*domain.Voucher, error)

	// DeleteVoucher logically deletes a voucher by reversing it. Returns the
	// id of the created reversal event.
	DeleteVoucher(ctx context.Context, tenantID string, voucherID string, userID string) (string, error)

	// WriteOff records that a result leg offsets an open receivable/payable
	// leg. Returns the id of the created write-off event.
	WriteOff(ctx context.Context, tenantID string, req dto.WriteOffRequest, userID string) (string, error)
}

// VoucherSvcFacade combines all voucher-related service interfaces
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherWriterSvc
}
