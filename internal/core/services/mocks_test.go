package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
	portsrepo "github.com/ledgerkeep/ledgerkeep/internal/core/ports/repositories"
	portssvc "github.com/ledgerkeep/ledgerkeep/internal/core/ports/services"
	"github.com/ledgerkeep/ledgerkeep/internal/dto"
)

// --- Mock VoucherRepository ---
type MockVoucherRepository struct {
	mock.Mock
}

var _ portsrepo.VoucherRepositoryWithTx = (*MockVoucherRepository)(nil)

func (m *MockVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) FindLineItemsByVoucherID(ctx context.Context, voucherID string) ([]domain.LineItem, error) {
	args := m.Called(ctx, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

func (m *MockVoucherRepository) FindLineItemByID(ctx context.Context, lineItemID string) (*domain.LineItem, error) {
	args := m.Called(ctx, lineItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LineItem), args.Error(1)
}

func (m *MockVoucherRepository) ListVouchersByTenant(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversals bool) ([]domain.Voucher, *string, error) {
	args := m.Called(ctx, tenantID, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Voucher), returnedNextToken, args.Error(2)
}

func (m *MockVoucherRepository) FindAssociatesByOriginalLineItem(ctx context.Context, lineItemID string) ([]domain.AssociateLineItem, error) {
	args := m.Called(ctx, lineItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssociateLineItem), args.Error(1)
}

func (m *MockVoucherRepository) FindAssociatesByResultLineItem(ctx context.Context, lineItemID string) ([]domain.AssociateLineItem, error) {
	args := m.Called(ctx, lineItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssociateLineItem), args.Error(1)
}

func (m *MockVoucherRepository) FindEventByID(ctx context.Context, eventID string) (*domain.VoucherEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VoucherEvent), args.Error(1)
}

func (m *MockVoucherRepository) SaveVoucher(ctx context.Context, write portsrepo.VoucherWrite) error {
	args := m.Called(ctx, write)
	return args.Error(0)
}

func (m *MockVoucherRepository) SaveReversal(ctx context.Context, write portsrepo.ReversalWrite) error {
	args := m.Called(ctx, write)
	return args.Error(0)
}

func (m *MockVoucherRepository) UpdateVoucherLinks(ctx context.Context, update portsrepo.VoucherLinksUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockVoucherRepository) SaveWriteOff(ctx context.Context, write portsrepo.WriteOffWrite) error {
	args := m.Called(ctx, write)
	return args.Error(0)
}

func (m *MockVoucherRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockVoucherRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockVoucherRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

// --- Mock AccountService (as used by VoucherService) ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, tenantID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error {
	args := m.Called(ctx, tenantID, accountID, userID)
	return args.Error(0)
}

// --- Mock ReferenceReader ---
type MockReferenceReader struct {
	mock.Mock
}

var _ portsrepo.ReferenceReader = (*MockReferenceReader)(nil)

func (m *MockReferenceReader) CounterpartyExists(ctx context.Context, tenantID string, counterpartyID string) (bool, error) {
	args := m.Called(ctx, tenantID, counterpartyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferenceReader) MissingCertificateIDs(ctx context.Context, tenantID string, certificateIDs []string) ([]string, error) {
	args := m.Called(ctx, tenantID, certificateIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReferenceReader) MissingAssetIDs(ctx context.Context, tenantID string, assetIDs []string) ([]string, error) {
	args := m.Called(ctx, tenantID, assetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReferenceReader) MissingVoucherIDs(ctx context.Context, tenantID string, voucherIDs []string) ([]string, error) {
	args := m.Called(ctx, tenantID, voucherIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock WriteoffService (as used by VoucherService) ---
type MockWriteoffService struct {
	mock.Mock
}

var _ portssvc.WriteoffSvcFacade = (*MockWriteoffService)(nil)

func (m *MockWriteoffService) IsEligible(account *domain.Account) bool {
	args := m.Called(account)
	return args.Bool(0)
}

func (m *MockWriteoffService) OutstandingAmount(ctx context.Context, lineItem domain.LineItem) (decimal.Decimal, error) {
	args := m.Called(ctx, lineItem)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWriteoffService) IsStillReversible(ctx context.Context, lineItem domain.LineItem) (bool, error) {
	args := m.Called(ctx, lineItem)
	return args.Bool(0), args.Error(1)
}

func (m *MockWriteoffService) IsClosed(ctx context.Context, lineItem domain.LineItem) (bool, error) {
	args := m.Called(ctx, lineItem)
	return args.Bool(0), args.Error(1)
}
