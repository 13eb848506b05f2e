package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerkeep/ledgerkeep/internal/apperrors"
	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
	portsrepo "github.com/ledgerkeep/ledgerkeep/internal/core/ports/repositories"
	portssvc "github.com/ledgerkeep/ledgerkeep/internal/core/ports/services"
	"github.com/ledgerkeep/ledgerkeep/internal/core/services"
	"github.com/ledgerkeep/ledgerkeep/internal/dto"
)

// --- Test Suite Setup ---
type VoucherServiceTestSuite struct {
	suite.Suite
	mockVoucherRepo    *MockVoucherRepository
	mockAccountSvc     *MockAccountService
	mockReferenceRepo  *MockReferenceReader
	mockWriteoffSvc    *MockWriteoffService
	service            portssvc.VoucherSvcFacade
	receivableAccount  domain.Account
	revenueAccount     domain.Account
	cashAccount        domain.Account
	tenantID           string
	userID             string
}

func (suite *VoucherServiceTestSuite) SetupTest() {
	suite.mockVoucherRepo = new(MockVoucherRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockReferenceRepo = new(MockReferenceReader)
	suite.mockWriteoffSvc = new(MockWriteoffService)
	suite.service = services.NewVoucherService(suite.mockVoucherRepo, suite.mockAccountSvc, suite.mockReferenceRepo, suite.mockWriteoffSvc)

	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.receivableAccount = domain.Account{
		AccountID:      uuid.NewString(),
		TenantID:       suite.tenantID,
		Code:           "1170",
		Classification: domain.Asset,
		NormalSide:     domain.Debit,
		CurrencyCode:   "USD",
		IsActive:       true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:      uuid.NewString(),
		TenantID:       suite.tenantID,
		Code:           "4000",
		Classification: domain.Revenue,
		NormalSide:     domain.Credit,
		CurrencyCode:   "USD",
		IsActive:       true,
	}
	suite.cashAccount = domain.Account{
		AccountID:      uuid.NewString(),
		TenantID:       suite.tenantID,
		Code:           "1000",
		Classification: domain.Asset,
		NormalSide:     domain.Debit,
		CurrencyCode:   "USD",
		IsActive:       true,
	}
}

func (suite *VoucherServiceTestSuite) accountsMap(accounts ...domain.Account) map[string]domain.Account {
	m := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.AccountID] = a
	}
	return m
}

// balancedRequest builds a voucher posting that debits receivable and credits
// revenue by the same amount.
func (suite *VoucherServiceTestSuite) balancedRequest(amount int64) dto.CreateVoucherRequest {
	return dto.CreateVoucherRequest{
		VoucherNo:    "V-1001",
		Date:         time.Now().UTC(),
		CurrencyCode: "USD",
		LineItems: []dto.LineItemRequest{
			{AccountID: suite.receivableAccount.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(amount)},
			{AccountID: suite.revenueAccount.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(amount)},
		},
	}
}

// persistedVoucher materializes a stored voucher with two balanced legs.
func (suite *VoucherServiceTestSuite) persistedVoucher(amount int64) (*domain.Voucher, []domain.LineItem) {
	voucherID := uuid.NewString()
	lineItems := []domain.LineItem{
		{LineItemID: uuid.NewString(), VoucherID: voucherID, AccountID: suite.receivableAccount.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(amount)},
		{LineItemID: uuid.NewString(), VoucherID: voucherID, AccountID: suite.revenueAccount.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(amount)},
	}
	voucher := &domain.Voucher{
		VoucherID:    voucherID,
		TenantID:     suite.tenantID,
		VoucherNo:    "V-1001",
		VoucherDate:  time.Now().UTC(),
		CurrencyCode: "USD",
		IssuerID:     suite.userID,
		Status:       domain.StatusCurrent,
		Version:      1,
	}
	return voucher, lineItems
}

func (suite *VoucherServiceTestSuite) expectVoucherLoad(voucher *domain.Voucher, lineItems []domain.LineItem) {
	suite.mockVoucherRepo.On("FindVoucherByID", mock.Anything, voucher.VoucherID).Return(voucher, nil)
	suite.mockVoucherRepo.On("FindLineItemsByVoucherID", mock.Anything, voucher.VoucherID).Return(lineItems, nil)
}

// --- PostVoucher ---

func (suite *VoucherServiceTestSuite) TestPostVoucher_Success() {
	ctx := context.Background()
	req := suite.balancedRequest(100)

	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.tenantID, mock.Anything).
		Return(suite.accountsMap(suite.receivableAccount, suite.revenueAccount), nil).Once()
	suite.mockVoucherRepo.On("SaveVoucher", ctx, mock.AnythingOfType("repositories.VoucherWrite")).Return(nil).Once()

	voucher, err := suite.service.PostVoucher(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCurrent, voucher.Status)
	suite.Equal(int64(1), voucher.Version)
	suite.Len(voucher.LineItems, 2)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_Unbalanced() {
	ctx := context.Background()
	req := suite.balancedRequest(100)
	req.LineItems[1].Amount = decimal.NewFromInt(99)

	_, err := suite.service.PostVoucher(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnbalanced)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveVoucher", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_NoLineItems() {
	ctx := context.Background()
	req := suite.balancedRequest(100)
	req.LineItems = nil

	_, err := suite.service.PostVoucher(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrMissingLineItems)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_NonPositiveAmount() {
	ctx := context.Background()
	req := suite.balancedRequest(100)
	req.LineItems[0].Amount = decimal.Zero
	req.LineItems[1].Amount = decimal.Zero

	_, err := suite.service.PostVoucher(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_UnknownAccount() {
	ctx := context.Background()
	req := suite.balancedRequest(100)

	// Only the revenue account resolves
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.tenantID, mock.Anything).
		Return(suite.accountsMap(suite.revenueAccount), nil).Once()

	_, err := suite.service.PostVoucher(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrDanglingReference)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_InactiveAccount() {
	ctx := context.Background()
	req := suite.balancedRequest(100)
	inactive := suite.receivableAccount
	inactive.IsActive = false

	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.tenantID, mock.Anything).
		Return(suite.accountsMap(inactive, suite.revenueAccount), nil).Once()

	_, err := suite.service.PostVoucher(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrDanglingReference)
}

// --- DeleteVoucher ---

func (suite *VoucherServiceTestSuite) TestDeleteVoucher_Success() {
	ctx := context.Background()
	voucher, lineItems := suite.persistedVoucher(250)
	suite.expectVoucherLoad(voucher, lineItems)

	for _, li := range lineItems {
		suite.mockWriteoffSvc.On("IsStillReversible", ctx, li).Return(true, nil).Once()
	}

	var captured portsrepo.ReversalWrite
	suite.mockVoucherRepo.On("SaveReversal", ctx, mock.AnythingOfType("repositories.ReversalWrite")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(portsrepo.ReversalWrite)
		}).Return(nil).Once()

	eventID, err := suite.service.DeleteVoucher(ctx, suite.tenantID, voucher.VoucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(captured.Event.EventID, eventID)
	suite.Equal(domain.ReversalForDelete, captured.Event.Kind)
	suite.Equal(domain.StatusReversed, captured.NewStatus)
	suite.NotNil(captured.DeletedAt)
	suite.Nil(captured.Replacement)
	suite.Equal(voucher.Version, captured.ExpectedVersion)

	// The reversal carries one mirror leg per original leg.
	suite.Require().Len(captured.Reversal.LineItems, len(lineItems))
	for i, leg := range captured.Reversal.LineItems {
		suite.Equal(lineItems[i].AccountID, leg.AccountID)
		suite.Equal(lineItems[i].Side.Opposite(), leg.Side)
		suite.True(lineItems[i].Amount.Equal(leg.Amount))
	}

	// Each original leg is paired with its mirror in the associate records.
	suite.Require().Len(captured.AssociateLineItems, len(lineItems))
	for i, assoc := range captured.AssociateLineItems {
		suite.Equal(lineItems[i].LineItemID, assoc.OriginalLineItemID)
		suite.Equal(captured.Reversal.LineItems[i].LineItemID, assoc.ResultLineItemID)
		suite.Equal(captured.AssociateVoucher.AssociateVoucherID, assoc.AssociateVoucherID)
	}

	// The reversal itself balances: it is a sign-flip of a balanced set.
	debits, credits := decimal.Zero, decimal.Zero
	for _, leg := range captured.Reversal.LineItems {
		if leg.Side == domain.Debit {
			debits = debits.Add(leg.Amount)
		} else {
			credits = credits.Add(leg.Amount)
		}
	}
	suite.True(debits.Equal(credits))
}

func (suite *VoucherServiceTestSuite) TestDeleteVoucher_AlreadyReversed() {
	ctx := context.Background()
	voucher, lineItems := suite.persistedVoucher(250)
	voucher.Status = domain.StatusReversed
	now := time.Now().UTC()
	voucher.DeletedAt = &now
	suite.expectVoucherLoad(voucher, lineItems)

	_, err := suite.service.DeleteVoucher(ctx, suite.tenantID, voucher.VoucherID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrAlreadyReversed)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestDeleteVoucher_NotFound() {
	ctx := context.Background()
	missingID := uuid.NewString()
	suite.mockVoucherRepo.On("FindVoucherByID", mock.Anything, missingID).Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.DeleteVoucher(ctx, suite.tenantID, missingID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrDanglingReference)
}

func (suite *VoucherServiceTestSuite) TestDeleteVoucher_WrongTenant() {
	ctx := context.Background()
	voucher, _ := suite.persistedVoucher(250)
	voucher.TenantID = uuid.NewString()
	suite.mockVoucherRepo.On("FindVoucherByID", mock.Anything, voucher.VoucherID).Return(voucher, nil)

	_, err := suite.service.DeleteVoucher(ctx, suite.tenantID, voucher.VoucherID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrDanglingReference)
}

func (suite *VoucherServiceTestSuite) TestDeleteVoucher_BlockedByWriteOff() {
	ctx := context.Background()
	voucher, lineItems := suite.persistedVoucher(250)
	suite.expectVoucherLoad(voucher, lineItems)

	// The receivable leg carries write-off records. The reversal associate
	// would mirror the full amount and push its outstanding negative, so the
	// delete must not reach the repository.
	suite.mockWriteoffSvc.On("IsStillReversible", ctx, lineItems[0]).Return(false, nil).Once()

	_, err := suite.service.DeleteVoucher(ctx, suite.tenantID, voucher.VoucherID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrAlreadyReversed)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything)
}

// --- AmendVoucher ---

func (suite *VoucherServiceTestSuite) TestAmendVoucher_StructuralChangeCreatesReplacement() {
	ctx := context.Background()
	voucher, lineItems := suite.persistedVoucher(100)
	suite.expectVoucherLoad(voucher, lineItems)

	for _, li := range lineItems {
		suite.mockWriteoffSvc.On("IsStillReversible", ctx, li).Return(true, nil).Once()
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.tenantID, mock.Anything).
		Return(suite.accountsMap(suite.receivableAccount, suite.revenueAccount), nil).Once()

	var captured portsrepo.ReversalWrite
	suite.mockVoucherRepo.On("SaveReversal", ctx, mock.AnythingOfType("repositories.ReversalWrite")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(portsrepo.ReversalWrite)
		}).Return(nil).Once()

	// Different amount: a structural change.
	req := dto.AmendVoucherRequest{
		LineItems: []dto.LineItemRequest{
			{AccountID: suite.receivableAccount.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(150)},
			{AccountID: suite.revenueAccount.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(150)},
		},
	}

	replacement, err := suite.service.AmendVoucher(ctx, suite.tenantID, voucher.VoucherID, req, suite.userID)

	suite.Require().NoError(err)
	// The replacement is a fresh posting, not the original identity.
	suite.NotEqual(voucher.VoucherID, replacement.VoucherID)
	suite.Equal(domain.StatusCurrent, replacement.Status)
	suite.Equal(int64(1), replacement.Version)

	suite.Equal(domain.ReversalForEdit, captured.Event.Kind)
	suite.Equal(domain.StatusSuperseded, captured.NewStatus)
	suite.Require().NotNil(captured.SupersededByID)
	suite.Equal(replacement.VoucherID, *captured.SupersededByID)
	suite.Require().NotNil(captured.Replacement)
	suite.Equal(replacement.VoucherID, captured.Replacement.Voucher.VoucherID)
	suite.Nil(captured.DeletedAt)
}

func (suite *VoucherServiceTestSuite) TestAmendVoucher_NonStructuralKeepsIdentity() {
	ctx := context.Background()
	voucher, lineItems := suite.persistedVoucher(100)
	voucher.CertificateIDs = []string{"cert-1"}
	suite.expectVoucherLoad(voucher, lineItems)

	suite.mockReferenceRepo.On("MissingCertificateIDs", ctx, suite.tenantID, []string{"cert-2"}).Return(nil, nil).Once()

	var captured portsrepo.VoucherLinksUpdate
	suite.mockVoucherRepo.On("UpdateVoucherLinks", ctx, mock.AnythingOfType("repositories.VoucherLinksUpdate")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(portsrepo.VoucherLinksUpdate)
		}).Return(nil).Once()

	// Same line-item multiset, different certificate set.
	req := dto.AmendVoucherRequest{
		LineItems: []dto.LineItemRequest{
			{AccountID: suite.receivableAccount.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(100)},
			{AccountID: suite.revenueAccount.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(100)},
		},
		CertificateIDs: &[]string{"cert-2"},
	}

	amended, err := suite.service.AmendVoucher(ctx, suite.tenantID, voucher.VoucherID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(voucher.VoucherID, amended.VoucherID)
	suite.Equal([]string{"cert-2"}, captured.CertificateIDsToAdd)
	suite.Equal([]string{"cert-1"}, captured.CertificateIDsToRemove)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestAmendVoucher_ReorderedLegsAreNotStructural() {
	ctx := context.Background()
	voucher, lineItems := suite.persistedVoucher(100)
	suite.expectVoucherLoad(voucher, lineItems)

	suite.mockVoucherRepo.On("UpdateVoucherLinks", ctx, mock.AnythingOfType("repositories.VoucherLinksUpdate")).Return(nil).Once()

	// Same multiset in a different order.
	req := dto.AmendVoucherRequest{
		LineItems: []dto.LineItemRequest{
			{AccountID: suite.revenueAccount.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(100)},
			{AccountID: suite.receivableAccount.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(100)},
		},
	}

	amended, err := suite.service.AmendVoucher(ctx, suite.tenantID, voucher.VoucherID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(voucher.VoucherID, amended.VoucherID)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestAmendVoucher_DanglingReverseLinkRejected() {
	ctx := context.Background()
	voucher, lineItems := suite.persistedVoucher(100)
	suite.expectVoucherLoad(voucher, lineItems)

	unknown := uuid.NewString()
	suite.mockReferenceRepo.On("MissingVoucherIDs", ctx, suite.tenantID, []string{unknown}).
		Return([]string{unknown}, nil).Once()

	// Same line-item multiset, so this is a link-only update; the dangling
	// reverse-voucher id must be caught before anything is written.
	req := dto.AmendVoucherRequest{
		LineItems: []dto.LineItemRequest{
			{AccountID: suite.receivableAccount.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(100)},
			{AccountID: suite.revenueAccount.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(100)},
		},
		ReverseVoucherIDs: &[]string{unknown},
	}

	_, err := suite.service.AmendVoucher(ctx, suite.tenantID, voucher.VoucherID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrDanglingReference)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "UpdateVoucherLinks", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestAmendVoucher_ReversedVoucherRejected() {
	ctx := context.Background()
	voucher, lineItems := suite.persistedVoucher(100)
	voucher.Status = domain.StatusSuperseded
	supersededBy := uuid.NewString()
	voucher.SupersededByID = &supersededBy
	suite.expectVoucherLoad(voucher, lineItems)

	req := dto.AmendVoucherRequest{
		LineItems: []dto.LineItemRequest{
			{AccountID: suite.receivableAccount.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(100)},
			{AccountID: suite.revenueAccount.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(100)},
		},
	}

	_, err := suite.service.AmendVoucher(ctx, suite.tenantID, voucher.VoucherID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrAlreadyReversed)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "UpdateVoucherLinks", mock.Anything, mock.Anything)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestAmendVoucher_UnbalancedReplacementRejected() {
	ctx := context.Background()
	voucher, lineItems := suite.persistedVoucher(100)
	suite.expectVoucherLoad(voucher, lineItems)

	for _, li := range lineItems {
		suite.mockWriteoffSvc.On("IsStillReversible", ctx, li).Return(true, nil).Once()
	}

	req := dto.AmendVoucherRequest{
		LineItems: []dto.LineItemRequest{
			{AccountID: suite.receivableAccount.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(150)},
			{AccountID: suite.revenueAccount.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(140)},
		},
	}

	_, err := suite.service.AmendVoucher(ctx, suite.tenantID, voucher.VoucherID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrUnbalanced)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything)
}

// --- WriteOff ---

func (suite *VoucherServiceTestSuite) writeOffFixture(originalAmount int64) (original domain.LineItem, result domain.LineItem, origVoucher *domain.Voucher, resVoucher *domain.Voucher) {
	origVoucher, origLegs := suite.persistedVoucher(originalAmount)
	original = origLegs[0] // receivable debit leg

	resVoucherID := uuid.NewString()
	result = domain.LineItem{
		LineItemID: uuid.NewString(),
		VoucherID:  resVoucherID,
		AccountID:  suite.receivableAccount.AccountID,
		Side:       domain.Credit,
		Amount:     decimal.NewFromInt(originalAmount),
	}
	resVoucher = &domain.Voucher{
		VoucherID:    resVoucherID,
		TenantID:     suite.tenantID,
		VoucherNo:    "V-1002",
		VoucherDate:  time.Now().UTC(),
		CurrencyCode: "USD",
		IssuerID:     suite.userID,
		Status:       domain.StatusCurrent,
		Version:      1,
	}

	suite.mockVoucherRepo.On("FindLineItemByID", mock.Anything, original.LineItemID).Return(&original, nil)
	suite.mockVoucherRepo.On("FindLineItemByID", mock.Anything, result.LineItemID).Return(&result, nil)
	suite.expectVoucherLoad(origVoucher, origLegs)
	suite.mockVoucherRepo.On("FindLineItemsByVoucherID", mock.Anything, resVoucherID).Return([]domain.LineItem{result}, nil)
	suite.mockVoucherRepo.On("FindVoucherByID", mock.Anything, resVoucherID).Return(resVoucher, nil)
	suite.mockAccountSvc.On("GetAccountByID", mock.Anything, suite.tenantID, suite.receivableAccount.AccountID).Return(&suite.receivableAccount, nil)
	return original, result, origVoucher, resVoucher
}

func (suite *VoucherServiceTestSuite) TestWriteOff_Success() {
	ctx := context.Background()
	original, result, origVoucher, _ := suite.writeOffFixture(300)

	suite.mockWriteoffSvc.On("IsEligible", &suite.receivableAccount).Return(true).Once()
	suite.mockWriteoffSvc.On("OutstandingAmount", ctx, original).Return(decimal.NewFromInt(300), nil).Once()

	var captured portsrepo.WriteOffWrite
	suite.mockVoucherRepo.On("SaveWriteOff", ctx, mock.AnythingOfType("repositories.WriteOffWrite")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(portsrepo.WriteOffWrite)
		}).Return(nil).Once()

	req := dto.WriteOffRequest{
		OriginalLineItemID: original.LineItemID,
		ResultLineItemID:   result.LineItemID,
		Amount:             decimal.NewFromInt(120),
	}
	eventID, err := suite.service.WriteOff(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(captured.Event.EventID, eventID)
	suite.Equal(domain.WriteOff, captured.Event.Kind)
	suite.Equal(origVoucher.VoucherID, captured.OriginalVoucherID)
	suite.Require().Len(captured.AssociateLineItems, 1)
	assoc := captured.AssociateLineItems[0]
	suite.Equal(original.LineItemID, assoc.OriginalLineItemID)
	suite.Equal(result.LineItemID, assoc.ResultLineItemID)
	suite.Equal(domain.Credit, assoc.Side)
	suite.True(assoc.Amount.Equal(decimal.NewFromInt(120)))
	suite.Equal(suite.userID, captured.UpdatedBy)
	suite.False(captured.UpdatedAt.IsZero())
}

func (suite *VoucherServiceTestSuite) TestWriteOff_ExceedsOutstanding() {
	ctx := context.Background()
	original, result, _, _ := suite.writeOffFixture(300)

	suite.mockWriteoffSvc.On("IsEligible", &suite.receivableAccount).Return(true).Once()
	suite.mockWriteoffSvc.On("OutstandingAmount", ctx, original).Return(decimal.NewFromInt(50), nil).Once()

	req := dto.WriteOffRequest{
		OriginalLineItemID: original.LineItemID,
		ResultLineItemID:   result.LineItemID,
		Amount:             decimal.NewFromInt(120),
	}
	_, err := suite.service.WriteOff(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveWriteOff", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestWriteOff_SameSideRejected() {
	ctx := context.Background()
	original, result, _, _ := suite.writeOffFixture(300)
	result.Side = original.Side
	// Re-stub the result leg with the flipped side.
	suite.mockVoucherRepo.ExpectedCalls = nil
	suite.writeOffSameSideStubs(original, result)

	suite.mockWriteoffSvc.On("IsEligible", &suite.receivableAccount).Return(true).Once()

	req := dto.WriteOffRequest{
		OriginalLineItemID: original.LineItemID,
		ResultLineItemID:   result.LineItemID,
		Amount:             decimal.NewFromInt(10),
	}
	_, err := suite.service.WriteOff(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveWriteOff", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) writeOffSameSideStubs(original, result domain.LineItem) {
	origVoucher := &domain.Voucher{VoucherID: original.VoucherID, TenantID: suite.tenantID, Status: domain.StatusCurrent, Version: 1}
	resVoucher := &domain.Voucher{VoucherID: result.VoucherID, TenantID: suite.tenantID, Status: domain.StatusCurrent, Version: 1}
	suite.mockVoucherRepo.On("FindLineItemByID", mock.Anything, original.LineItemID).Return(&original, nil)
	suite.mockVoucherRepo.On("FindLineItemByID", mock.Anything, result.LineItemID).Return(&result, nil)
	suite.mockVoucherRepo.On("FindVoucherByID", mock.Anything, original.VoucherID).Return(origVoucher, nil)
	suite.mockVoucherRepo.On("FindVoucherByID", mock.Anything, result.VoucherID).Return(resVoucher, nil)
	suite.mockVoucherRepo.On("FindLineItemsByVoucherID", mock.Anything, original.VoucherID).Return([]domain.LineItem{original}, nil)
	suite.mockVoucherRepo.On("FindLineItemsByVoucherID", mock.Anything, result.VoucherID).Return([]domain.LineItem{result}, nil)
}

func (suite *VoucherServiceTestSuite) TestWriteOff_IneligibleAccount() {
	ctx := context.Background()
	original, result, _, _ := suite.writeOffFixture(300)

	suite.mockWriteoffSvc.On("IsEligible", &suite.receivableAccount).Return(false).Once()

	req := dto.WriteOffRequest{
		OriginalLineItemID: original.LineItemID,
		ResultLineItemID:   result.LineItemID,
		Amount:             decimal.NewFromInt(10),
	}
	_, err := suite.service.WriteOff(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *VoucherServiceTestSuite) TestWriteOff_NonPositiveAmount() {
	ctx := context.Background()

	req := dto.WriteOffRequest{
		OriginalLineItemID: uuid.NewString(),
		ResultLineItemID:   uuid.NewString(),
		Amount:             decimal.Zero,
	}
	_, err := suite.service.WriteOff(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "FindLineItemByID", mock.Anything, mock.Anything)
}

// --- GetVoucherByID / ListVouchers ---

func (suite *VoucherServiceTestSuite) TestGetVoucherByID_WrongTenantObscured() {
	ctx := context.Background()
	voucher, _ := suite.persistedVoucher(100)
	voucher.TenantID = uuid.NewString()
	suite.mockVoucherRepo.On("FindVoucherByID", mock.Anything, voucher.VoucherID).Return(voucher, nil)

	_, err := suite.service.GetVoucherByID(ctx, suite.tenantID, voucher.VoucherID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *VoucherServiceTestSuite) TestListVouchers_PassesPaginationThrough() {
	ctx := context.Background()
	voucher, _ := suite.persistedVoucher(100)
	token := "next-token"
	suite.mockVoucherRepo.On("ListVouchersByTenant", ctx, suite.tenantID, 20, (*string)(nil), false).
		Return([]domain.Voucher{*voucher}, token, nil).Once()

	resp, err := suite.service.ListVouchers(ctx, suite.tenantID, dto.ListVouchersParams{})

	suite.Require().NoError(err)
	suite.Len(resp.Vouchers, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
}

func TestVoucherServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VoucherServiceTestSuite))
}
