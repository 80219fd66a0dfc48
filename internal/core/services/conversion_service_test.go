package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/core/services"
	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AuditLedgerService ---
type MockAuditLedgerService struct {
	mock.Mock
}

func (m *MockAuditLedgerService) OpenConversion(ctx context.Context, audit domain.ConversionAudit) (*domain.ConversionAudit, error) {
	args := m.Called(ctx, audit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionAudit), args.Error(1)
}

func (m *MockAuditLedgerService) TransitionConversion(ctx context.Context, conversionID string, expected, next domain.ConversionStatus, detail portsrepo.TransitionDetail, actorID string) (*domain.ConversionAudit, error) {
	args := m.Called(ctx, conversionID, expected, next, detail, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionAudit), args.Error(1)
}

func (m *MockAuditLedgerService) GetConversion(ctx context.Context, conversionID string) (*domain.ConversionAudit, error) {
	args := m.Called(ctx, conversionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionAudit), args.Error(1)
}

func (m *MockAuditLedgerService) ListConversions(ctx context.Context, filter portsrepo.ConversionFilter, limit int, pageToken string) ([]domain.ConversionAudit, string, error) {
	args := m.Called(ctx, filter, limit, pageToken)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.ConversionAudit), args.String(1), args.Error(2)
}

func (m *MockAuditLedgerService) ListOverdueConversions(ctx context.Context, now time.Time, limit int) ([]domain.ConversionAudit, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversionAudit), args.Error(1)
}

// --- Mock RateResolverService ---
type MockRateResolverService struct {
	mock.Mock
}

func (m *MockRateResolverService) ResolveRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, at time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

// --- Mock FeeResolverService ---
type MockFeeResolverService struct {
	mock.Mock
}

func (m *MockFeeResolverService) CalculateFee(ctx context.Context, feeType domain.FeeType, amount decimal.Decimal, at time.Time) (*domain.FeeQuote, error) {
	args := m.Called(ctx, feeType, amount, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeQuote), args.Error(1)
}

// --- Mock TrustlineTrackerService ---
type MockTrustlineTrackerService struct {
	mock.Mock
}

func (m *MockTrustlineTrackerService) RequestTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string, kind domain.TrustlineKind, actorID string) (*domain.TrustlineOperation, error) {
	args := m.Called(ctx, walletAddress, assetCode, assetIssuer, kind, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrustlineOperation), args.Error(1)
}

func (m *MockTrustlineTrackerService) TransitionTrustline(ctx context.Context, operationID string, expected, next domain.TrustlineStatus, update portsrepo.TrustlineUpdate, actorID string) (*domain.TrustlineOperation, error) {
	args := m.Called(ctx, operationID, expected, next, update, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrustlineOperation), args.Error(1)
}

func (m *MockTrustlineTrackerService) GetTrustlineOperation(ctx context.Context, operationID string) (*domain.TrustlineOperation, error) {
	args := m.Called(ctx, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrustlineOperation), args.Error(1)
}

func (m *MockTrustlineTrackerService) CurrentTrustlineState(ctx context.Context, walletAddress, assetCode string) (*domain.TrustlineOperation, error) {
	args := m.Called(ctx, walletAddress, assetCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrustlineOperation), args.Error(1)
}

func (m *MockTrustlineTrackerService) ListTrustlineOperations(ctx context.Context, walletAddress string, limit int) ([]domain.TrustlineOperation, error) {
	args := m.Called(ctx, walletAddress, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrustlineOperation), args.Error(1)
}

// --- Mock HorizonClient ---
type MockHorizonClient struct {
	mock.Mock
}

func (m *MockHorizonClient) GetAccount(ctx context.Context, accountID string) (*domain.StellarAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StellarAccount), args.Error(1)
}

func (m *MockHorizonClient) HasTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string) (bool, error) {
	args := m.Called(ctx, walletAddress, assetCode, assetIssuer)
	return args.Bool(0), args.Error(1)
}

func (m *MockHorizonClient) SubmitTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string, kind domain.TrustlineKind) (string, error) {
	args := m.Called(ctx, walletAddress, assetCode, assetIssuer, kind)
	return args.String(0), args.Error(1)
}

// --- Test Suite ---
type ConversionServiceTestSuite struct {
	suite.Suite
	mockLedger    *MockAuditLedgerService
	mockRateSvc   *MockRateResolverService
	mockFeeSvc    *MockFeeResolverService
	mockTrustline *MockTrustlineTrackerService
	mockHorizon   *MockHorizonClient
	service       portssvc.ConversionSvcFacade
}

func (suite *ConversionServiceTestSuite) SetupTest() {
	suite.mockLedger = new(MockAuditLedgerService)
	suite.mockRateSvc = new(MockRateResolverService)
	suite.mockFeeSvc = new(MockFeeResolverService)
	suite.mockTrustline = new(MockTrustlineTrackerService)
	suite.mockHorizon = new(MockHorizonClient)
	suite.service = services.NewConversionService(
		suite.mockLedger, suite.mockRateSvc, suite.mockFeeSvc,
		suite.mockTrustline, suite.mockHorizon,
		services.TrustlinePolicyAuto, 15*time.Minute)
}

func (suite *ConversionServiceTestSuite) withRejectPolicy() {
	suite.service = services.NewConversionService(
		suite.mockLedger, suite.mockRateSvc, suite.mockFeeSvc,
		suite.mockTrustline, suite.mockHorizon,
		services.TrustlinePolicyReject, 15*time.Minute)
}

func startRequest() dto.StartConversionRequest {
	return dto.StartConversionRequest{
		IdempotencyKey:   uuid.NewString(),
		UserID:           uuid.NewString(),
		WalletAddress:    "GABC123",
		FromCurrencyCode: "NGN",
		ToCurrencyCode:   "USDC",
		FromAmount:       decimal.NewFromInt(10000),
	}
}

func testRate() *domain.ExchangeRate {
	return &domain.ExchangeRate{
		RateID:           uuid.NewString(),
		FromCurrencyCode: "NGN",
		ToCurrencyCode:   "USDC",
		Rate:             decimal.NewFromFloat(0.00065),
		ValidFrom:        time.Now().UTC().Add(-time.Hour),
	}
}

func testQuote() *domain.FeeQuote {
	return &domain.FeeQuote{
		Fee:          decimal.NewFromInt(250),
		RateBps:      150,
		FlatFee:      decimal.NewFromInt(100),
		CurrencyCode: "NGN",
		FeeID:        uuid.NewString(),
	}
}

func withReason(reason domain.FailureReason) interface{} {
	return mock.MatchedBy(func(d portsrepo.TransitionDetail) bool {
		return d.FailureReason != nil && *d.FailureReason == reason
	})
}

// --- StartConversion ---

func (suite *ConversionServiceTestSuite) TestStartConversion_LocksRateWithoutTrustline() {
	ctx := context.Background()
	actorID := uuid.NewString()
	req := startRequest() // no asset issuer: fiat/native leg, no trustline needed
	rate := testRate()
	quote := testQuote()

	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).Return(rate, nil).Once()
	suite.mockFeeSvc.On("CalculateFee", ctx, domain.FeeExchange, req.FromAmount, mock.AnythingOfType("time.Time")).Return(quote, nil).Once()

	opened := &domain.ConversionAudit{
		ConversionID: uuid.NewString(),
		Status:       domain.ConversionPending,
	}
	expectedToAmount := req.FromAmount.Sub(quote.Fee).Mul(rate.Rate)
	suite.mockLedger.On("OpenConversion", ctx, mock.MatchedBy(func(a domain.ConversionAudit) bool {
		return a.IdempotencyKey == req.IdempotencyKey &&
			a.RateID == rate.RateID &&
			a.FeeAmount.Equal(quote.Fee) &&
			a.ToAmount.Equal(expectedToAmount) &&
			!a.Deadline.IsZero()
	})).Return(opened, nil).Once()

	locked := &domain.ConversionAudit{ConversionID: opened.ConversionID, Status: domain.ConversionRateLocked}
	suite.mockLedger.On("TransitionConversion", ctx, opened.ConversionID,
		domain.ConversionPending, domain.ConversionRateLocked,
		portsrepo.TransitionDetail{}, actorID).Return(locked, nil).Once()

	record, err := suite.service.StartConversion(ctx, req, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionRateLocked, record.Status)
	suite.mockLedger.AssertExpectations(suite.T())
	suite.mockHorizon.AssertNotCalled(suite.T(), "HasTrustline")
}

func (suite *ConversionServiceTestSuite) TestStartConversion_DuplicateKeyReturnsExisting() {
	ctx := context.Background()
	req := startRequest()
	rate := testRate()
	quote := testQuote()

	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).Return(rate, nil).Once()
	suite.mockFeeSvc.On("CalculateFee", ctx, domain.FeeExchange, req.FromAmount, mock.AnythingOfType("time.Time")).Return(quote, nil).Once()

	existing := &domain.ConversionAudit{ConversionID: uuid.NewString(), Status: domain.ConversionSettling}
	suite.mockLedger.On("OpenConversion", ctx, mock.AnythingOfType("domain.ConversionAudit")).
		Return(existing, apperrors.ErrDuplicate).Once()

	record, err := suite.service.StartConversion(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Require().NotNil(record)
	suite.Equal(existing.ConversionID, record.ConversionID)
	// No side effects run again for a repeat request.
	suite.mockLedger.AssertNotCalled(suite.T(), "TransitionConversion")
}

func (suite *ConversionServiceTestSuite) TestStartConversion_NoRate() {
	ctx := context.Background()
	req := startRequest()

	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrNotFound).Once()

	record, err := suite.service.StartConversion(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(record)
	suite.mockLedger.AssertNotCalled(suite.T(), "OpenConversion")
}

func (suite *ConversionServiceTestSuite) TestStartConversion_FeeExceedsAmount() {
	ctx := context.Background()
	req := startRequest()
	req.FromAmount = decimal.NewFromInt(100)
	rate := testRate()
	quote := testQuote() // fee 250 > amount 100

	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).Return(rate, nil).Once()
	suite.mockFeeSvc.On("CalculateFee", ctx, domain.FeeExchange, req.FromAmount, mock.AnythingOfType("time.Time")).Return(quote, nil).Once()

	record, err := suite.service.StartConversion(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(record)
	suite.mockLedger.AssertNotCalled(suite.T(), "OpenConversion")
}

func (suite *ConversionServiceTestSuite) TestStartConversion_SameCurrency() {
	ctx := context.Background()
	req := startRequest()
	req.ToCurrencyCode = "ngn"

	record, err := suite.service.StartConversion(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(record)
	suite.mockRateSvc.AssertNotCalled(suite.T(), "ResolveRate")
}

func (suite *ConversionServiceTestSuite) TestStartConversion_ParksBehindTrustline() {
	ctx := context.Background()
	actorID := uuid.NewString()
	req := startRequest()
	req.AssetIssuer = "GISSUER"
	rate := testRate()
	quote := testQuote()
	txHash := "deadbeef"

	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).Return(rate, nil).Once()
	suite.mockFeeSvc.On("CalculateFee", ctx, domain.FeeExchange, req.FromAmount, mock.AnythingOfType("time.Time")).Return(quote, nil).Once()

	opened := &domain.ConversionAudit{
		ConversionID:  uuid.NewString(),
		WalletAddress: req.WalletAddress,
		Status:        domain.ConversionPending,
	}
	suite.mockLedger.On("OpenConversion", ctx, mock.AnythingOfType("domain.ConversionAudit")).Return(opened, nil).Once()
	suite.mockHorizon.On("HasTrustline", ctx, req.WalletAddress, "USDC", "GISSUER").Return(false, nil).Once()

	op := &domain.TrustlineOperation{OperationID: uuid.NewString(), Status: domain.TrustlineRequested}
	suite.mockTrustline.On("RequestTrustline", ctx, req.WalletAddress, "USDC", "GISSUER", domain.TrustlineEstablish, actorID).
		Return(op, nil).Once()
	suite.mockHorizon.On("SubmitTrustline", ctx, req.WalletAddress, "USDC", "GISSUER", domain.TrustlineEstablish).
		Return(txHash, nil).Once()
	suite.mockTrustline.On("TransitionTrustline", ctx, op.OperationID,
		domain.TrustlineRequested, domain.TrustlineSubmitted,
		mock.MatchedBy(func(u portsrepo.TrustlineUpdate) bool {
			return u.TransactionHash != nil && *u.TransactionHash == txHash
		}), actorID).Return(&domain.TrustlineOperation{OperationID: op.OperationID, Status: domain.TrustlineSubmitted}, nil).Once()

	parked := &domain.ConversionAudit{ConversionID: opened.ConversionID, Status: domain.ConversionAwaitingTrustline}
	suite.mockLedger.On("TransitionConversion", ctx, opened.ConversionID,
		domain.ConversionPending, domain.ConversionAwaitingTrustline,
		mock.MatchedBy(func(d portsrepo.TransitionDetail) bool {
			return d.TrustlineOpID != nil && *d.TrustlineOpID == op.OperationID
		}), actorID).Return(parked, nil).Once()

	record, err := suite.service.StartConversion(ctx, req, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionAwaitingTrustline, record.Status)
	suite.mockLedger.AssertExpectations(suite.T())
	suite.mockTrustline.AssertExpectations(suite.T())
	suite.mockHorizon.AssertExpectations(suite.T())
}

func (suite *ConversionServiceTestSuite) TestStartConversion_RejectPolicyFailsImmediately() {
	suite.withRejectPolicy()
	ctx := context.Background()
	actorID := uuid.NewString()
	req := startRequest()
	req.AssetIssuer = "GISSUER"
	rate := testRate()
	quote := testQuote()

	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).Return(rate, nil).Once()
	suite.mockFeeSvc.On("CalculateFee", ctx, domain.FeeExchange, req.FromAmount, mock.AnythingOfType("time.Time")).Return(quote, nil).Once()

	opened := &domain.ConversionAudit{ConversionID: uuid.NewString(), WalletAddress: req.WalletAddress, Status: domain.ConversionPending}
	suite.mockLedger.On("OpenConversion", ctx, mock.AnythingOfType("domain.ConversionAudit")).Return(opened, nil).Once()
	suite.mockHorizon.On("HasTrustline", ctx, req.WalletAddress, "USDC", "GISSUER").Return(false, nil).Once()

	failed := &domain.ConversionAudit{ConversionID: opened.ConversionID, Status: domain.ConversionFailed}
	suite.mockLedger.On("TransitionConversion", ctx, opened.ConversionID,
		domain.ConversionPending, domain.ConversionFailed,
		withReason(domain.ReasonTrustlineDenied), actorID).Return(failed, nil).Once()

	record, err := suite.service.StartConversion(ctx, req, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionFailed, record.Status)
	suite.mockTrustline.AssertNotCalled(suite.T(), "RequestTrustline")
}

func (suite *ConversionServiceTestSuite) TestStartConversion_SubmissionFailureFailsBoth() {
	ctx := context.Background()
	actorID := uuid.NewString()
	req := startRequest()
	req.AssetIssuer = "GISSUER"
	rate := testRate()
	quote := testQuote()

	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).Return(rate, nil).Once()
	suite.mockFeeSvc.On("CalculateFee", ctx, domain.FeeExchange, req.FromAmount, mock.AnythingOfType("time.Time")).Return(quote, nil).Once()

	opened := &domain.ConversionAudit{ConversionID: uuid.NewString(), WalletAddress: req.WalletAddress, Status: domain.ConversionPending}
	suite.mockLedger.On("OpenConversion", ctx, mock.AnythingOfType("domain.ConversionAudit")).Return(opened, nil).Once()
	suite.mockHorizon.On("HasTrustline", ctx, req.WalletAddress, "USDC", "GISSUER").Return(false, nil).Once()

	op := &domain.TrustlineOperation{OperationID: uuid.NewString(), Status: domain.TrustlineRequested}
	suite.mockTrustline.On("RequestTrustline", ctx, req.WalletAddress, "USDC", "GISSUER", domain.TrustlineEstablish, actorID).
		Return(op, nil).Once()
	suite.mockHorizon.On("SubmitTrustline", ctx, req.WalletAddress, "USDC", "GISSUER", domain.TrustlineEstablish).
		Return("", errors.New("signer unavailable")).Once()
	suite.mockTrustline.On("TransitionTrustline", ctx, op.OperationID,
		domain.TrustlineRequested, domain.TrustlineFailed,
		mock.MatchedBy(func(u portsrepo.TrustlineUpdate) bool { return u.ErrorMessage != "" }), actorID).
		Return(&domain.TrustlineOperation{OperationID: op.OperationID, Status: domain.TrustlineFailed}, nil).Once()

	failed := &domain.ConversionAudit{ConversionID: opened.ConversionID, Status: domain.ConversionFailed}
	suite.mockLedger.On("TransitionConversion", ctx, opened.ConversionID,
		domain.ConversionPending, domain.ConversionFailed,
		withReason(domain.ReasonTrustlineDenied), actorID).Return(failed, nil).Once()

	record, err := suite.service.StartConversion(ctx, req, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionFailed, record.Status)
	suite.mockTrustline.AssertExpectations(suite.T())
}

// --- ResumeAfterTrustline ---

func awaitingRecord(opID string) *domain.ConversionAudit {
	return &domain.ConversionAudit{
		ConversionID:         uuid.NewString(),
		WalletAddress:        "GABC123",
		FromCurrencyCode:     "NGN",
		ToCurrencyCode:       "USDC",
		RateID:               uuid.NewString(),
		Status:               domain.ConversionAwaitingTrustline,
		TrustlineOperationID: &opID,
		Deadline:             time.Now().UTC().Add(10 * time.Minute),
	}
}

func (suite *ConversionServiceTestSuite) TestResumeAfterTrustline_ConfirmedLocksRate() {
	ctx := context.Background()
	actorID := uuid.NewString()
	opID := uuid.NewString()
	record := awaitingRecord(opID)

	suite.mockLedger.On("GetConversion", ctx, record.ConversionID).Return(record, nil).Once()
	suite.mockTrustline.On("GetTrustlineOperation", ctx, opID).
		Return(&domain.TrustlineOperation{OperationID: opID, Status: domain.TrustlineConfirmed}, nil).Once()
	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).
		Return(&domain.ExchangeRate{RateID: record.RateID, Rate: decimal.NewFromFloat(0.00065)}, nil).Once()

	locked := &domain.ConversionAudit{ConversionID: record.ConversionID, Status: domain.ConversionRateLocked}
	suite.mockLedger.On("TransitionConversion", ctx, record.ConversionID,
		domain.ConversionAwaitingTrustline, domain.ConversionRateLocked,
		portsrepo.TransitionDetail{}, actorID).Return(locked, nil).Once()

	result, err := suite.service.ResumeAfterTrustline(ctx, record.ConversionID, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionRateLocked, result.Status)
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *ConversionServiceTestSuite) TestResumeAfterTrustline_RateWindowRolledOver() {
	ctx := context.Background()
	actorID := uuid.NewString()
	opID := uuid.NewString()
	record := awaitingRecord(opID)

	suite.mockLedger.On("GetConversion", ctx, record.ConversionID).Return(record, nil).Once()
	suite.mockTrustline.On("GetTrustlineOperation", ctx, opID).
		Return(&domain.TrustlineOperation{OperationID: opID, Status: domain.TrustlineConfirmed}, nil).Once()
	// A different window now covers the pair: never settle at the stale price.
	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).
		Return(&domain.ExchangeRate{RateID: uuid.NewString(), Rate: decimal.NewFromFloat(0.00070)}, nil).Once()

	failed := &domain.ConversionAudit{ConversionID: record.ConversionID, Status: domain.ConversionFailed}
	suite.mockLedger.On("TransitionConversion", ctx, record.ConversionID,
		domain.ConversionAwaitingTrustline, domain.ConversionFailed,
		withReason(domain.ReasonRateExpired), actorID).Return(failed, nil).Once()

	result, err := suite.service.ResumeAfterTrustline(ctx, record.ConversionID, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionFailed, result.Status)
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *ConversionServiceTestSuite) TestResumeAfterTrustline_TrustlineFailed() {
	ctx := context.Background()
	actorID := uuid.NewString()
	opID := uuid.NewString()
	record := awaitingRecord(opID)

	suite.mockLedger.On("GetConversion", ctx, record.ConversionID).Return(record, nil).Once()
	suite.mockTrustline.On("GetTrustlineOperation", ctx, opID).
		Return(&domain.TrustlineOperation{OperationID: opID, Status: domain.TrustlineFailed, ErrorMessage: "op_low_reserve"}, nil).Once()

	failed := &domain.ConversionAudit{ConversionID: record.ConversionID, Status: domain.ConversionFailed}
	suite.mockLedger.On("TransitionConversion", ctx, record.ConversionID,
		domain.ConversionAwaitingTrustline, domain.ConversionFailed,
		withReason(domain.ReasonTrustlineDenied), actorID).Return(failed, nil).Once()

	result, err := suite.service.ResumeAfterTrustline(ctx, record.ConversionID, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionFailed, result.Status)
	suite.mockRateSvc.AssertNotCalled(suite.T(), "ResolveRate")
}

func (suite *ConversionServiceTestSuite) TestResumeAfterTrustline_DeadlinePassed() {
	ctx := context.Background()
	actorID := uuid.NewString()
	opID := uuid.NewString()
	record := awaitingRecord(opID)
	record.Deadline = time.Now().UTC().Add(-time.Minute)

	suite.mockLedger.On("GetConversion", ctx, record.ConversionID).Return(record, nil).Once()

	failed := &domain.ConversionAudit{ConversionID: record.ConversionID, Status: domain.ConversionFailed}
	suite.mockLedger.On("TransitionConversion", ctx, record.ConversionID,
		domain.ConversionAwaitingTrustline, domain.ConversionFailed,
		withReason(domain.ReasonTimeout), actorID).Return(failed, nil).Once()

	result, err := suite.service.ResumeAfterTrustline(ctx, record.ConversionID, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionFailed, result.Status)
	suite.mockTrustline.AssertNotCalled(suite.T(), "GetTrustlineOperation")
}

func (suite *ConversionServiceTestSuite) TestResumeAfterTrustline_StillPending() {
	ctx := context.Background()
	opID := uuid.NewString()
	record := awaitingRecord(opID)

	suite.mockLedger.On("GetConversion", ctx, record.ConversionID).Return(record, nil).Once()
	suite.mockTrustline.On("GetTrustlineOperation", ctx, opID).
		Return(&domain.TrustlineOperation{OperationID: opID, AssetCode: "USDC", AssetIssuer: "GISSUER", Status: domain.TrustlineSubmitted}, nil).Once()
	suite.mockHorizon.On("HasTrustline", ctx, record.WalletAddress, "USDC", "GISSUER").Return(false, nil).Once()

	result, err := suite.service.ResumeAfterTrustline(ctx, record.ConversionID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(result)
	suite.mockRateSvc.AssertNotCalled(suite.T(), "ResolveRate")
}

func (suite *ConversionServiceTestSuite) TestResumeAfterTrustline_SubmittedButVisibleOnChain() {
	ctx := context.Background()
	actorID := uuid.NewString()
	opID := uuid.NewString()
	record := awaitingRecord(opID)

	suite.mockLedger.On("GetConversion", ctx, record.ConversionID).Return(record, nil).Once()
	suite.mockTrustline.On("GetTrustlineOperation", ctx, opID).
		Return(&domain.TrustlineOperation{OperationID: opID, AssetCode: "USDC", AssetIssuer: "GISSUER", Status: domain.TrustlineSubmitted}, nil).Once()
	suite.mockHorizon.On("HasTrustline", ctx, record.WalletAddress, "USDC", "GISSUER").Return(true, nil).Once()
	suite.mockTrustline.On("TransitionTrustline", ctx, opID,
		domain.TrustlineSubmitted, domain.TrustlineConfirmed,
		portsrepo.TrustlineUpdate{}, actorID).
		Return(&domain.TrustlineOperation{OperationID: opID, Status: domain.TrustlineConfirmed}, nil).Once()
	suite.mockRateSvc.On("ResolveRate", ctx, "NGN", "USDC", mock.AnythingOfType("time.Time")).
		Return(&domain.ExchangeRate{RateID: record.RateID, Rate: decimal.NewFromFloat(0.00065)}, nil).Once()

	locked := &domain.ConversionAudit{ConversionID: record.ConversionID, Status: domain.ConversionRateLocked}
	suite.mockLedger.On("TransitionConversion", ctx, record.ConversionID,
		domain.ConversionAwaitingTrustline, domain.ConversionRateLocked,
		portsrepo.TransitionDetail{}, actorID).Return(locked, nil).Once()

	result, err := suite.service.ResumeAfterTrustline(ctx, record.ConversionID, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionRateLocked, result.Status)
	suite.mockHorizon.AssertExpectations(suite.T())
}

func (suite *ConversionServiceTestSuite) TestResumeAfterTrustline_WrongStatus() {
	ctx := context.Background()
	record := &domain.ConversionAudit{ConversionID: uuid.NewString(), Status: domain.ConversionSettling}

	suite.mockLedger.On("GetConversion", ctx, record.ConversionID).Return(record, nil).Once()

	result, err := suite.service.ResumeAfterTrustline(ctx, record.ConversionID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.Nil(result)
}

// --- Settlement callbacks ---

func (suite *ConversionServiceTestSuite) TestMarkSubmitted_Success() {
	ctx := context.Background()
	conversionID := uuid.NewString()
	actorID := uuid.NewString()
	txRef := "stellar:abcd1234"

	settling := &domain.ConversionAudit{ConversionID: conversionID, Status: domain.ConversionSettling}
	suite.mockLedger.On("TransitionConversion", ctx, conversionID,
		domain.ConversionRateLocked, domain.ConversionSettling,
		mock.MatchedBy(func(d portsrepo.TransitionDetail) bool {
			return d.TransactionRef != nil && *d.TransactionRef == txRef
		}), actorID).Return(settling, nil).Once()

	record, err := suite.service.MarkSubmitted(ctx, conversionID, txRef, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionSettling, record.Status)
}

func (suite *ConversionServiceTestSuite) TestMarkSubmitted_MissingRef() {
	ctx := context.Background()

	record, err := suite.service.MarkSubmitted(ctx, uuid.NewString(), "", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(record)
	suite.mockLedger.AssertNotCalled(suite.T(), "TransitionConversion")
}

func (suite *ConversionServiceTestSuite) TestFailConversion_UnknownReason() {
	ctx := context.Background()

	record, err := suite.service.FailConversion(ctx, uuid.NewString(), domain.FailureReason("SOLAR_FLARE"), "", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(record)
	suite.mockLedger.AssertNotCalled(suite.T(), "GetConversion")
}

func (suite *ConversionServiceTestSuite) TestFailConversion_AlreadyTerminal() {
	ctx := context.Background()
	conversionID := uuid.NewString()

	suite.mockLedger.On("GetConversion", ctx, conversionID).
		Return(&domain.ConversionAudit{ConversionID: conversionID, Status: domain.ConversionCompleted}, nil).Once()

	record, err := suite.service.FailConversion(ctx, conversionID, domain.ReasonSettlementError, "tx bounced", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.Nil(record)
	suite.mockLedger.AssertNotCalled(suite.T(), "TransitionConversion")
}

// --- ExpireOverdue ---

func (suite *ConversionServiceTestSuite) TestExpireOverdue_CountsAndSkipsRaces() {
	ctx := context.Background()
	actorID := uuid.NewString()
	deadline := time.Now().UTC().Add(-time.Minute)
	overdue := []domain.ConversionAudit{
		{ConversionID: uuid.NewString(), Status: domain.ConversionRateLocked, Deadline: deadline},
		{ConversionID: uuid.NewString(), Status: domain.ConversionAwaitingTrustline, Deadline: deadline},
		{ConversionID: uuid.NewString(), Status: domain.ConversionSettling, Deadline: deadline},
	}

	suite.mockLedger.On("ListOverdueConversions", ctx, mock.AnythingOfType("time.Time"), 100).Return(overdue, nil).Once()

	failed := &domain.ConversionAudit{Status: domain.ConversionFailed}
	suite.mockLedger.On("TransitionConversion", ctx, overdue[0].ConversionID,
		domain.ConversionRateLocked, domain.ConversionFailed,
		withReason(domain.ReasonTimeout), actorID).Return(failed, nil).Once()
	// Second record transitioned concurrently; the sweep moves on.
	suite.mockLedger.On("TransitionConversion", ctx, overdue[1].ConversionID,
		domain.ConversionAwaitingTrustline, domain.ConversionFailed,
		withReason(domain.ReasonTimeout), actorID).Return(nil, apperrors.ErrConcurrentModification).Once()
	suite.mockLedger.On("TransitionConversion", ctx, overdue[2].ConversionID,
		domain.ConversionSettling, domain.ConversionFailed,
		withReason(domain.ReasonTimeout), actorID).Return(failed, nil).Once()

	count, err := suite.service.ExpireOverdue(ctx, 100, actorID)

	suite.Require().NoError(err)
	suite.Equal(2, count)
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *ConversionServiceTestSuite) TestExpireOverdue_NothingOverdue() {
	ctx := context.Background()

	suite.mockLedger.On("ListOverdueConversions", ctx, mock.AnythingOfType("time.Time"), 100).
		Return([]domain.ConversionAudit{}, nil).Once()

	count, err := suite.service.ExpireOverdue(ctx, 100, uuid.NewString())

	suite.Require().NoError(err)
	suite.Zero(count)
}

func TestConversionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConversionServiceTestSuite))
}
