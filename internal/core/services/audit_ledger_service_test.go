package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ConversionAuditRepository ---
type MockConversionAuditRepository struct {
	mock.Mock
}

func (m *MockConversionAuditRepository) FindConversionByID(ctx context.Context, conversionID string) (*domain.ConversionAudit, error) {
	args := m.Called(ctx, conversionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionAudit), args.Error(1)
}

func (m *MockConversionAuditRepository) FindConversionByIdempotencyKey(ctx context.Context, key string) (*domain.ConversionAudit, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionAudit), args.Error(1)
}

func (m *MockConversionAuditRepository) ListConversions(ctx context.Context, filter portsrepo.ConversionFilter, limit int, pageToken string) ([]domain.ConversionAudit, string, error) {
	args := m.Called(ctx, filter, limit, pageToken)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.ConversionAudit), args.String(1), args.Error(2)
}

func (m *MockConversionAuditRepository) ListOverdueConversions(ctx context.Context, now time.Time, limit int) ([]domain.ConversionAudit, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversionAudit), args.Error(1)
}

func (m *MockConversionAuditRepository) CreateConversion(ctx context.Context, audit domain.ConversionAudit) (*domain.ConversionAudit, error) {
	args := m.Called(ctx, audit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionAudit), args.Error(1)
}

func (m *MockConversionAuditRepository) UpdateConversionStatus(ctx context.Context, conversionID string, expected, next domain.ConversionStatus, detail portsrepo.TransitionDetail, updaterID string, at time.Time) (*domain.ConversionAudit, error) {
	args := m.Called(ctx, conversionID, expected, next, detail, updaterID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionAudit), args.Error(1)
}

// --- Test Suite ---
type AuditLedgerServiceTestSuite struct {
	suite.Suite
	mockAuditRepo *MockConversionAuditRepository
	service       portssvc.AuditLedgerSvcFacade
}

func (suite *AuditLedgerServiceTestSuite) SetupTest() {
	suite.mockAuditRepo = new(MockConversionAuditRepository)
	suite.service = services.NewAuditLedgerService(suite.mockAuditRepo)
}

func pendingAudit() domain.ConversionAudit {
	return domain.ConversionAudit{
		IdempotencyKey:   uuid.NewString(),
		UserID:           uuid.NewString(),
		WalletAddress:    "GABC123",
		FromCurrencyCode: "NGN",
		ToCurrencyCode:   "USDC",
		FromAmount:       decimal.NewFromInt(10000),
		ToAmount:         decimal.NewFromFloat(6.34),
		Rate:             decimal.NewFromFloat(0.00065),
		RateID:           uuid.NewString(),
		FeeAmount:        decimal.NewFromInt(250),
		FeeCurrencyCode:  "NGN",
		Deadline:         time.Now().UTC().Add(15 * time.Minute),
	}
}

// --- Test Cases ---

func (suite *AuditLedgerServiceTestSuite) TestOpenConversion_Success() {
	ctx := context.Background()
	audit := pendingAudit()

	suite.mockAuditRepo.On("CreateConversion", ctx, mock.MatchedBy(func(a domain.ConversionAudit) bool {
		return a.Status == domain.ConversionPending && a.ConversionID != "" && a.IdempotencyKey == audit.IdempotencyKey
	})).Return(&audit, nil).Once()

	created, err := suite.service.OpenConversion(ctx, audit)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditLedgerServiceTestSuite) TestOpenConversion_DuplicateKeyReturnsExisting() {
	ctx := context.Background()
	audit := pendingAudit()
	existing := audit
	existing.ConversionID = uuid.NewString()
	existing.Status = domain.ConversionRateLocked

	suite.mockAuditRepo.On("CreateConversion", ctx, mock.AnythingOfType("domain.ConversionAudit")).
		Return(&existing, apperrors.ErrDuplicate).Once()

	created, err := suite.service.OpenConversion(ctx, audit)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Require().NotNil(created)
	suite.Equal(existing.ConversionID, created.ConversionID)
	suite.Equal(domain.ConversionRateLocked, created.Status)
}

func (suite *AuditLedgerServiceTestSuite) TestOpenConversion_MissingIdempotencyKey() {
	ctx := context.Background()
	audit := pendingAudit()
	audit.IdempotencyKey = ""

	created, err := suite.service.OpenConversion(ctx, audit)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "CreateConversion")
}

func (suite *AuditLedgerServiceTestSuite) TestOpenConversion_NonPositiveAmount() {
	ctx := context.Background()
	audit := pendingAudit()
	audit.FromAmount = decimal.Zero

	created, err := suite.service.OpenConversion(ctx, audit)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
}

func (suite *AuditLedgerServiceTestSuite) TestTransitionConversion_Success() {
	ctx := context.Background()
	conversionID := uuid.NewString()
	actorID := uuid.NewString()
	updated := pendingAudit()
	updated.ConversionID = conversionID
	updated.Status = domain.ConversionRateLocked

	suite.mockAuditRepo.On("UpdateConversionStatus", ctx, conversionID,
		domain.ConversionPending, domain.ConversionRateLocked,
		portsrepo.TransitionDetail{}, actorID, mock.AnythingOfType("time.Time")).
		Return(&updated, nil).Once()

	record, err := suite.service.TransitionConversion(ctx, conversionID,
		domain.ConversionPending, domain.ConversionRateLocked, portsrepo.TransitionDetail{}, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionRateLocked, record.Status)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditLedgerServiceTestSuite) TestTransitionConversion_FromTerminal() {
	ctx := context.Background()

	record, err := suite.service.TransitionConversion(ctx, uuid.NewString(),
		domain.ConversionCompleted, domain.ConversionFailed, portsrepo.TransitionDetail{}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.Nil(record)
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "UpdateConversionStatus")
}

func (suite *AuditLedgerServiceTestSuite) TestTransitionConversion_DisallowedPair() {
	ctx := context.Background()

	// Pending may not jump straight to Settling.
	record, err := suite.service.TransitionConversion(ctx, uuid.NewString(),
		domain.ConversionPending, domain.ConversionSettling, portsrepo.TransitionDetail{}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.Nil(record)
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "UpdateConversionStatus")
}

func (suite *AuditLedgerServiceTestSuite) TestTransitionConversion_FailedRequiresReason() {
	ctx := context.Background()

	record, err := suite.service.TransitionConversion(ctx, uuid.NewString(),
		domain.ConversionSettling, domain.ConversionFailed, portsrepo.TransitionDetail{}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(record)
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "UpdateConversionStatus")
}

func (suite *AuditLedgerServiceTestSuite) TestTransitionConversion_LostRace() {
	ctx := context.Background()
	conversionID := uuid.NewString()

	suite.mockAuditRepo.On("UpdateConversionStatus", ctx, conversionID,
		domain.ConversionPending, domain.ConversionRateLocked,
		portsrepo.TransitionDetail{}, mock.Anything, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrConcurrentModification).Once()

	record, err := suite.service.TransitionConversion(ctx, conversionID,
		domain.ConversionPending, domain.ConversionRateLocked, portsrepo.TransitionDetail{}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConcurrentModification)
	suite.Nil(record)
}

func (suite *AuditLedgerServiceTestSuite) TestListConversions_DefaultsLimit() {
	ctx := context.Background()
	filter := portsrepo.ConversionFilter{UserID: uuid.NewString()}

	suite.mockAuditRepo.On("ListConversions", ctx, filter, 50, "").
		Return([]domain.ConversionAudit{}, "", nil).Once()

	records, nextToken, err := suite.service.ListConversions(ctx, filter, 0, "")

	suite.Require().NoError(err)
	suite.Empty(records)
	suite.Empty(nextToken)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func TestAuditLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditLedgerServiceTestSuite))
}
