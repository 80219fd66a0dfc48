package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/core/services"
	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock FeeRepository ---
type MockFeeRepository struct {
	mock.Mock
}

func (m *MockFeeRepository) FindActiveFeeStructure(ctx context.Context, feeType domain.FeeType, at time.Time) (*domain.FeeStructure, error) {
	args := m.Called(ctx, feeType, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeStructure), args.Error(1)
}

func (m *MockFeeRepository) FindFeeStructureByID(ctx context.Context, feeID string) (*domain.FeeStructure, error) {
	args := m.Called(ctx, feeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeStructure), args.Error(1)
}

func (m *MockFeeRepository) ListFeeStructures(ctx context.Context, feeType domain.FeeType, limit int) ([]domain.FeeStructure, error) {
	args := m.Called(ctx, feeType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeeStructure), args.Error(1)
}

func (m *MockFeeRepository) SaveFeeStructure(ctx context.Context, structure domain.FeeStructure) error {
	args := m.Called(ctx, structure)
	return args.Error(0)
}

func (m *MockFeeRepository) DeactivateFeeStructure(ctx context.Context, feeID string, updaterID string, at time.Time) (*domain.FeeStructure, error) {
	args := m.Called(ctx, feeID, updaterID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeStructure), args.Error(1)
}

// --- Test Suite ---
type FeeServiceTestSuite struct {
	suite.Suite
	mockFeeRepo *MockFeeRepository
	service     portssvc.FeeSvcFacade
}

func (suite *FeeServiceTestSuite) SetupTest() {
	suite.mockFeeRepo = new(MockFeeRepository)
	suite.service = services.NewFeeService(suite.mockFeeRepo)
}

// --- Test Cases ---

func (suite *FeeServiceTestSuite) TestCreateFeeStructure_Success() {
	ctx := context.Background()
	creatorID := uuid.NewString()
	req := dto.CreateFeeStructureRequest{
		FeeType:       "exchange",
		RateBps:       150,
		FlatFee:       decimal.NewFromInt(100),
		CurrencyCode:  "ngn",
		EffectiveFrom: time.Now().UTC(),
	}

	suite.mockFeeRepo.On("SaveFeeStructure", ctx, mock.AnythingOfType("domain.FeeStructure")).Return(nil).Once()

	structure, err := suite.service.CreateFeeStructure(ctx, req, creatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(structure)
	suite.NotEmpty(structure.FeeID)
	suite.Equal(domain.FeeExchange, structure.FeeType)
	suite.Equal("NGN", structure.CurrencyCode)
	suite.True(structure.IsActive)
	suite.mockFeeRepo.AssertExpectations(suite.T())
}

func (suite *FeeServiceTestSuite) TestCreateFeeStructure_UnknownType() {
	ctx := context.Background()
	req := dto.CreateFeeStructureRequest{
		FeeType:       "gratuity",
		EffectiveFrom: time.Now().UTC(),
	}

	structure, err := suite.service.CreateFeeStructure(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(structure)
	suite.mockFeeRepo.AssertNotCalled(suite.T(), "SaveFeeStructure")
}

func (suite *FeeServiceTestSuite) TestCreateFeeStructure_NegativeBps() {
	ctx := context.Background()
	req := dto.CreateFeeStructureRequest{
		FeeType:       "exchange",
		RateBps:       -25,
		EffectiveFrom: time.Now().UTC(),
	}

	structure, err := suite.service.CreateFeeStructure(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(structure)
	suite.mockFeeRepo.AssertNotCalled(suite.T(), "SaveFeeStructure", mock.Anything, mock.Anything)
}

func (suite *FeeServiceTestSuite) TestCreateFeeStructure_MinAboveMax() {
	ctx := context.Background()
	minFee := decimal.NewFromInt(500)
	maxFee := decimal.NewFromInt(100)
	req := dto.CreateFeeStructureRequest{
		FeeType:       "exchange",
		MinFee:        &minFee,
		MaxFee:        &maxFee,
		EffectiveFrom: time.Now().UTC(),
	}

	structure, err := suite.service.CreateFeeStructure(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(structure)
}

func (suite *FeeServiceTestSuite) TestCalculateFee_BpsPlusFlat() {
	ctx := context.Background()
	at := time.Now().UTC()
	structure := &domain.FeeStructure{
		FeeID:         uuid.NewString(),
		FeeType:       domain.FeeExchange,
		RateBps:       150, // 1.5%
		FlatFee:       decimal.NewFromInt(100),
		CurrencyCode:  "NGN",
		IsActive:      true,
		EffectiveFrom: at.Add(-time.Hour),
	}

	suite.mockFeeRepo.On("FindActiveFeeStructure", ctx, domain.FeeExchange, at).Return(structure, nil).Once()

	quote, err := suite.service.CalculateFee(ctx, domain.FeeExchange, decimal.NewFromInt(10000), at)

	suite.Require().NoError(err)
	// 10000 * 1.5% + 100 = 250
	suite.True(quote.Fee.Equal(decimal.NewFromInt(250)), "got %s", quote.Fee)
	suite.Equal(structure.FeeID, quote.FeeID)
	suite.mockFeeRepo.AssertExpectations(suite.T())
}

func (suite *FeeServiceTestSuite) TestCalculateFee_ClampedToMin() {
	ctx := context.Background()
	at := time.Now().UTC()
	minFee := decimal.NewFromInt(200)
	structure := &domain.FeeStructure{
		FeeID:         uuid.NewString(),
		FeeType:       domain.FeeExchange,
		RateBps:       10, // 0.1%
		MinFee:        &minFee,
		EffectiveFrom: at.Add(-time.Hour),
	}

	suite.mockFeeRepo.On("FindActiveFeeStructure", ctx, domain.FeeExchange, at).Return(structure, nil).Once()

	quote, err := suite.service.CalculateFee(ctx, domain.FeeExchange, decimal.NewFromInt(1000), at)

	suite.Require().NoError(err)
	// 1000 * 0.1% = 1, clamped up to 200
	suite.True(quote.Fee.Equal(minFee), "got %s", quote.Fee)
}

func (suite *FeeServiceTestSuite) TestCalculateFee_ClampedToMax() {
	ctx := context.Background()
	at := time.Now().UTC()
	maxFee := decimal.NewFromInt(500)
	structure := &domain.FeeStructure{
		FeeID:         uuid.NewString(),
		FeeType:       domain.FeeExchange,
		RateBps:       1000, // 10%
		MaxFee:        &maxFee,
		EffectiveFrom: at.Add(-time.Hour),
	}

	suite.mockFeeRepo.On("FindActiveFeeStructure", ctx, domain.FeeExchange, at).Return(structure, nil).Once()

	quote, err := suite.service.CalculateFee(ctx, domain.FeeExchange, decimal.NewFromInt(100000), at)

	suite.Require().NoError(err)
	// 100000 * 10% = 10000, clamped down to 500
	suite.True(quote.Fee.Equal(maxFee), "got %s", quote.Fee)
}

func (suite *FeeServiceTestSuite) TestCalculateFee_NoActiveStructure() {
	ctx := context.Background()
	at := time.Now().UTC()

	suite.mockFeeRepo.On("FindActiveFeeStructure", ctx, domain.FeeExchange, at).Return(nil, apperrors.ErrNotFound).Once()

	quote, err := suite.service.CalculateFee(ctx, domain.FeeExchange, decimal.NewFromInt(1000), at)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(quote)
}

func (suite *FeeServiceTestSuite) TestCalculateFee_NegativeAmount() {
	ctx := context.Background()

	quote, err := suite.service.CalculateFee(ctx, domain.FeeExchange, decimal.NewFromInt(-5), time.Now().UTC())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(quote)
	suite.mockFeeRepo.AssertNotCalled(suite.T(), "FindActiveFeeStructure")
}

func (suite *FeeServiceTestSuite) TestDeactivateFeeStructure_Success() {
	ctx := context.Background()
	feeID := uuid.NewString()
	updaterID := uuid.NewString()
	deactivated := &domain.FeeStructure{FeeID: feeID, IsActive: false}

	suite.mockFeeRepo.On("DeactivateFeeStructure", ctx, feeID, updaterID, mock.AnythingOfType("time.Time")).
		Return(deactivated, nil).Once()

	structure, err := suite.service.DeactivateFeeStructure(ctx, feeID, updaterID)

	suite.Require().NoError(err)
	suite.False(structure.IsActive)
	suite.mockFeeRepo.AssertExpectations(suite.T())
}

func (suite *FeeServiceTestSuite) TestDeactivateFeeStructure_BadID() {
	ctx := context.Background()

	structure, err := suite.service.DeactivateFeeStructure(ctx, "not-a-uuid", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(structure)
	suite.mockFeeRepo.AssertNotCalled(suite.T(), "DeactivateFeeStructure")
}

func TestFeeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FeeServiceTestSuite))
}
