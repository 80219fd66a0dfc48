package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/afripay/conversion_backend/internal/middleware"
)

// TrustlinePolicy decides what StartConversion does when the destination
// asset has no trustline on the wallet.
type TrustlinePolicy string

const (
	// TrustlinePolicyAuto submits an establish operation and parks the
	// conversion in AwaitingTrustline until the outcome is known.
	TrustlinePolicyAuto TrustlinePolicy = "auto"
	// TrustlinePolicyReject fails the conversion immediately with
	// TrustlineDenied.
	TrustlinePolicyReject TrustlinePolicy = "reject"
)

// conversionService orchestrates a conversion end to end: it composes rate
// and fee resolution, the audit ledger, the trustline tracker and the
// blockchain client, but holds no state of its own. Everything durable lives
// in the ledger.
type conversionService struct {
	ledger          portssvc.AuditLedgerSvcFacade
	rateSvc         portssvc.RateResolverSvc
	feeSvc          portssvc.FeeResolverSvc
	trustlineSvc    portssvc.TrustlineSvcFacade
	horizon         portssvc.HorizonClient
	trustlinePolicy TrustlinePolicy
	maxWait         time.Duration
}

// NewConversionService creates the conversion orchestrator. maxWait bounds
// how long a record may stay non-terminal before the expiry sweep fails it
// with Timeout.
func NewConversionService(
	ledger portssvc.AuditLedgerSvcFacade,
	rateSvc portssvc.RateResolverSvc,
	feeSvc portssvc.FeeResolverSvc,
	trustlineSvc portssvc.TrustlineSvcFacade,
	horizon portssvc.HorizonClient,
	trustlinePolicy TrustlinePolicy,
	maxWait time.Duration,
) portssvc.ConversionSvcFacade {
	if trustlinePolicy == "" {
		trustlinePolicy = TrustlinePolicyAuto
	}
	if maxWait <= 0 {
		maxWait = 15 * time.Minute
	}
	return &conversionService{
		ledger:          ledger,
		rateSvc:         rateSvc,
		feeSvc:          feeSvc,
		trustlineSvc:    trustlineSvc,
		horizon:         horizon,
		trustlinePolicy: trustlinePolicy,
		maxWait:         maxWait,
	}
}

var _ portssvc.ConversionSvcFacade = (*conversionService)(nil)

// StartConversion resolves the rate and fee at this instant, opens the audit
// record with those snapshots, then either locks the rate or parks the record
// behind a trustline operation. The snapshots never change afterwards; a
// record that cannot lock in time fails, it is never silently repriced.
func (s *conversionService) StartConversion(ctx context.Context, req dto.StartConversionRequest, actorID string) (*domain.ConversionAudit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	from := strings.ToUpper(req.FromCurrencyCode)
	to := strings.ToUpper(req.ToCurrencyCode)
	if from == to {
		return nil, fmt.Errorf("%w: from and to currency must differ", apperrors.ErrValidation)
	}
	if req.FromAmount.IsNegative() || req.FromAmount.IsZero() {
		return nil, fmt.Errorf("%w: conversion amount must be positive", apperrors.ErrValidation)
	}
	feeType := domain.FeeType(req.FeeType)
	if req.FeeType == "" {
		feeType = domain.FeeExchange
	}
	if !feeType.IsValid() {
		return nil, fmt.Errorf("%w: unknown fee type %q", apperrors.ErrValidation, req.FeeType)
	}

	rate, err := s.rateSvc.ResolveRate(ctx, from, to, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rate for %s/%s: %w", from, to, err)
	}

	quote, err := s.feeSvc.CalculateFee(ctx, feeType, req.FromAmount, now)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate %s fee: %w", feeType, err)
	}

	net := req.FromAmount.Sub(quote.Fee)
	if !net.IsPositive() {
		return nil, fmt.Errorf("%w: fee %s exceeds conversion amount %s", apperrors.ErrValidation, quote.Fee, req.FromAmount)
	}

	feeCurrency := quote.CurrencyCode
	if feeCurrency == "" {
		feeCurrency = from
	}
	audit := domain.ConversionAudit{
		IdempotencyKey:   req.IdempotencyKey,
		UserID:           req.UserID,
		WalletAddress:    req.WalletAddress,
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		FromAmount:       req.FromAmount,
		ToAmount:         net.Mul(rate.Rate),
		Rate:             rate.Rate,
		RateID:           rate.RateID,
		FeeAmount:        quote.Fee,
		FeeCurrencyCode:  feeCurrency,
		Provider:         req.Provider,
		Metadata:         req.Metadata,
		Deadline:         now.Add(s.maxWait),
		AuditFields: domain.AuditFields{
			CreatedBy:     actorID,
			LastUpdatedBy: actorID,
		},
	}

	record, err := s.ledger.OpenConversion(ctx, audit)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Repeat of an earlier request: hand back the record opened
			// first, side effects already happened (or will) under that one.
			return record, err
		}
		return nil, err
	}

	needsTrustline, err := s.destinationNeedsTrustline(ctx, req.WalletAddress, to, req.AssetIssuer)
	if err != nil {
		logger.Error("Failed to check destination trustline",
			slog.String("conversion_id", record.ConversionID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check trustline for %s: %w", to, err)
	}

	if !needsTrustline {
		return s.ledger.TransitionConversion(ctx, record.ConversionID,
			domain.ConversionPending, domain.ConversionRateLocked, portsrepo.TransitionDetail{}, actorID)
	}

	if s.trustlinePolicy == TrustlinePolicyReject {
		reason := domain.ReasonTrustlineDenied
		return s.ledger.TransitionConversion(ctx, record.ConversionID,
			domain.ConversionPending, domain.ConversionFailed,
			portsrepo.TransitionDetail{
				FailureReason: &reason,
				FailureDetail: fmt.Sprintf("wallet has no %s trustline and automatic establishment is disabled", to),
			}, actorID)
	}

	return s.establishAndPark(ctx, record, to, req.AssetIssuer, actorID)
}

// destinationNeedsTrustline reports whether settling into the destination
// asset requires a trustline the wallet does not yet carry. Fiat legs and
// the native asset never do.
func (s *conversionService) destinationNeedsTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string) (bool, error) {
	if assetIssuer == "" {
		return false, nil
	}
	has, err := s.horizon.HasTrustline(ctx, walletAddress, assetCode, assetIssuer)
	if err != nil {
		return false, err
	}
	return !has, nil
}

// establishAndPark submits an establish operation for the destination asset
// and parks the conversion in AwaitingTrustline pointing at it. A submission
// failure fails both records.
func (s *conversionService) establishAndPark(ctx context.Context, record *domain.ConversionAudit, assetCode, assetIssuer, actorID string) (*domain.ConversionAudit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	op, err := s.trustlineSvc.RequestTrustline(ctx, record.WalletAddress, assetCode, assetIssuer, domain.TrustlineEstablish, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to request trustline for conversion %s: %w", record.ConversionID, err)
	}

	txHash, submitErr := s.horizon.SubmitTrustline(ctx, record.WalletAddress, assetCode, assetIssuer, domain.TrustlineEstablish)
	if submitErr != nil {
		logger.Error("Trustline submission failed",
			slog.String("conversion_id", record.ConversionID),
			slog.String("operation_id", op.OperationID), slog.String("error", submitErr.Error()))
		if _, err := s.trustlineSvc.TransitionTrustline(ctx, op.OperationID,
			domain.TrustlineRequested, domain.TrustlineFailed,
			portsrepo.TrustlineUpdate{ErrorMessage: submitErr.Error()}, actorID); err != nil {
			logger.Error("Failed to record trustline submission failure",
				slog.String("operation_id", op.OperationID), slog.String("error", err.Error()))
		}
		reason := domain.ReasonTrustlineDenied
		return s.ledger.TransitionConversion(ctx, record.ConversionID,
			domain.ConversionPending, domain.ConversionFailed,
			portsrepo.TransitionDetail{
				FailureReason: &reason,
				FailureDetail: "trustline submission failed: " + submitErr.Error(),
				TrustlineOpID: &op.OperationID,
			}, actorID)
	}

	if _, err := s.trustlineSvc.TransitionTrustline(ctx, op.OperationID,
		domain.TrustlineRequested, domain.TrustlineSubmitted,
		portsrepo.TrustlineUpdate{TransactionHash: &txHash}, actorID); err != nil {
		return nil, fmt.Errorf("failed to mark trustline %s submitted: %w", op.OperationID, err)
	}

	return s.ledger.TransitionConversion(ctx, record.ConversionID,
		domain.ConversionPending, domain.ConversionAwaitingTrustline,
		portsrepo.TransitionDetail{TrustlineOpID: &op.OperationID}, actorID)
}

// ResumeAfterTrustline re-checks a parked record. The rate is re-resolved at
// resume time: if the snapshot's window no longer covers now the record fails
// with RateExpired rather than settling at a stale price.
func (s *conversionService) ResumeAfterTrustline(ctx context.Context, conversionID, actorID string) (*domain.ConversionAudit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	record, err := s.ledger.GetConversion(ctx, conversionID)
	if err != nil {
		return nil, err
	}
	if record.Status != domain.ConversionAwaitingTrustline {
		return nil, fmt.Errorf("%w: conversion %s is %s, not %s",
			apperrors.ErrInvalidTransition, conversionID, record.Status, domain.ConversionAwaitingTrustline)
	}
	if record.Overdue(now) {
		reason := domain.ReasonTimeout
		return s.ledger.TransitionConversion(ctx, conversionID,
			domain.ConversionAwaitingTrustline, domain.ConversionFailed,
			portsrepo.TransitionDetail{FailureReason: &reason, FailureDetail: "deadline passed while awaiting trustline"}, actorID)
	}
	if record.TrustlineOperationID == nil {
		return nil, fmt.Errorf("%w: conversion %s has no trustline operation", apperrors.ErrDataIntegrity, conversionID)
	}

	op, err := s.trustlineSvc.GetTrustlineOperation(ctx, *record.TrustlineOperationID)
	if err != nil {
		return nil, err
	}

	switch op.Status {
	case domain.TrustlineFailed:
		reason := domain.ReasonTrustlineDenied
		detail := op.ErrorMessage
		if detail == "" {
			detail = "trustline operation failed"
		}
		return s.ledger.TransitionConversion(ctx, conversionID,
			domain.ConversionAwaitingTrustline, domain.ConversionFailed,
			portsrepo.TransitionDetail{FailureReason: &reason, FailureDetail: detail}, actorID)
	case domain.TrustlineConfirmed:
		// proceed to rate lock below
	case domain.TrustlineSubmitted:
		// The ledger may not have heard back yet; the chain is the source of
		// truth for an establish that already landed.
		has, herr := s.horizon.HasTrustline(ctx, record.WalletAddress, op.AssetCode, op.AssetIssuer)
		if herr != nil {
			return nil, fmt.Errorf("failed to check trustline for conversion %s: %w", conversionID, herr)
		}
		if !has {
			return nil, fmt.Errorf("%w: trustline operation %s is still pending", apperrors.ErrValidation, op.OperationID)
		}
		if _, err := s.trustlineSvc.TransitionTrustline(ctx, op.OperationID,
			domain.TrustlineSubmitted, domain.TrustlineConfirmed,
			portsrepo.TrustlineUpdate{}, actorID); err != nil {
			logger.Warn("Failed to confirm trustline operation",
				slog.String("operation_id", op.OperationID), slog.String("error", err.Error()))
		}
	default:
		return nil, fmt.Errorf("%w: trustline operation %s is still pending", apperrors.ErrValidation, op.OperationID)
	}

	current, err := s.rateSvc.ResolveRate(ctx, record.FromCurrencyCode, record.ToCurrencyCode, now)
	if err != nil || current.RateID != record.RateID {
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to re-resolve rate for conversion %s: %w", conversionID, err)
		}
		reason := domain.ReasonRateExpired
		return s.ledger.TransitionConversion(ctx, conversionID,
			domain.ConversionAwaitingTrustline, domain.ConversionFailed,
			portsrepo.TransitionDetail{FailureReason: &reason, FailureDetail: "locked rate no longer valid"}, actorID)
	}

	return s.ledger.TransitionConversion(ctx, conversionID,
		domain.ConversionAwaitingTrustline, domain.ConversionRateLocked, portsrepo.TransitionDetail{}, actorID)
}

// MarkSubmitted records the blockchain submission reference.
func (s *conversionService) MarkSubmitted(ctx context.Context, conversionID, transactionRef, actorID string) (*domain.ConversionAudit, error) {
	if transactionRef == "" {
		return nil, fmt.Errorf("%w: transaction reference is required", apperrors.ErrValidation)
	}
	return s.ledger.TransitionConversion(ctx, conversionID,
		domain.ConversionRateLocked, domain.ConversionSettling,
		portsrepo.TransitionDetail{TransactionRef: &transactionRef}, actorID)
}

// CompleteSettlement records confirmation of the settlement transaction.
func (s *conversionService) CompleteSettlement(ctx context.Context, conversionID, actorID string) (*domain.ConversionAudit, error) {
	return s.ledger.TransitionConversion(ctx, conversionID,
		domain.ConversionSettling, domain.ConversionCompleted, portsrepo.TransitionDetail{}, actorID)
}

// FailConversion drives a non-terminal record to Failed with the caller's
// reason. The expected status is read first, so a concurrent transition still
// surfaces as ErrConcurrentModification from the compare-and-set.
func (s *conversionService) FailConversion(ctx context.Context, conversionID string, reason domain.FailureReason, detail string, actorID string) (*domain.ConversionAudit, error) {
	switch reason {
	case domain.ReasonRateExpired, domain.ReasonTrustlineDenied, domain.ReasonSettlementError, domain.ReasonTimeout:
	default:
		return nil, fmt.Errorf("%w: unknown failure reason %q", apperrors.ErrValidation, reason)
	}

	record, err := s.ledger.GetConversion(ctx, conversionID)
	if err != nil {
		return nil, err
	}
	if record.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: conversion %s is already %s", apperrors.ErrInvalidTransition, conversionID, record.Status)
	}

	return s.ledger.TransitionConversion(ctx, conversionID,
		record.Status, domain.ConversionFailed,
		portsrepo.TransitionDetail{FailureReason: &reason, FailureDetail: detail}, actorID)
}

// ExpireOverdue fails every non-terminal record past its deadline with
// Timeout. Records that transition concurrently are skipped, not retried;
// the next sweep will not see them again.
func (s *conversionService) ExpireOverdue(ctx context.Context, limit int, actorID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	overdue, err := s.ledger.ListOverdueConversions(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	reason := domain.ReasonTimeout
	for i := range overdue {
		record := &overdue[i]
		_, err := s.ledger.TransitionConversion(ctx, record.ConversionID,
			record.Status, domain.ConversionFailed,
			portsrepo.TransitionDetail{
				FailureReason: &reason,
				FailureDetail: fmt.Sprintf("deadline %s passed in status %s", record.Deadline.Format(time.RFC3339), record.Status),
			}, actorID)
		if err != nil {
			if errors.Is(err, apperrors.ErrConcurrentModification) || errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			logger.Error("Failed to expire overdue conversion",
				slog.String("conversion_id", record.ConversionID), slog.String("error", err.Error()))
			return expired, err
		}
		expired++
	}

	if expired > 0 {
		logger.Info("Expired overdue conversions", slog.Int("count", expired))
	}
	return expired, nil
}
