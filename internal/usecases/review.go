package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
)

// ReviewService applies one verify decision across a set of transactions
// under a single administrative "approve all" / "decline all" intent.
type ReviewService struct {
	logger    *slog.Logger
	lifecycle ports.TransactionLifecycle
}

func NewReviewService(logger *slog.Logger, lifecycle ports.TransactionLifecycle) *ReviewService {
	return &ReviewService{logger: logger, lifecycle: lifecycle}
}

var _ ports.ReviewOrchestrator = (*ReviewService)(nil)

// BulkVerify runs the atomic verify unit per transaction. Unknown ids and
// already-finalized transactions are excluded, not fatal; one item's failure
// never aborts the rest, and nothing is rolled back across the batch. Every
// item's outcome is tagged in the result.
func (s *ReviewService) BulkVerify(ctx context.Context, transactionIDs []uuid.UUID, decision ports.Decision, note string) (*ports.BulkVerifyResult, error) {
	if decision != ports.DecisionApprove && decision != ports.DecisionReject {
		return nil, &ports.ValidationError{Field: "decision", Reason: "must be approve or reject"}
	}
	if len(transactionIDs) == 0 {
		return nil, &ports.ValidationError{Field: "transaction_ids", Reason: "must not be empty"}
	}

	result := &ports.BulkVerifyResult{
		Decision: decision,
		Items:    make([]ports.ItemOutcome, 0, len(transactionIDs)),
	}

	seen := make(map[uuid.UUID]bool, len(transactionIDs))

	for _, id := range transactionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		outcome := ports.ItemOutcome{TransactionID: id, Status: ports.ItemProcessed}

		_, err := s.lifecycle.Verify(ctx, id, decision, note)

		var notFound *ports.NotFoundError
		var finalized *ports.AlreadyFinalizedError

		switch {
		case err == nil:
			result.ProcessedCount++
		case errors.As(err, &notFound):
			outcome.Status = ports.ItemSkippedNotFound
		case errors.As(err, &finalized):
			outcome.Status = ports.ItemSkippedNotPending
			outcome.Reason = string(finalized.Status)
		default:
			s.logger.Error("Bulk verify item failed", "transaction_id", id, "error", err)
			outcome.Status = ports.ItemFailed
			outcome.Reason = err.Error()
		}

		result.Items = append(result.Items, outcome)
	}

	s.logger.Info("Bulk verification completed",
		"decision", decision, "requested", len(transactionIDs), "processed", result.ProcessedCount)

	return result, nil
}
