package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
)

type ReviewOrchestrator interface {
	BulkVerify(ctx context.Context, transactionIDs []uuid.UUID, decision ports.Decision, note string) (*ports.BulkVerifyResult, error)
}
