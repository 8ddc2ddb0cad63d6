package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

type TransactionLifecycle interface {
	SubmitBuy(ctx context.Context, userID int64, coinID uuid.UUID, amount decimal.Decimal, proof ports.BuyProof) (*entities.Transaction, error)
	SubmitWithdrawal(ctx context.Context, userID int64, coinID uuid.UUID, amount decimal.Decimal, withdrawalAddress string) (*entities.Transaction, error)
	Verify(ctx context.Context, transactionID uuid.UUID, decision ports.Decision, adminNote string) (*entities.Transaction, error)
}
