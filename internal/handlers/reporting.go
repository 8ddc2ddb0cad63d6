package handlers

import (
	"context"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

type Reporting interface {
	ListTransactions(ctx context.Context, filter ports.TransactionFilter) (*ports.TransactionPage, error)
	Dashboard(ctx context.Context) (*ports.DashboardStats, error)
	UserHoldings(ctx context.Context, userID int64) ([]entities.Holding, error)
}
