package usecases

import (
	"context"
	"log/slog"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

// ReportingService is the read-only listing and dashboard surface consumed
// by the admin UI. No business invariants beyond consistent pagination.
type ReportingService struct {
	logger *slog.Logger

	transactions ports.TransactionStore
	holdings     ports.HoldingStore
	coins        ports.CoinStore
	users        ports.UserStore
}

func NewReportingService(
	logger *slog.Logger,
	transactions ports.TransactionStore,
	holdings ports.HoldingStore,
	coins ports.CoinStore,
	users ports.UserStore,
) *ReportingService {
	return &ReportingService{
		logger:       logger,
		transactions: transactions,
		holdings:     holdings,
		coins:        coins,
		users:        users,
	}
}

var _ ports.Reporting = (*ReportingService)(nil)

// ListTransactions returns one page of transactions newest-first, with the
// total count computed under the same filter so pagination stays consistent.
func (s *ReportingService) ListTransactions(ctx context.Context, filter ports.TransactionFilter) (*ports.TransactionPage, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = ports.DefaultPageLimit
	}

	if filter.Page < 1 {
		return nil, &ports.ValidationError{Field: "page", Reason: "must be at least 1"}
	}
	if filter.Limit < 1 || filter.Limit > ports.MaxPageLimit {
		return nil, &ports.ValidationError{Field: "limit", Reason: "must be between 1 and 100"}
	}
	if filter.Status != nil {
		switch *filter.Status {
		case entities.StatusPendingVerification, entities.StatusCompleted, entities.StatusRejected:
		default:
			return nil, &ports.ValidationError{Field: "status", Reason: "unknown status"}
		}
	}

	transactions, total, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return &ports.TransactionPage{
		Transactions: transactions,
		Pagination: ports.Pagination{
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages,
		},
	}, nil
}

// Dashboard assembles the aggregate counters for the admin landing page.
func (s *ReportingService) Dashboard(ctx context.Context) (*ports.DashboardStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	activeCoins, err := s.coins.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	totalTransactions, err := s.transactions.Count(ctx)
	if err != nil {
		return nil, err
	}

	totalVolume, err := s.transactions.CompletedVolume(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.transactions.CountByStatus(ctx, entities.StatusPendingVerification)
	if err != nil {
		return nil, err
	}

	recent, err := s.transactions.Recent(ctx, ports.RecentCount)
	if err != nil {
		return nil, err
	}

	return &ports.DashboardStats{
		TotalUsers:          totalUsers,
		ActiveCoins:         activeCoins,
		TotalTransactions:   totalTransactions,
		TotalVolume:         totalVolume,
		PendingTransactions: pending,
		RecentTransactions:  recent,
	}, nil
}

// UserHoldings lists a user's current balances and cost basis.
func (s *ReportingService) UserHoldings(ctx context.Context, userID int64) ([]entities.Holding, error) {
	return s.holdings.FindByUser(ctx, userID)
}
