package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

// Decision is the admin's resolution of a pending transaction.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// BuyProof is the user's "I sent crypto" claim attached to a buy submission.
type BuyProof struct {
	TransactionHash string
	SenderAddress   string
	PaymentMethod   entities.PaymentMethod
}

// TransactionLifecycle owns the single-transaction state machine and its
// side effects on the holdings ledger.
type TransactionLifecycle interface {
	SubmitBuy(ctx context.Context, userID int64, coinID uuid.UUID, amount decimal.Decimal, proof BuyProof) (*entities.Transaction, error)
	SubmitWithdrawal(ctx context.Context, userID int64, coinID uuid.UUID, amount decimal.Decimal, withdrawalAddress string) (*entities.Transaction, error)
	Verify(ctx context.Context, transactionID uuid.UUID, decision Decision, adminNote string) (*entities.Transaction, error)
}

// ItemStatus tags one transaction's outcome inside a bulk review.
type ItemStatus string

const (
	ItemProcessed         ItemStatus = "processed"
	ItemSkippedNotFound   ItemStatus = "skipped_not_found"
	ItemSkippedNotPending ItemStatus = "skipped_not_pending"
	ItemFailed            ItemStatus = "failed"
)

type ItemOutcome struct {
	TransactionID uuid.UUID  `json:"transaction_id"`
	Status        ItemStatus `json:"status"`
	Reason        string     `json:"reason,omitempty"`
}

type BulkVerifyResult struct {
	Decision       Decision      `json:"decision"`
	ProcessedCount int           `json:"processed_count"`
	Items          []ItemOutcome `json:"items"`
}

// ReviewOrchestrator applies a verify decision across a set of transactions
// under one administrative intent, reporting partial success per item.
type ReviewOrchestrator interface {
	BulkVerify(ctx context.Context, transactionIDs []uuid.UUID, decision Decision, note string) (*BulkVerifyResult, error)
}

// TransactionFilter narrows and pages the admin transaction listing.
type TransactionFilter struct {
	Status *entities.TransactionStatus
	Page   int
	Limit  int
}

func (f TransactionFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type TransactionPage struct {
	Transactions []entities.Transaction `json:"transactions"`
	Pagination   Pagination             `json:"pagination"`
}

type DashboardStats struct {
	TotalUsers          int64                  `json:"totalUsers"`
	ActiveCoins         int64                  `json:"activeCoins"`
	TotalTransactions   int64                  `json:"totalTransactions"`
	TotalVolume         decimal.Decimal        `json:"totalVolume"`
	PendingTransactions int64                  `json:"pendingTransactions"`
	RecentTransactions  []entities.Transaction `json:"recentTransactions"`
}

// Reporting is the read-only surface behind the admin UI.
type Reporting interface {
	ListTransactions(ctx context.Context, filter TransactionFilter) (*TransactionPage, error)
	Dashboard(ctx context.Context) (*DashboardStats, error)
	UserHoldings(ctx context.Context, userID int64) ([]entities.Holding, error)
}
