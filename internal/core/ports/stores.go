package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

// Transactor runs fn inside one database transaction; repository calls made
// through the same ctx join it. Satisfied by the pgx transactor in
// pkg/database and by fakes in tests.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IDGenerator is the injected id capability for new transactions.
type IDGenerator func() uuid.UUID

// TransactionStore persists transaction intents. Finders return (nil, nil)
// when no row matches.
type TransactionStore interface {
	Insert(ctx context.Context, txn *entities.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)

	// FinalizeStatus atomically moves a pending_verification row to the given
	// terminal status and appends the audit entry, in one guarded statement.
	// Returns (nil, nil) when the row is missing or no longer pending.
	FinalizeStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, entry entities.AuditEntry) (*entities.Transaction, error)

	List(ctx context.Context, filter TransactionFilter) ([]entities.Transaction, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status entities.TransactionStatus) (int64, error)
	CompletedVolume(ctx context.Context) (decimal.Decimal, error)
	Recent(ctx context.Context, limit int) ([]entities.Transaction, error)
}

// HoldingStore is the ledger side of the verify unit. FindForUpdate
// serializes concurrent holding mutations per (user, coin) until the ambient
// transaction ends, including when no row exists yet, so two first buys for
// the same pair cannot both observe the absent row.
type HoldingStore interface {
	FindForUpdate(ctx context.Context, userID int64, coinID uuid.UUID) (*entities.Holding, error)
	FindByUser(ctx context.Context, userID int64) ([]entities.Holding, error)
	Upsert(ctx context.Context, holding *entities.Holding) error
	Delete(ctx context.Context, userID int64, coinID uuid.UUID) error
}

// CoinStore is the coin directory: price/lock snapshots plus admin upkeep.
type CoinStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Coin, error)
	Upsert(ctx context.Context, coin *entities.Coin) error
	SetLocked(ctx context.Context, id uuid.UUID, locked bool) error
	CountActive(ctx context.Context) (int64, error)
}

type UserStore interface {
	Count(ctx context.Context) (int64, error)
}
