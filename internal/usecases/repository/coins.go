package repository

import (
	"context"
	"errors"
	"log/slog"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
	"github.com/brokerx/crypto-brokerage-app/backend/pkg/database"
)

// CoinsRepository is the coin directory. Prices land here from the external
// market-data sync; reads are point-in-time snapshots.
type CoinsRepository struct {
	logger *slog.Logger
	db     tx.DBGetter
}

func NewCoinsRepository(logger *slog.Logger, pg *database.Postgres) *CoinsRepository {
	return &CoinsRepository{logger: logger, db: pg.DBGetter}
}

// FindByID retrieves a coin snapshot, or (nil, nil) when unknown.
func (r *CoinsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Coin, error) {
	query := `SELECT id, symbol, name, price, is_locked, is_active, created_at, updated_at
                FROM coins
               WHERE id = $1`

	rows, err := r.db(ctx).Query(ctx, query, id)
	if err != nil {
		return nil, &ports.StorageError{Op: "coins.find", Err: err}
	}

	coin, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Coin])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &ports.StorageError{Op: "coins.find", Err: err}
	}

	return &coin, nil
}

// Upsert writes a coin by symbol; used by the seeder and the price sync.
func (r *CoinsRepository) Upsert(ctx context.Context, coin *entities.Coin) error {
	query := `INSERT INTO coins (id, symbol, name, price, is_locked, is_active)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (symbol)
              DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, updated_at = now()`

	_, err := r.db(ctx).Exec(ctx, query,
		coin.ID, coin.Symbol, coin.Name, coin.Price, coin.IsLocked, coin.IsActive)
	if err != nil {
		return &ports.StorageError{Op: "coins.upsert", Err: err}
	}

	return nil
}

// SetLocked flags or unflags a coin for withdrawals.
func (r *CoinsRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	tag, err := r.db(ctx).Exec(ctx, "UPDATE coins SET is_locked = $2, updated_at = now() WHERE id = $1", id, locked)
	if err != nil {
		return &ports.StorageError{Op: "coins.set_locked", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &ports.NotFoundError{Resource: "coin", ID: id.String()}
	}

	r.logger.Info("Coin lock changed", "coin_id", id, "locked", locked)

	return nil
}

func (r *CoinsRepository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := r.db(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM coins WHERE is_active = true").Scan(&total)
	if err != nil {
		return 0, &ports.StorageError{Op: "coins.count_active", Err: err}
	}
	return total, nil
}
