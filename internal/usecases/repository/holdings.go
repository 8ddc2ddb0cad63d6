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

// HoldingsRepository is the durable holdings ledger: at most one row per
// (user, coin), deleted when the amount reaches exactly zero.
type HoldingsRepository struct {
	logger *slog.Logger

	db         tx.DBGetter
	transactor *tx.Transactor
}

// NewHoldingsRepository creates a new holdings repository.
func NewHoldingsRepository(logger *slog.Logger, pg *database.Postgres) *HoldingsRepository {
	return &HoldingsRepository{
		logger:     logger,
		db:         pg.DBGetter,
		transactor: pg.Transactor,
	}
}

// FindForUpdate retrieves the holding for (user, coin) and takes a row lock,
// serializing concurrent mutations of the same holding. FOR UPDATE cannot
// lock a row that does not exist yet, so an advisory lock keyed on
// (user, coin) is taken first; it covers the first-buy and post-delete cases
// and releases with the transaction. Must be called inside a transactor
// transaction. Returns (nil, nil) when no row exists.
func (r *HoldingsRepository) FindForUpdate(ctx context.Context, userID int64, coinID uuid.UUID) (*entities.Holding, error) {
	_, err := r.db(ctx).Exec(ctx,
		"SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))",
		userID, coinID)
	if err != nil {
		return nil, &ports.StorageError{Op: "holdings.lock", Err: err}
	}

	query := `SELECT id, user_id, coin_id, amount, avg_price, created_at, updated_at
                FROM holdings
               WHERE user_id = $1 AND coin_id = $2
                 FOR UPDATE`

	rows, err := r.db(ctx).Query(ctx, query, userID, coinID)
	if err != nil {
		return nil, &ports.StorageError{Op: "holdings.find_for_update", Err: err}
	}

	holding, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Holding])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &ports.StorageError{Op: "holdings.find_for_update", Err: err}
	}

	return &holding, nil
}

// FindByUser retrieves all holdings for a user.
func (r *HoldingsRepository) FindByUser(ctx context.Context, userID int64) ([]entities.Holding, error) {
	query := `SELECT id, user_id, coin_id, amount, avg_price, created_at, updated_at
                FROM holdings
               WHERE user_id = $1
               ORDER BY id`

	rows, err := r.db(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, &ports.StorageError{Op: "holdings.find_by_user", Err: err}
	}

	holdings, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.Holding])
	if err != nil {
		r.logger.Error("failed to collect holding rows", "error", err)
		return nil, &ports.StorageError{Op: "holdings.find_by_user", Err: err}
	}

	return holdings, nil
}

// Upsert writes the holding, creating the (user, coin) row on first approved
// buy and updating amount and cost basis afterwards.
func (r *HoldingsRepository) Upsert(ctx context.Context, holding *entities.Holding) error {
	query := `INSERT INTO holdings (user_id, coin_id, amount, avg_price)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (user_id, coin_id)
              DO UPDATE SET amount = EXCLUDED.amount, avg_price = EXCLUDED.avg_price, updated_at = now()`

	_, err := r.db(ctx).Exec(ctx, query, holding.UserID, holding.CoinID, holding.Amount, holding.AvgPrice)
	if err != nil {
		return &ports.StorageError{Op: "holdings.upsert", Err: err}
	}

	r.logger.Info("Holding updated",
		"user_id", holding.UserID, "coin_id", holding.CoinID,
		"amount", holding.Amount.String(), "avg_price", holding.AvgPrice.String())

	return nil
}

// Delete removes the holding row. A zero-amount holding is deleted, never
// kept at zero.
func (r *HoldingsRepository) Delete(ctx context.Context, userID int64, coinID uuid.UUID) error {
	_, err := r.db(ctx).Exec(ctx, "DELETE FROM holdings WHERE user_id = $1 AND coin_id = $2", userID, coinID)
	if err != nil {
		return &ports.StorageError{Op: "holdings.delete", Err: err}
	}

	r.logger.Info("Holding closed", "user_id", userID, "coin_id", coinID)

	return nil
}
