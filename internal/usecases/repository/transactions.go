package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	tx "github.com/Thiht/transactor/pgx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
	"github.com/brokerx/crypto-brokerage-app/backend/pkg/database"
)

const transactionColumns = "id, user_id, coin_id, type, amount, price, total_value, payment_method, status, metadata, created_at, updated_at"

// TransactionsRepository persists transaction intents and owns the guarded
// status transition used by verification.
type TransactionsRepository struct {
	logger *slog.Logger

	db         tx.DBGetter
	transactor *tx.Transactor
	builder    squirrel.StatementBuilderType
}

// NewTransactionsRepository creates a new transactions repository.
func NewTransactionsRepository(logger *slog.Logger, pg *database.Postgres) *TransactionsRepository {
	return &TransactionsRepository{
		logger:     logger,
		db:         pg.DBGetter,
		transactor: pg.Transactor,
		builder:    pg.Builder,
	}
}

// Insert stores a new transaction row.
func (r *TransactionsRepository) Insert(ctx context.Context, txn *entities.Transaction) error {
	query := `INSERT INTO transactions (id, user_id, coin_id, type, amount, price, total_value, payment_method, status, metadata)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db(ctx).Exec(ctx, query,
		txn.ID, txn.UserID, txn.CoinID, txn.Type, txn.Amount, txn.Price,
		txn.TotalValue, txn.PaymentMethod, txn.Status, txn.Metadata)
	if err != nil {
		return &ports.StorageError{Op: "transactions.insert", Err: err}
	}

	r.logger.Info("Transaction recorded",
		"id", txn.ID, "user_id", txn.UserID, "type", txn.Type, "amount", txn.Amount.String())

	return nil
}

// FindByID retrieves one transaction, or (nil, nil) when unknown.
func (r *TransactionsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	query := fmt.Sprintf("SELECT %s FROM transactions WHERE id = $1", transactionColumns)

	rows, err := r.db(ctx).Query(ctx, query, id)
	if err != nil {
		return nil, &ports.StorageError{Op: "transactions.find", Err: err}
	}

	txn, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Transaction])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &ports.StorageError{Op: "transactions.find", Err: err}
	}

	return &txn, nil
}

// FinalizeStatus performs the compare-and-set status transition: only a row
// still in pending_verification is updated, and the audit entry lands in the
// same statement. (nil, nil) means the guard did not match.
func (r *TransactionsRepository) FinalizeStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, entry entities.AuditEntry) (*entities.Transaction, error) {
	entryJSON, err := json.Marshal([]entities.AuditEntry{entry})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	query := fmt.Sprintf(`UPDATE transactions
             SET status = $2,
                 metadata = jsonb_set(coalesce(metadata, '{}'::jsonb), '{audit}',
                                      coalesce(metadata->'audit', '[]'::jsonb) || $3::jsonb),
                 updated_at = now()
           WHERE id = $1 AND status = 'pending_verification'
       RETURNING %s`, transactionColumns)

	rows, err := r.db(ctx).Query(ctx, query, id, status, string(entryJSON))
	if err != nil {
		return nil, &ports.StorageError{Op: "transactions.finalize", Err: err}
	}

	txn, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Transaction])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &ports.StorageError{Op: "transactions.finalize", Err: err}
	}

	r.logger.Info("Transaction finalized", "id", id, "status", status)

	return &txn, nil
}

// listedTransaction carries the filter-wide row count alongside each page
// row, so page and total come from one statement and one snapshot.
type listedTransaction struct {
	entities.Transaction
	FullCount int64 `db:"full_count"`
}

// List returns one page of transactions plus the total row count for the
// same filter, newest first. The count rides the page query as a window
// aggregate; a page past the end returns no rows, so only then does a plain
// count run.
func (r *TransactionsRepository) List(ctx context.Context, filter ports.TransactionFilter) ([]entities.Transaction, int64, error) {
	qb := r.builder.
		Select(transactionColumns).
		Column("count(*) OVER () AS full_count").
		From("transactions").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))

	countQB := r.builder.Select("COUNT(*)").From("transactions")

	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
		countQB = countQB.Where("status = ?", *filter.Status)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build listing query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, &ports.StorageError{Op: "transactions.list", Err: err}
	}

	listed, err := pgx.CollectRows(rows, pgx.RowToStructByName[listedTransaction])
	if err != nil {
		r.logger.Error("failed to collect transaction rows", "error", err)
		return nil, 0, &ports.StorageError{Op: "transactions.list", Err: err}
	}

	if len(listed) > 0 {
		transactions := make([]entities.Transaction, len(listed))
		for i, row := range listed {
			transactions[i] = row.Transaction
		}
		return transactions, listed[0].FullCount, nil
	}

	countQuery, countArgs, err := countQB.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err = r.db(ctx).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, &ports.StorageError{Op: "transactions.count", Err: err}
	}

	return nil, total, nil
}

// Count returns the total number of transactions ever recorded.
func (r *TransactionsRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&total)
	if err != nil {
		return 0, &ports.StorageError{Op: "transactions.count", Err: err}
	}
	return total, nil
}

func (r *TransactionsRepository) CountByStatus(ctx context.Context, status entities.TransactionStatus) (int64, error) {
	var total int64
	err := r.db(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM transactions WHERE status = $1", status).Scan(&total)
	if err != nil {
		return 0, &ports.StorageError{Op: "transactions.count_by_status", Err: err}
	}
	return total, nil
}

// CompletedVolume sums total_value over completed transactions only; pending
// and rejected intents are not volume.
func (r *TransactionsRepository) CompletedVolume(ctx context.Context) (decimal.Decimal, error) {
	var volume decimal.Decimal
	err := r.db(ctx).QueryRow(ctx,
		"SELECT coalesce(SUM(total_value), 0) FROM transactions WHERE status = 'completed'").Scan(&volume)
	if err != nil {
		return decimal.Zero, &ports.StorageError{Op: "transactions.volume", Err: err}
	}
	return volume, nil
}

// Recent returns the newest transactions for the dashboard snapshot.
func (r *TransactionsRepository) Recent(ctx context.Context, limit int) ([]entities.Transaction, error) {
	query := fmt.Sprintf("SELECT %s FROM transactions ORDER BY created_at DESC, id DESC LIMIT $1", transactionColumns)

	rows, err := r.db(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, &ports.StorageError{Op: "transactions.recent", Err: err}
	}

	transactions, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.Transaction])
	if err != nil {
		return nil, &ports.StorageError{Op: "transactions.recent", Err: err}
	}

	return transactions, nil
}
