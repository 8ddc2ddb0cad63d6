package repository

import (
	"context"
	"log/slog"

	tx "github.com/Thiht/transactor/pgx"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/pkg/database"
)

// UsersRepository only feeds the dashboard counter; identity itself comes
// from the external auth layer.
type UsersRepository struct {
	logger *slog.Logger
	db     tx.DBGetter
}

func NewUsersRepository(logger *slog.Logger, pg *database.Postgres) *UsersRepository {
	return &UsersRepository{logger: logger, db: pg.DBGetter}
}

func (r *UsersRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&total)
	if err != nil {
		return 0, &ports.StorageError{Op: "users.count", Err: err}
	}
	return total, nil
}
