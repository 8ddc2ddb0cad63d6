package mocked

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

// DataService seeds the coin directory with a starter listing set so the
// platform is usable before the first market-data sync runs. Upserts by
// symbol, so re-running on boot is harmless.
type DataService struct {
	logger *slog.Logger
}

func NewDataService(logger *slog.Logger) *DataService {
	return &DataService{logger: logger}
}

func initialCoins() []entities.Coin {
	return []entities.Coin{
		{ID: uuid.New(), Symbol: "BTC", Name: "Bitcoin", Price: decimal.RequireFromString("64000"), IsActive: true},
		{ID: uuid.New(), Symbol: "ETH", Name: "Ethereum", Price: decimal.RequireFromString("3400"), IsActive: true},
		{ID: uuid.New(), Symbol: "SOL", Name: "Solana", Price: decimal.RequireFromString("145"), IsActive: true},
		{ID: uuid.New(), Symbol: "BNB", Name: "BNB", Price: decimal.RequireFromString("580"), IsActive: true},
		{ID: uuid.New(), Symbol: "USDT", Name: "Tether", Price: decimal.RequireFromString("1"), IsActive: true},
	}
}

// SeedCoins writes the starter coins into the directory.
func (s *DataService) SeedCoins(ctx context.Context, coins ports.CoinStore) error {
	for _, coin := range initialCoins() {
		if err := coins.Upsert(ctx, &coin); err != nil {
			return err
		}
		s.logger.Debug("Seeded coin", "symbol", coin.Symbol, "price", coin.Price.String())
	}

	s.logger.Info("Coin directory seeded", "count", len(initialCoins()))

	return nil
}
