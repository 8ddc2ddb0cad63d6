package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coin is a listed asset. Price is maintained by the external market-data
// sync; everything here treats it as a point-in-time snapshot.
type Coin struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Symbol    string          `db:"symbol" json:"symbol"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	IsLocked  bool            `db:"is_locked" json:"is_locked"`
	IsActive  bool            `db:"is_active" json:"is_active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
