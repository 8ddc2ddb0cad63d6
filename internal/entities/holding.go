package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding is a user's current balance of one coin plus its cost basis.
// At most one row exists per (user, coin); the row is deleted outright when
// the amount reaches exactly zero.
type Holding struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	CoinID    uuid.UUID       `db:"coin_id" json:"coin_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	AvgPrice  decimal.Decimal `db:"avg_price" json:"avg_price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// MergeBuy folds an approved buy into the holding using the weighted-average
// cost-basis rule:
//
//	newAmount = oldAmount + addAmount
//	newPrice  = (oldAmount*oldPrice + addAmount*addPrice) / newAmount
//
// Decimal arithmetic throughout; accumulating many small purchases must not
// drift the cost basis.
func (h *Holding) MergeBuy(amount, price decimal.Decimal) {
	total := h.Amount.Mul(h.AvgPrice).Add(amount.Mul(price))
	h.Amount = h.Amount.Add(amount)
	h.AvgPrice = total.Div(h.Amount)
}
