package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

type TransactionStatus string

const (
	StatusPendingVerification TransactionStatus = "pending_verification"
	StatusCompleted           TransactionStatus = "completed"
	StatusRejected            TransactionStatus = "rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

type PaymentMethod string

const (
	PaymentUSDT             PaymentMethod = "USDT"
	PaymentSOL              PaymentMethod = "SOL"
	PaymentCryptoWithdrawal PaymentMethod = "crypto_withdrawal"
)

// Transaction is an immutable-intent record of a buy or withdrawal attempt.
// After insertion only the status transitions and the metadata audit log
// accumulates entries; rows are never deleted.
type Transaction struct {
	ID            uuid.UUID         `db:"id" json:"id"`
	UserID        int64             `db:"user_id" json:"user_id"`
	CoinID        uuid.UUID         `db:"coin_id" json:"coin_id"`
	Type          TransactionType   `db:"type" json:"type"`
	Amount        decimal.Decimal   `db:"amount" json:"amount"`
	Price         decimal.Decimal   `db:"price" json:"price"`
	TotalValue    decimal.Decimal   `db:"total_value" json:"total_value"`
	PaymentMethod PaymentMethod     `db:"payment_method" json:"payment_method"`
	Status        TransactionStatus `db:"status" json:"status"`
	Metadata      Metadata          `db:"metadata" json:"metadata"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// Metadata carries the payment proof captured at submission plus the
// append-only verification audit trail. CostBasis is snapshotted on
// withdrawals so a rejected withdrawal restores the holding's original
// average price even after the row was deleted.
type Metadata struct {
	TransactionHash   string            `json:"transaction_hash,omitempty"`
	SenderAddress     string            `json:"sender_address,omitempty"`
	WithdrawalAddress string            `json:"withdrawal_address,omitempty"`
	CostBasis         *decimal.Decimal  `json:"cost_basis,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	Audit             VerificationAudit `json:"audit,omitempty"`
}
