package ports

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

// ValidationError reports bad input shape or values. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown coin, transaction or holding.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InsufficientBalanceError rejects a withdrawal exceeding the current holding.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %s, available %s",
		e.Requested.String(), e.Available.String())
}

// LockedAssetError rejects a withdrawal of a coin flagged locked.
type LockedAssetError struct {
	Symbol string
}

func (e *LockedAssetError) Error() string {
	return fmt.Sprintf("asset %s is locked for withdrawals", e.Symbol)
}

// AlreadyFinalizedError is the idempotency guard on verify: re-verifying a
// terminal transaction fails loudly instead of silently no-opping, so
// operator mistakes surface.
type AlreadyFinalizedError struct {
	TransactionID uuid.UUID
	Status        entities.TransactionStatus
}

func (e *AlreadyFinalizedError) Error() string {
	return fmt.Sprintf("transaction %s already finalized with status %s",
		e.TransactionID, e.Status)
}

// StorageError wraps a transient persistence failure. The guarded status
// transition makes retrying the whole operation safe; retry policy lives
// with the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
