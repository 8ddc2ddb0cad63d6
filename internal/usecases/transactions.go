package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

// TransactionServiceImpl is the transaction lifecycle engine: it owns the
// pending_verification -> {completed | rejected} transition and its side
// effect on the holdings ledger.
//
// Buys and withdrawals are deliberately asymmetric: a withdrawal debits the
// holding at submission time (optimistic debit, credited back on rejection),
// while a buy credits the holding only on approval. Funds leaving the
// platform are reserved before review; funds entering stay invisible until
// an admin confirms the payment proof.
type TransactionServiceImpl struct {
	logger *slog.Logger

	newID ports.IDGenerator

	transactions ports.TransactionStore
	holdings     ports.HoldingStore
	coins        ports.CoinStore
	transactor   ports.Transactor
}

// NewTransactionService creates the lifecycle engine. newID may be nil, in
// which case random UUIDs are used.
func NewTransactionService(
	logger *slog.Logger,
	newID ports.IDGenerator,
	transactions ports.TransactionStore,
	holdings ports.HoldingStore,
	coins ports.CoinStore,
	transactor ports.Transactor,
) *TransactionServiceImpl {
	if newID == nil {
		newID = uuid.New
	}
	return &TransactionServiceImpl{
		logger:       logger,
		newID:        newID,
		transactions: transactions,
		holdings:     holdings,
		coins:        coins,
		transactor:   transactor,
	}
}

var _ ports.TransactionLifecycle = (*TransactionServiceImpl)(nil)

// SubmitBuy records a user's "I sent crypto" claim as a pending buy. The
// coin price is snapshotted now; the holding is not touched until approval.
func (s *TransactionServiceImpl) SubmitBuy(ctx context.Context, userID int64, coinID uuid.UUID, amount decimal.Decimal, proof ports.BuyProof) (*entities.Transaction, error) {
	if !amount.IsPositive() {
		return nil, &ports.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if err := validateProof(proof); err != nil {
		return nil, err
	}

	coin, err := s.coins.FindByID(ctx, coinID)
	if err != nil {
		return nil, err
	}
	if coin == nil {
		return nil, &ports.NotFoundError{Resource: "coin", ID: coinID.String()}
	}

	txn := &entities.Transaction{
		ID:            s.newID(),
		UserID:        userID,
		CoinID:        coinID,
		Type:          entities.TransactionBuy,
		Amount:        amount,
		Price:         coin.Price,
		TotalValue:    amount.Mul(coin.Price),
		PaymentMethod: proof.PaymentMethod,
		Status:        entities.StatusPendingVerification,
		Metadata: entities.Metadata{
			TransactionHash: proof.TransactionHash,
			SenderAddress:   proof.SenderAddress,
			Audit: entities.VerificationAudit{
				{Event: entities.AuditSubmitted, At: time.Now().UTC()},
			},
		},
	}

	if err = s.transactions.Insert(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Info("Buy submitted for verification",
		"transaction_id", txn.ID, "user_id", userID, "coin", coin.Symbol,
		"amount", amount.String(), "total_value", txn.TotalValue.String())

	return txn, nil
}

// SubmitWithdrawal records a pending withdrawal and immediately debits the
// holding, deleting the row when the remainder is exactly zero. The debit
// and the insert are one database transaction.
func (s *TransactionServiceImpl) SubmitWithdrawal(ctx context.Context, userID int64, coinID uuid.UUID, amount decimal.Decimal, withdrawalAddress string) (*entities.Transaction, error) {
	if !amount.IsPositive() {
		return nil, &ports.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if withdrawalAddress == "" {
		return nil, &ports.ValidationError{Field: "withdrawal_address", Reason: "must not be empty"}
	}

	coin, err := s.coins.FindByID(ctx, coinID)
	if err != nil {
		return nil, err
	}
	if coin == nil {
		return nil, &ports.NotFoundError{Resource: "coin", ID: coinID.String()}
	}
	if coin.IsLocked {
		return nil, &ports.LockedAssetError{Symbol: coin.Symbol}
	}

	var txn *entities.Transaction

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		holding, err := s.holdings.FindForUpdate(ctx, userID, coinID)
		if err != nil {
			return err
		}
		if holding == nil || holding.Amount.LessThan(amount) {
			available := decimal.Zero
			if holding != nil {
				available = holding.Amount
			}
			return &ports.InsufficientBalanceError{Requested: amount, Available: available}
		}

		costBasis := holding.AvgPrice

		holding.Amount = holding.Amount.Sub(amount)
		if holding.Amount.IsZero() {
			if err = s.holdings.Delete(ctx, userID, coinID); err != nil {
				return err
			}
		} else {
			if err = s.holdings.Upsert(ctx, holding); err != nil {
				return err
			}
		}

		txn = &entities.Transaction{
			ID:            s.newID(),
			UserID:        userID,
			CoinID:        coinID,
			Type:          entities.TransactionSell,
			Amount:        amount,
			Price:         coin.Price,
			TotalValue:    amount.Mul(coin.Price),
			PaymentMethod: entities.PaymentCryptoWithdrawal,
			Status:        entities.StatusPendingVerification,
			Metadata: entities.Metadata{
				WithdrawalAddress: withdrawalAddress,
				CostBasis:         &costBasis,
				Audit: entities.VerificationAudit{
					{Event: entities.AuditSubmitted, At: time.Now().UTC()},
				},
			},
		}

		return s.transactions.Insert(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal submitted, holding debited",
		"transaction_id", txn.ID, "user_id", userID, "coin", coin.Symbol, "amount", amount.String())

	return txn, nil
}

// Verify resolves a pending transaction. The status transition is guarded
// ("WHERE status = pending_verification"), so concurrent verifies on the
// same id produce exactly one winner; the loser sees AlreadyFinalizedError.
// Status change and ledger mutation commit or roll back as one unit.
func (s *TransactionServiceImpl) Verify(ctx context.Context, transactionID uuid.UUID, decision ports.Decision, adminNote string) (*entities.Transaction, error) {
	if decision != ports.DecisionApprove && decision != ports.DecisionReject {
		return nil, &ports.ValidationError{Field: "decision", Reason: "must be approve or reject"}
	}

	entry := entities.AuditEntry{
		Event: entities.AuditApproved,
		Note:  adminNote,
		At:    time.Now().UTC(),
	}
	target := entities.StatusCompleted
	if decision == ports.DecisionReject {
		entry.Event = entities.AuditRejected
		target = entities.StatusRejected
	}

	var result *entities.Transaction

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		txn, err := s.transactions.FinalizeStatus(ctx, transactionID, target, entry)
		if err != nil {
			return err
		}
		if txn == nil {
			existing, err := s.transactions.FindByID(ctx, transactionID)
			if err != nil {
				return err
			}
			if existing == nil {
				return &ports.NotFoundError{Resource: "transaction", ID: transactionID.String()}
			}
			return &ports.AlreadyFinalizedError{TransactionID: transactionID, Status: existing.Status}
		}

		switch {
		case txn.Type == entities.TransactionBuy && decision == ports.DecisionApprove:
			err = s.creditBuy(ctx, txn)
		case txn.Type == entities.TransactionSell && decision == ports.DecisionReject:
			err = s.creditBack(ctx, txn)
		}
		// approve+sell: already debited at submission. reject+buy: nothing
		// was ever applied.
		if err != nil {
			return err
		}

		result = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction verified",
		"transaction_id", transactionID, "decision", decision, "status", result.Status)

	return result, nil
}

// creditBuy merges an approved buy into the holding using the
// weighted-average rule, creating the row on first purchase.
func (s *TransactionServiceImpl) creditBuy(ctx context.Context, txn *entities.Transaction) error {
	holding, err := s.holdings.FindForUpdate(ctx, txn.UserID, txn.CoinID)
	if err != nil {
		return err
	}

	if holding == nil {
		holding = &entities.Holding{
			UserID:   txn.UserID,
			CoinID:   txn.CoinID,
			Amount:   txn.Amount,
			AvgPrice: txn.Price,
		}
	} else {
		holding.MergeBuy(txn.Amount, txn.Price)
	}

	return s.holdings.Upsert(ctx, holding)
}

// creditBack compensates a rejected withdrawal: the amount debited at
// submission returns to the holding, re-creating the row at the snapshotted
// cost basis when the debit had closed it.
func (s *TransactionServiceImpl) creditBack(ctx context.Context, txn *entities.Transaction) error {
	restorePrice := txn.Price
	if txn.Metadata.CostBasis != nil {
		restorePrice = *txn.Metadata.CostBasis
	}

	holding, err := s.holdings.FindForUpdate(ctx, txn.UserID, txn.CoinID)
	if err != nil {
		return err
	}

	if holding == nil {
		holding = &entities.Holding{
			UserID:   txn.UserID,
			CoinID:   txn.CoinID,
			Amount:   txn.Amount,
			AvgPrice: restorePrice,
		}
	} else {
		holding.MergeBuy(txn.Amount, restorePrice)
	}

	return s.holdings.Upsert(ctx, holding)
}

// validateProof checks the payment proof for completeness and that the
// sender address is well-formed for the chosen rail.
func validateProof(proof ports.BuyProof) error {
	if proof.TransactionHash == "" {
		return &ports.ValidationError{Field: "transaction_hash", Reason: "must not be empty"}
	}
	if proof.SenderAddress == "" {
		return &ports.ValidationError{Field: "sender_address", Reason: "must not be empty"}
	}

	switch proof.PaymentMethod {
	case entities.PaymentUSDT:
		if !common.IsHexAddress(proof.SenderAddress) {
			return &ports.ValidationError{Field: "sender_address", Reason: "not a valid BEP-20 address"}
		}
	case entities.PaymentSOL:
		if _, err := solana.PublicKeyFromBase58(proof.SenderAddress); err != nil {
			return &ports.ValidationError{Field: "sender_address", Reason: "not a valid Solana address"}
		}
	default:
		return &ports.ValidationError{
			Field:  "payment_method",
			Reason: fmt.Sprintf("unsupported method %q", proof.PaymentMethod),
		}
	}

	return nil
}
