package usecases

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	solana "github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

// Child key indexes per payment rail. Fixed so restarts re-derive the same
// deposit addresses.
const (
	usdtDepositIndex uint32 = 0
)

// DepositService hands out the platform deposit address for each payment
// method: USDT addresses are HD-derived from the master seed, SOL deposits
// go to a fixed treasury address validated at startup.
type DepositService struct {
	logger    *slog.Logger
	masterKey *bip32.Key

	solTreasury string

	mu        sync.Mutex
	addresses map[entities.PaymentMethod]string // derivation cache
}

func NewDepositService(logger *slog.Logger, seed, solTreasury string) (*DepositService, error) {
	seedBytes := bip39.NewSeed(seed, "")
	masterKey, err := bip32.NewMasterKey(seedBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to derive master key: %w", err)
	}

	if _, err = solana.PublicKeyFromBase58(solTreasury); err != nil {
		return nil, fmt.Errorf("invalid SOL treasury address: %w", err)
	}

	return &DepositService{
		logger:      logger,
		masterKey:   masterKey,
		solTreasury: solTreasury,
		addresses:   make(map[entities.PaymentMethod]string),
	}, nil
}

// AddressFor returns the deposit address a user should pay into for the
// given method. Derivation is deterministic per method index.
func (s *DepositService) AddressFor(method entities.PaymentMethod) (string, error) {
	switch method {
	case entities.PaymentSOL:
		return s.solTreasury, nil
	case entities.PaymentUSDT:
	default:
		return "", &ports.ValidationError{Field: "payment_method", Reason: fmt.Sprintf("unsupported method %q", method)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if addr, ok := s.addresses[method]; ok {
		return addr, nil
	}

	childKey, err := s.masterKey.NewChildKey(usdtDepositIndex)
	if err != nil {
		return "", fmt.Errorf("failed to derive child key: %w", err)
	}

	privKey, err := crypto.ToECDSA(childKey.Key)
	if err != nil {
		return "", fmt.Errorf("failed to build private key: %w", err)
	}

	address := crypto.PubkeyToAddress(privKey.PublicKey).Hex()
	s.addresses[method] = address

	s.logger.Info("Derived deposit address", "method", method, "address", address)

	return address, nil
}
