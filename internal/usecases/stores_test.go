package usecases

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
)

// In-memory store fakes backing the lifecycle tests. The transaction store's
// FinalizeStatus performs its compare-and-set under the store mutex, giving
// the same single-winner guarantee the SQL guard provides.

type fakeTransactionStore struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*entities.Transaction
	inserted     []uuid.UUID
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{transactions: make(map[uuid.UUID]*entities.Transaction)}
}

func (s *fakeTransactionStore) Insert(_ context.Context, txn *entities.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *txn
	s.transactions[txn.ID] = &clone
	s.inserted = append(s.inserted, txn.ID)
	return nil
}

func (s *fakeTransactionStore) FindByID(_ context.Context, id uuid.UUID) (*entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[id]
	if !ok {
		return nil, nil
	}
	clone := *txn
	return &clone, nil
}

func (s *fakeTransactionStore) FinalizeStatus(_ context.Context, id uuid.UUID, status entities.TransactionStatus, entry entities.AuditEntry) (*entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[id]
	if !ok || txn.Status != entities.StatusPendingVerification {
		return nil, nil
	}

	txn.Status = status
	txn.Metadata.Audit = txn.Metadata.Audit.Append(entry)

	clone := *txn
	return &clone, nil
}

func (s *fakeTransactionStore) List(_ context.Context, filter ports.TransactionFilter) ([]entities.Transaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []entities.Transaction
	for _, id := range s.inserted {
		txn := s.transactions[id]
		if filter.Status != nil && txn.Status != *filter.Status {
			continue
		}
		matched = append(matched, *txn)
	}

	total := int64(len(matched))

	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

func (s *fakeTransactionStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.transactions)), nil
}

func (s *fakeTransactionStore) CountByStatus(_ context.Context, status entities.TransactionStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, txn := range s.transactions {
		if txn.Status == status {
			total++
		}
	}
	return total, nil
}

func (s *fakeTransactionStore) CompletedVolume(_ context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	volume := decimal.Zero
	for _, txn := range s.transactions {
		if txn.Status == entities.StatusCompleted {
			volume = volume.Add(txn.TotalValue)
		}
	}
	return volume, nil
}

func (s *fakeTransactionStore) Recent(_ context.Context, limit int) ([]entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recent []entities.Transaction
	for i := len(s.inserted) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, *s.transactions[s.inserted[i]])
	}
	return recent, nil
}

type holdingKey struct {
	userID int64
	coinID uuid.UUID
}

type fakeHoldingStore struct {
	mu       sync.Mutex
	holdings map[holdingKey]*entities.Holding
	rowLocks map[holdingKey]*sync.Mutex
	upserts  int
}

func newFakeHoldingStore() *fakeHoldingStore {
	return &fakeHoldingStore{
		holdings: make(map[holdingKey]*entities.Holding),
		rowLocks: make(map[holdingKey]*sync.Mutex),
	}
}

// FindForUpdate takes a per-(user, coin) lock held until the ambient fake
// transaction ends, matching the advisory-lock contract of the real store:
// the pair is serialized even when no row exists yet.
func (s *fakeHoldingStore) FindForUpdate(ctx context.Context, userID int64, coinID uuid.UUID) (*entities.Holding, error) {
	key := holdingKey{userID, coinID}

	s.mu.Lock()
	lock, ok := s.rowLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.rowLocks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	if unit, ok := ctx.Value(txUnitKey{}).(*txUnit); ok {
		unit.unlocks = append(unit.unlocks, lock.Unlock)
	} else {
		defer lock.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	holding, ok := s.holdings[key]
	if !ok {
		return nil, nil
	}
	clone := *holding
	return &clone, nil
}

func (s *fakeHoldingStore) FindByUser(_ context.Context, userID int64) ([]entities.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entities.Holding
	for key, holding := range s.holdings {
		if key.userID == userID {
			out = append(out, *holding)
		}
	}
	return out, nil
}

func (s *fakeHoldingStore) Upsert(_ context.Context, holding *entities.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *holding
	s.holdings[holdingKey{holding.UserID, holding.CoinID}] = &clone
	s.upserts++
	return nil
}

func (s *fakeHoldingStore) Delete(_ context.Context, userID int64, coinID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.holdings, holdingKey{userID, coinID})
	return nil
}

func (s *fakeHoldingStore) get(userID int64, coinID uuid.UUID) *entities.Holding {
	s.mu.Lock()
	defer s.mu.Unlock()

	holding, ok := s.holdings[holdingKey{userID, coinID}]
	if !ok {
		return nil
	}
	clone := *holding
	return &clone
}

type fakeCoinStore struct {
	mu    sync.Mutex
	coins map[uuid.UUID]*entities.Coin
}

func newFakeCoinStore() *fakeCoinStore {
	return &fakeCoinStore{coins: make(map[uuid.UUID]*entities.Coin)}
}

func (s *fakeCoinStore) FindByID(_ context.Context, id uuid.UUID) (*entities.Coin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coin, ok := s.coins[id]
	if !ok {
		return nil, nil
	}
	clone := *coin
	return &clone, nil
}

func (s *fakeCoinStore) Upsert(_ context.Context, coin *entities.Coin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *coin
	s.coins[coin.ID] = &clone
	return nil
}

func (s *fakeCoinStore) SetLocked(_ context.Context, id uuid.UUID, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coin, ok := s.coins[id]
	if !ok {
		return &ports.NotFoundError{Resource: "coin", ID: id.String()}
	}
	coin.IsLocked = locked
	return nil
}

func (s *fakeCoinStore) CountActive(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, coin := range s.coins {
		if coin.IsActive {
			total++
		}
	}
	return total, nil
}

type fakeUserStore struct {
	total int64
}

func (s *fakeUserStore) Count(context.Context) (int64, error) {
	return s.total, nil
}

// fakeTransactor runs the unit inline and scopes the holding row locks to
// it: locks taken by FindForUpdate inside fn release when fn returns, the way
// row and advisory locks release at commit or rollback.
type txUnitKey struct{}

type txUnit struct {
	unlocks []func()
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	unit := &txUnit{}
	err := fn(context.WithValue(ctx, txUnitKey{}, unit))
	for i := len(unit.unlocks) - 1; i >= 0; i-- {
		unit.unlocks[i]()
	}
	return err
}
