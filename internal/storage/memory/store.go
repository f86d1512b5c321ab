package memory

import (
	"fmt"
	"sync"

	interfaces "github.com/webern/moneybags/internal/interfaces"
	"github.com/webern/moneybags/internal/models"
)

// TransactionStore is an in-memory implementation of
// interfaces.TransactionStore. A single run owns one instance; the mutex
// keeps writes safe should processing ever be sharded by client.
type TransactionStore struct {
	mu           sync.Mutex
	transactions map[uint32]models.StoredTransaction
}

// NewTransactionStore creates an empty TransactionStore.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		transactions: make(map[uint32]models.StoredTransaction),
	}
}

// Put records a transaction under txID. First write wins: if the id is
// already present the stored value is kept and an error is returned, so a
// duplicate id in the input cannot rewrite the history a dispute resolves
// against.
func (s *TransactionStore) Put(txID uint32, tx models.StoredTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[txID]; exists {
		return fmt.Errorf("transaction %d already recorded", txID)
	}
	s.transactions[txID] = tx
	return nil
}

// Get returns the transaction stored under txID, if any.
func (s *TransactionStore) Get(txID uint32) (models.StoredTransaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[txID]
	return tx, ok
}

var _ interfaces.TransactionStore = (*TransactionStore)(nil)
