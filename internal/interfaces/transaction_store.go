package interfaces

import "github.com/webern/moneybags/internal/models"

// TransactionStore records referenceable events (deposits and withdrawals) so
// that later dispute, resolve and chargeback events can look them up by
// transaction id.
type TransactionStore interface {
	// Put records a transaction. The first write for a tx id wins; a second
	// Put for the same id returns an error and leaves the stored value
	// untouched.
	Put(txID uint32, tx models.StoredTransaction) error

	// Get looks up a previously stored transaction. It has no side effects.
	Get(txID uint32) (models.StoredTransaction, bool)
}
