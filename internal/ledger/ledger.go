package ledger

import (
	"errors"
	"fmt"
	"sort"

	interfaces "github.com/webern/moneybags/internal/interfaces"
	"github.com/webern/moneybags/internal/models"
)

// Recoverable per-event failures. An event that fails with one of these has
// no effect on any account; processing continues with the next event.
var (
	// ErrInsufficientFunds rejects a withdrawal larger than the available
	// balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownTransaction rejects a dispute, resolve or chargeback whose tx
	// id does not match any deposit or withdrawal seen earlier in the stream.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrClientMismatch rejects a dispute, resolve or chargeback whose client
	// differs from the client of the transaction it references.
	ErrClientMismatch = errors.New("client mismatch")

	// ErrAccountLocked rejects any event for an account that a chargeback has
	// already locked. There is no unlock path.
	ErrAccountLocked = errors.New("account locked")
)

// Engine applies transaction events to per-client accounts, one event at a
// time in input order. It owns both the account table and the transaction
// store for the duration of a run.
type Engine struct {
	store    interfaces.TransactionStore
	accounts map[uint32]models.Account
}

// NewEngine creates an Engine backed by the given transaction store.
func NewEngine(store interfaces.TransactionStore) *Engine {
	return &Engine{
		store:    store,
		accounts: make(map[uint32]models.Account),
	}
}

// Apply runs one event through the state machine.
//
// The transition is computed on a private copy of the client's account and
// committed only if it succeeds, so a failed event leaves the account exactly
// as it was. The account itself is created (with zero balances) the first
// time its client id appears, whether or not the event succeeds.
//
// Deposits and withdrawals are registered in the transaction store even when
// their application fails: a later dispute still needs to find them.
func (e *Engine) Apply(event models.Event) error {
	if _, ok := e.accounts[event.Client]; !ok {
		e.accounts[event.Client] = models.NewAccount(event.Client)
	}

	txErr := e.transition(event)

	if event.Referenceable() {
		putErr := e.store.Put(event.Tx, models.StoredTransaction{
			Client: event.Client,
			Amount: event.Amount,
		})
		if putErr != nil && txErr == nil {
			return putErr
		}
	}

	return txErr
}

// transition validates and applies the event's effect, committing the
// mutated account on success.
func (e *Engine) transition(event models.Event) error {
	account := e.accounts[event.Client]

	if account.Locked {
		return fmt.Errorf("client %d: %w", event.Client, ErrAccountLocked)
	}

	switch event.Kind {
	case models.KindDeposit:
		account.Available = account.Available.Add(event.Amount)
		account.Total = account.Total.Add(event.Amount)

	case models.KindWithdrawal:
		if account.Available.LessThan(event.Amount) {
			return fmt.Errorf("withdrawal tx %d for client %d: %w", event.Tx, event.Client, ErrInsufficientFunds)
		}
		account.Available = account.Available.Sub(event.Amount)
		account.Total = account.Total.Sub(event.Amount)

	case models.KindDispute:
		ref, err := e.reference(event)
		if err != nil {
			return err
		}
		account.Available = account.Available.Sub(ref.Amount)
		account.Held = account.Held.Add(ref.Amount)

	case models.KindResolve:
		ref, err := e.reference(event)
		if err != nil {
			return err
		}
		account.Available = account.Available.Add(ref.Amount)
		account.Held = account.Held.Sub(ref.Amount)

	case models.KindChargeback:
		ref, err := e.reference(event)
		if err != nil {
			return err
		}
		// No clamping: held may go negative rather than being floored at
		// zero. This mirrors the reference behavior and is deliberate.
		account.Total = account.Total.Sub(ref.Amount)
		account.Held = account.Held.Sub(ref.Amount)
		account.Locked = true

	default:
		return fmt.Errorf("unknown event type %q", event.Kind)
	}

	e.accounts[event.Client] = account
	return nil
}

// reference resolves the transaction a dispute, resolve or chargeback points
// to and checks that it belongs to the event's client.
func (e *Engine) reference(event models.Event) (models.StoredTransaction, error) {
	ref, ok := e.store.Get(event.Tx)
	if !ok {
		return models.StoredTransaction{}, fmt.Errorf("%s tx %d: %w", event.Kind, event.Tx, ErrUnknownTransaction)
	}
	if ref.Client != event.Client {
		return models.StoredTransaction{}, fmt.Errorf("%s tx %d belongs to client %d, not %d: %w",
			event.Kind, event.Tx, ref.Client, event.Client, ErrClientMismatch)
	}
	return ref, nil
}

// Accounts returns a snapshot of every account seen during the run, sorted
// by ascending client id.
func (e *Engine) Accounts() []models.Account {
	accounts := make([]models.Account, 0, len(e.accounts))
	for _, account := range e.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Client < accounts[j].Client
	})
	return accounts
}
