package ledger_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webern/moneybags/internal/ledger"
	"github.com/webern/moneybags/internal/models"
	"github.com/webern/moneybags/internal/storage/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEngine() *ledger.Engine {
	return ledger.NewEngine(memory.NewTransactionStore())
}

func deposit(client, tx uint32, amount string) models.Event {
	return models.Event{Kind: models.KindDeposit, Client: client, Tx: tx, Amount: dec(amount)}
}

func withdrawal(client, tx uint32, amount string) models.Event {
	return models.Event{Kind: models.KindWithdrawal, Client: client, Tx: tx, Amount: dec(amount)}
}

func ref(kind models.EventKind, client, tx uint32) models.Event {
	return models.Event{Kind: kind, Client: client, Tx: tx}
}

func requireBalances(t *testing.T, account models.Account, available, held, total string) {
	t.Helper()
	assert.True(t, account.Available.Equal(dec(available)),
		"available: want %s, got %s", available, account.Available)
	assert.True(t, account.Held.Equal(dec(held)),
		"held: want %s, got %s", held, account.Held)
	assert.True(t, account.Total.Equal(dec(total)),
		"total: want %s, got %s", total, account.Total)
}

func requireInvariant(t *testing.T, engine *ledger.Engine) {
	t.Helper()
	for _, account := range engine.Accounts() {
		require.True(t, account.Total.Equal(account.Available.Add(account.Held)),
			"client %d: total %s != available %s + held %s",
			account.Client, account.Total, account.Available, account.Held)
	}
}

func TestDepositAndWithdrawal(t *testing.T) {
	engine := newEngine()

	require.NoError(t, engine.Apply(deposit(1, 1, "10.50")))
	require.NoError(t, engine.Apply(withdrawal(1, 2, "4.25")))

	accounts := engine.Accounts()
	require.Len(t, accounts, 1)
	requireBalances(t, accounts[0], "6.25", "0", "6.25")
	assert.False(t, accounts[0].Locked)
	requireInvariant(t, engine)
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	engine := newEngine()
	require.NoError(t, engine.Apply(deposit(1, 1, "3")))

	err := engine.Apply(withdrawal(1, 2, "3.0001"))
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	// The failed event must not partially apply.
	requireBalances(t, engine.Accounts()[0], "3", "0", "3")
}

func TestFailedEventStillCreatesAccount(t *testing.T) {
	engine := newEngine()

	err := engine.Apply(withdrawal(2, 22, "2.0222"))
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	accounts := engine.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, uint32(2), accounts[0].Client)
	requireBalances(t, accounts[0], "0", "0", "0")
}

func TestDisputeMovesFundsToHeld(t *testing.T) {
	engine := newEngine()
	require.NoError(t, engine.Apply(deposit(1, 1, "200.9999")))
	require.NoError(t, engine.Apply(withdrawal(1, 2, "100.5001")))

	require.NoError(t, engine.Apply(ref(models.KindDispute, 1, 2)))

	// Disputing a withdrawal subtracts its amount from available a second
	// time; the balance is allowed to go negative.
	requireBalances(t, engine.Accounts()[0], "-0.0003", "100.5001", "100.4998")
	requireInvariant(t, engine)
}

func TestResolveReturnsToBaseline(t *testing.T) {
	engine := newEngine()
	require.NoError(t, engine.Apply(deposit(1, 1, "200.9999")))
	require.NoError(t, engine.Apply(withdrawal(1, 2, "100.5001")))
	require.NoError(t, engine.Apply(ref(models.KindDispute, 1, 2)))

	require.NoError(t, engine.Apply(ref(models.KindResolve, 1, 2)))

	account := engine.Accounts()[0]
	requireBalances(t, account, "100.4998", "0", "100.4998")
	assert.False(t, account.Locked)
	requireInvariant(t, engine)
}

func TestChargebackLocksAccount(t *testing.T) {
	engine := newEngine()
	require.NoError(t, engine.Apply(deposit(1, 1, "200.9999")))
	require.NoError(t, engine.Apply(withdrawal(1, 2, "100.5001")))
	require.NoError(t, engine.Apply(ref(models.KindDispute, 1, 2)))

	require.NoError(t, engine.Apply(ref(models.KindChargeback, 1, 2)))

	account := engine.Accounts()[0]
	requireBalances(t, account, "-0.0003", "0", "-0.0003")
	assert.True(t, account.Locked)
	requireInvariant(t, engine)
}

func TestLockedAccountRejectsEveryEvent(t *testing.T) {
	engine := newEngine()
	require.NoError(t, engine.Apply(deposit(1, 1, "50")))
	require.NoError(t, engine.Apply(ref(models.KindDispute, 1, 1)))
	require.NoError(t, engine.Apply(ref(models.KindChargeback, 1, 1)))

	locked := engine.Accounts()[0]
	require.True(t, locked.Locked)

	events := []models.Event{
		deposit(1, 10, "1"),
		withdrawal(1, 11, "1"),
		ref(models.KindDispute, 1, 1),
		ref(models.KindResolve, 1, 1),
		ref(models.KindChargeback, 1, 1),
	}
	for _, event := range events {
		t.Run(string(event.Kind), func(t *testing.T) {
			err := engine.Apply(event)
			require.ErrorIs(t, err, ledger.ErrAccountLocked)
			assert.Equal(t, locked, engine.Accounts()[0], "balances must not change after lock")
		})
	}
}

func TestReferenceErrors(t *testing.T) {
	for _, kind := range []models.EventKind{models.KindDispute, models.KindResolve, models.KindChargeback} {
		t.Run(fmt.Sprintf("%s unknown tx", kind), func(t *testing.T) {
			engine := newEngine()
			require.NoError(t, engine.Apply(deposit(1, 1, "5")))

			err := engine.Apply(ref(kind, 1, 999))
			require.ErrorIs(t, err, ledger.ErrUnknownTransaction)
			requireBalances(t, engine.Accounts()[0], "5", "0", "5")
		})

		t.Run(fmt.Sprintf("%s client mismatch", kind), func(t *testing.T) {
			engine := newEngine()
			require.NoError(t, engine.Apply(deposit(1, 1, "5")))

			err := engine.Apply(ref(kind, 2, 1))
			require.ErrorIs(t, err, ledger.ErrClientMismatch)
			requireInvariant(t, engine)
		})
	}
}

func TestForwardReferenceFails(t *testing.T) {
	engine := newEngine()

	// The dispute arrives before the deposit it references.
	err := engine.Apply(ref(models.KindDispute, 1, 7))
	require.ErrorIs(t, err, ledger.ErrUnknownTransaction)

	// Once the deposit has been applied the same dispute succeeds.
	require.NoError(t, engine.Apply(deposit(1, 7, "9.99")))
	require.NoError(t, engine.Apply(ref(models.KindDispute, 1, 7)))
	requireBalances(t, engine.Accounts()[0], "0", "9.99", "9.99")
}

func TestRejectedWithdrawalRemainsDisputable(t *testing.T) {
	engine := newEngine()
	require.NoError(t, engine.Apply(deposit(1, 1, "5")))

	// The withdrawal is rejected but still recorded, so a later dispute can
	// reference it.
	require.ErrorIs(t, engine.Apply(withdrawal(1, 2, "100")), ledger.ErrInsufficientFunds)
	require.NoError(t, engine.Apply(ref(models.KindDispute, 1, 2)))

	requireBalances(t, engine.Accounts()[0], "-95", "100", "5")
	requireInvariant(t, engine)
}

func TestDuplicateTransactionID(t *testing.T) {
	engine := newEngine()
	require.NoError(t, engine.Apply(deposit(1, 1, "10")))

	// The duplicate still deposits, but its registration is rejected and the
	// first write wins for later references.
	err := engine.Apply(deposit(1, 1, "999"))
	require.Error(t, err)

	require.NoError(t, engine.Apply(ref(models.KindDispute, 1, 1)))
	requireBalances(t, engine.Accounts()[0], "999", "10", "1009")
	requireInvariant(t, engine)
}

func TestAccountsSortedByClient(t *testing.T) {
	engine := newEngine()
	require.NoError(t, engine.Apply(deposit(30, 1, "1")))
	require.NoError(t, engine.Apply(deposit(2, 2, "1")))
	require.NoError(t, engine.Apply(deposit(17, 3, "1")))

	accounts := engine.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, uint32(2), accounts[0].Client)
	assert.Equal(t, uint32(17), accounts[1].Client)
	assert.Equal(t, uint32(30), accounts[2].Client)
}
