package models

import "github.com/shopspring/decimal"

// Account is the balance record for a single client.
//
// Total must equal Available plus Held after every committed event. Once
// Locked is set by a chargeback it is never cleared.
type Account struct {
	Client    uint32
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// NewAccount returns a zero-balance, unlocked account for the given client.
func NewAccount(client uint32) Account {
	return Account{Client: client}
}

// StoredTransaction is the portion of a deposit or withdrawal retained so
// that later dispute, resolve and chargeback events can recover the owning
// client and the original amount.
type StoredTransaction struct {
	Client uint32
	Amount decimal.Decimal
}
