package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EventKind is the type of a transaction event as it appears in input data.
type EventKind string

const (
	// KindDeposit credits a client's account, increasing available and total.
	KindDeposit EventKind = "deposit"

	// KindWithdrawal debits a client's account, decreasing available and total.
	KindWithdrawal EventKind = "withdrawal"

	// KindDispute places a hold on a previously applied deposit or withdrawal,
	// moving its amount from available to held. Total is unchanged.
	KindDispute EventKind = "dispute"

	// KindResolve releases a dispute, moving the held amount back to available.
	KindResolve EventKind = "resolve"

	// KindChargeback finalizes a dispute as a reversal, removing the amount
	// from held and total and permanently locking the account.
	KindChargeback EventKind = "chargeback"
)

// ParseEventKind parses an input type column value. Matching is
// case-insensitive.
func ParseEventKind(s string) (EventKind, error) {
	switch EventKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDeposit:
		return KindDeposit, nil
	case KindWithdrawal:
		return KindWithdrawal, nil
	case KindDispute:
		return KindDispute, nil
	case KindResolve:
		return KindResolve, nil
	case KindChargeback:
		return KindChargeback, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// Event is one parsed input row.
//
// Amount is present for deposits and withdrawals only; dispute, resolve and
// chargeback events carry no amount of their own and reference an earlier
// transaction through Tx instead.
type Event struct {
	Kind   EventKind
	Client uint32
	Tx     uint32
	Amount decimal.Decimal
}

// Referenceable reports whether the event can be the target of a later
// dispute, resolve or chargeback.
func (e Event) Referenceable() bool {
	return e.Kind == KindDeposit || e.Kind == KindWithdrawal
}
