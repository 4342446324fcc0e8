package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind enumerates the transaction types accepted on the wire.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// ParseKind maps the wire string onto a Kind. Matching is exact and
// lowercase; anything else is a batch-fatal error upstream.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unrecognized transaction type %q", s)
}

// Moving returns true for the kinds that move money and create a cash
// flow entry. The other three reference an existing entry by tx id.
func (k Kind) Moving() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Record is one parsed input transaction. Amount is nil for the
// referencing kinds; when present on those it is carried but never used.
type Record struct {
	Kind     Kind
	ClientID uint16
	TxID     uint32
	Amount   *decimal.Decimal
}
