package engine

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DisputeState is the lifecycle of a cash flow entry. Settled entries can
// be disputed, disputed entries can be resolved (back to settled) or
// charged back. ChargedBack is terminal.
type DisputeState int

const (
	StateSettled DisputeState = iota
	StateDisputed
	StateChargedBack
)

func (s DisputeState) String() string {
	switch s {
	case StateSettled:
		return "settled"
	case StateDisputed:
		return "disputed"
	case StateChargedBack:
		return "charged_back"
	}
	return "unknown"
}

var errIllegalTransition = errors.New("illegal dispute state transition")

// transition is the single place dispute lifecycle rules live. Handlers
// ask for a transition and skip the record when it is refused.
func (s DisputeState) transition(to DisputeState) (DisputeState, error) {
	switch {
	case s == StateSettled && to == StateDisputed:
		return to, nil
	case s == StateDisputed && (to == StateSettled || to == StateChargedBack):
		return to, nil
	}
	return s, errIllegalTransition
}

// CashFlow is the ledger record of one accepted deposit or withdrawal.
// Amount is always present, non-negative and within scale; entries are
// only built through newCashFlow from a validated record.
type CashFlow struct {
	Kind     Kind
	ClientID uint16
	TxID     uint32
	Amount   decimal.Decimal
	State    DisputeState
}

func newCashFlow(r Record) (*CashFlow, error) {
	if !r.Kind.Moving() {
		return nil, errors.New("only deposits and withdrawals produce cash flows")
	}
	if err := checkAmount(r); err != nil {
		return nil, err
	}
	return &CashFlow{
		Kind:     r.Kind,
		ClientID: r.ClientID,
		TxID:     r.TxID,
		Amount:   *r.Amount,
		State:    StateSettled,
	}, nil
}

// Ledger is the append-only store of accepted cash flows, keyed by tx id.
// The dispute state is the only thing that mutates after insertion.
type Ledger struct {
	entries map[uint32]*CashFlow
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[uint32]*CashFlow)}
}

// Record inserts the entry for an accepted deposit or withdrawal.
func (l *Ledger) Record(cf *CashFlow) {
	l.entries[cf.TxID] = cf
}

// Find returns the entry for tx, or nil when the id was never accepted.
func (l *Ledger) Find(tx uint32) *CashFlow {
	return l.entries[tx]
}

// Entries returns every ledger entry, in no particular order.
func (l *Ledger) Entries() []*CashFlow {
	out := make([]*CashFlow, 0, len(l.entries))
	for _, cf := range l.entries {
		out = append(out, cf)
	}
	return out
}
