package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrDuplicateTxID aborts the batch when two money-moving records share
// a transaction id.
var ErrDuplicateTxID = errors.New("Transaction ids are not unique!")

// ValidationError marks a batch-fatal input problem. The message is safe
// to surface to the caller; internal failures use plain errors instead.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// maxAmountScale bounds the fractional digits accepted on an amount.
const maxAmountScale = 4

// Validate runs the batch-level checks over the full record sequence:
// kind well-formedness, tx-id uniqueness among deposits and withdrawals,
// and amount well-formedness on deposits and withdrawals. Any violation
// rejects the entire batch; nothing is mutated on this pass.
func Validate(records []Record) error {
	seen := make(map[uint32]struct{}, len(records))
	for _, r := range records {
		if _, err := ParseKind(string(r.Kind)); err != nil {
			return &ValidationError{msg: err.Error()}
		}
		if !r.Kind.Moving() {
			continue
		}
		if _, dup := seen[r.TxID]; dup {
			return &ValidationError{msg: ErrDuplicateTxID.Error()}
		}
		seen[r.TxID] = struct{}{}
		if err := checkAmount(r); err != nil {
			return err
		}
	}
	return nil
}

func checkAmount(r Record) error {
	if r.Amount == nil {
		return validationErrf("tx %d: value is missing", r.TxID)
	}
	if r.Amount.LessThan(decimal.Zero) {
		return validationErrf("tx %d: has a negative value", r.TxID)
	}
	if r.Amount.Exponent() < -maxAmountScale {
		return validationErrf("tx %d: has a unsupported scale (>4)", r.TxID)
	}
	return nil
}
