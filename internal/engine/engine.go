package engine

import (
	"go.uber.org/zap"
)

// Engine applies a validated batch sequentially. Per-record rule
// violations never abort the batch: the record is skipped, a warn trace
// is emitted, and processing continues. Ledger and store are owned by
// the caller so separate batches run fully isolated.
type Engine struct {
	ledger   *Ledger
	accounts *AccountStore
	log      *zap.SugaredLogger
}

func New(ledger *Ledger, accounts *AccountStore, log *zap.SugaredLogger) *Engine {
	return &Engine{ledger: ledger, accounts: accounts, log: log}
}

// Run validates the whole batch and, only if validation passes, applies
// every record in input order. On a validation error no account is
// touched.
func (e *Engine) Run(records []Record) error {
	if err := Validate(records); err != nil {
		return err
	}
	for _, r := range records {
		e.apply(r)
	}
	return nil
}

// Accounts returns the final snapshot, ordered by client id.
func (e *Engine) Accounts() []*Account {
	return e.accounts.Snapshot()
}

func (e *Engine) apply(r Record) {
	account := e.accounts.GetOrCreate(r.ClientID)
	if account.Locked {
		e.log.Warnw("skipping record for locked account", "tx", r.TxID, "client", r.ClientID)
		return
	}

	switch r.Kind {
	case KindDeposit, KindWithdrawal:
		e.applyCashFlow(account, r)
	case KindDispute:
		e.applyDispute(account, r)
	case KindResolve:
		e.applyResolve(account, r)
	case KindChargeback:
		e.applyChargeback(account, r)
	}
}

func (e *Engine) applyCashFlow(account *Account, r Record) {
	cf, err := newCashFlow(r)
	if err != nil {
		// validation already vetted the record, so this is corrupt state
		e.log.Errorw("rejected cash flow for validated record", "tx", r.TxID, "err", err)
		return
	}
	switch cf.Kind {
	case KindDeposit:
		account.deposit(cf.Amount)
	case KindWithdrawal:
		if !account.withdraw(cf.Amount) {
			e.log.Warnw("insufficient funds for withdrawal", "tx", r.TxID, "client", r.ClientID)
			return
		}
	}
	e.ledger.Record(cf)
}

func (e *Engine) applyDispute(account *Account, r Record) {
	cf := e.ledger.Find(r.TxID)
	if cf == nil || cf.ClientID != r.ClientID {
		e.log.Warnw("dispute for unknown transaction or wrong client", "tx", r.TxID, "client", r.ClientID)
		return
	}
	next, err := cf.State.transition(StateDisputed)
	if err != nil {
		e.log.Warnw("dispute refused", "tx", r.TxID, "state", cf.State.String())
		return
	}
	account.hold(cf.Amount)
	cf.State = next
}

func (e *Engine) applyResolve(account *Account, r Record) {
	cf := e.ledger.Find(r.TxID)
	if cf == nil || cf.ClientID != r.ClientID {
		e.log.Warnw("resolve for unknown transaction or wrong client", "tx", r.TxID, "client", r.ClientID)
		return
	}
	next, err := cf.State.transition(StateSettled)
	if err != nil {
		e.log.Warnw("resolve for transaction not under dispute", "tx", r.TxID, "state", cf.State.String())
		return
	}
	account.release(cf.Amount)
	cf.State = next
}

func (e *Engine) applyChargeback(account *Account, r Record) {
	cf := e.ledger.Find(r.TxID)
	if cf == nil || cf.ClientID != r.ClientID {
		e.log.Warnw("chargeback for unknown transaction or wrong client", "tx", r.TxID, "client", r.ClientID)
		return
	}
	next, err := cf.State.transition(StateChargedBack)
	if err != nil {
		e.log.Warnw("chargeback for transaction not under dispute", "tx", r.TxID, "state", cf.State.String())
		return
	}
	account.chargeBack(cf.Amount)
	cf.State = next
}
