package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Account is one client's balance snapshot. Total is derived, never
// stored, so available and held can not drift out of sync with it.
type Account struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

// Total is the sum of available and held funds.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

func (a *Account) deposit(amount decimal.Decimal) {
	a.Available = a.Available.Add(amount)
}

// withdraw returns false without mutating when funds are insufficient.
func (a *Account) withdraw(amount decimal.Decimal) bool {
	if a.Available.LessThan(amount) {
		return false
	}
	a.Available = a.Available.Sub(amount)
	return true
}

// hold moves the disputed amount from available to held. Available may
// go negative here when the funds were already withdrawn; the account is
// reconciled by the eventual resolve or chargeback.
func (a *Account) hold(amount decimal.Decimal) {
	a.Available = a.Available.Sub(amount)
	a.Held = a.Held.Add(amount)
}

func (a *Account) release(amount decimal.Decimal) {
	a.Held = a.Held.Sub(amount)
	a.Available = a.Available.Add(amount)
}

func (a *Account) chargeBack(amount decimal.Decimal) {
	a.Held = a.Held.Sub(amount)
	a.Locked = true
}

// AccountStore maps client ids to accounts, creating zero-balance
// accounts lazily. It is plain state passed into the Engine, never a
// package-level singleton, so batches and fixtures stay isolated.
type AccountStore struct {
	accounts map[uint16]*Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[uint16]*Account)}
}

// GetOrCreate returns the account for client, initializing it with zero
// balances on first reference.
func (s *AccountStore) GetOrCreate(client uint16) *Account {
	a, ok := s.accounts[client]
	if !ok {
		a = &Account{ClientID: client}
		s.accounts[client] = a
	}
	return a
}

// Snapshot returns all accounts ordered by client id.
func (s *AccountStore) Snapshot() []*Account {
	out := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}
