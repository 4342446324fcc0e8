package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisputeStateTransitions(t *testing.T) {
	cases := []struct {
		from, to DisputeState
		ok       bool
	}{
		{StateSettled, StateDisputed, true},
		{StateDisputed, StateSettled, true},
		{StateDisputed, StateChargedBack, true},
		{StateSettled, StateSettled, false},
		{StateSettled, StateChargedBack, false},
		{StateDisputed, StateDisputed, false},
		{StateChargedBack, StateSettled, false},
		{StateChargedBack, StateDisputed, false},
		{StateChargedBack, StateChargedBack, false},
	}
	for _, c := range cases {
		next, err := c.from.transition(c.to)
		if c.ok {
			assert.NoError(t, err, "%s -> %s", c.from, c.to)
			assert.Equal(t, c.to, next)
		} else {
			assert.Error(t, err, "%s -> %s", c.from, c.to)
			assert.Equal(t, c.from, next, "refused transition must not move state")
		}
	}
}

func TestNewCashFlowRequiresMovingKind(t *testing.T) {
	_, err := newCashFlow(rec(KindDispute, 1, 1, "5"))
	assert.Error(t, err)
}

func TestNewCashFlowRejectsBadAmounts(t *testing.T) {
	_, err := newCashFlow(rec(KindDeposit, 1, 1, ""))
	assert.Error(t, err)
	_, err = newCashFlow(rec(KindDeposit, 1, 1, "-1"))
	assert.Error(t, err)
	_, err = newCashFlow(rec(KindDeposit, 1, 1, "0.00001"))
	assert.Error(t, err)

	cf, err := newCashFlow(rec(KindWithdrawal, 3, 9, "2.5"))
	assert.NoError(t, err)
	assert.Equal(t, KindWithdrawal, cf.Kind)
	assert.Equal(t, uint16(3), cf.ClientID)
	assert.Equal(t, uint32(9), cf.TxID)
	assert.Equal(t, StateSettled, cf.State)
}
