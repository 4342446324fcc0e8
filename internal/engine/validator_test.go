package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsWellFormedBatch(t *testing.T) {
	err := Validate([]Record{
		rec(KindDeposit, 1, 1, "10"),
		rec(KindWithdrawal, 1, 2, "3.5"),
		rec(KindDispute, 1, 1, ""),
		rec(KindResolve, 1, 1, ""),
		rec(KindChargeback, 1, 1, ""),
	})
	assert.NoError(t, err)
}

func TestValidateRejectsUnknownKind(t *testing.T) {
	err := Validate([]Record{rec(Kind("refund"), 1, 1, "10")})
	assert.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "refund")
}

func TestValidateKindIsCaseSensitive(t *testing.T) {
	err := Validate([]Record{rec(Kind("Deposit"), 1, 1, "10")})
	assert.Error(t, err)
}

func TestValidateRejectsDuplicateTxID(t *testing.T) {
	err := Validate([]Record{
		rec(KindDeposit, 1, 100, "10"),
		rec(KindDeposit, 2, 100, "10"),
	})
	assert.EqualError(t, err, "Transaction ids are not unique!")
}

func TestValidateDuplicateAcrossDepositAndWithdrawal(t *testing.T) {
	err := Validate([]Record{
		rec(KindDeposit, 1, 7, "10"),
		rec(KindWithdrawal, 1, 7, "2"),
	})
	assert.EqualError(t, err, "Transaction ids are not unique!")
}

func TestValidateReferencingKindsMayRepeatTxIDs(t *testing.T) {
	err := Validate([]Record{
		rec(KindDeposit, 1, 1, "10"),
		rec(KindDispute, 1, 1, ""),
		rec(KindResolve, 1, 1, ""),
		rec(KindDispute, 1, 1, ""),
		rec(KindChargeback, 1, 1, ""),
	})
	assert.NoError(t, err)
}

func TestValidateRejectsMissingAmount(t *testing.T) {
	err := Validate([]Record{rec(KindDeposit, 1, 3, "")})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tx 3")
	assert.Contains(t, err.Error(), "missing")
}

func TestValidateRejectsNegativeAmount(t *testing.T) {
	err := Validate([]Record{rec(KindWithdrawal, 1, 4, "-2")})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}

func TestValidateRejectsOverPrecisionAmount(t *testing.T) {
	err := Validate([]Record{rec(KindDeposit, 1, 5, "1.23456")})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scale")
}

func TestValidateAcceptsFourDecimalPlaces(t *testing.T) {
	err := Validate([]Record{rec(KindDeposit, 1, 6, "1.2345")})
	assert.NoError(t, err)
}

func TestValidateIgnoresAmountOnReferencingKinds(t *testing.T) {
	// an over-precision amount on a dispute is carried, not checked
	err := Validate([]Record{
		rec(KindDeposit, 1, 1, "10"),
		rec(KindDispute, 1, 1, "0.123456"),
	})
	assert.NoError(t, err)
}
