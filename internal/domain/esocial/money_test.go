package esocial

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyRendersFixedTwoDecimals(t *testing.T) {
	assert.Equal(t, "5000.00", MustMoney("5000").String())
	assert.Equal(t, "0.10", MustMoney("0.1").String())
	assert.Equal(t, "1234567.89", MoneyFromCents(123456789).String())
	assert.Equal(t, "-12.50", MustMoney("-12.5").String())
}

func TestMoneyRoundTripIsExact(t *testing.T) {
	inputs := []string{"0.01", "0.10", "0.30", "1999.99", "123456789012.34", "5000.00"}
	for _, in := range inputs {
		m := MustMoney(in)
		back, err := MoneyFromString(m.String())
		require.NoError(t, err)
		assert.True(t, back.Equal(m), "round trip of %s gave %s", in, back)
	}
}

func TestMoneySumHasNoFloatDrift(t *testing.T) {
	sum := MustMoney("0.1").Add(MustMoney("0.2"))
	assert.Equal(t, "0.30", sum.String())
	assert.True(t, sum.Sub(MustMoney("0.3")).IsZero())
}

func TestNewMoneyRoundsToScale(t *testing.T) {
	m := NewMoney(decimal.RequireFromString("10.005"))
	assert.Equal(t, "10.01", m.String())
}

func TestMoneyFromStringRejectsSeparators(t *testing.T) {
	_, err := MoneyFromString("1,000.00")
	assert.Error(t, err)
}

func TestMoneyFromStringRejectsSubCentDigits(t *testing.T) {
	for _, in := range []string{"1234.567", "0.004", "-10.001"} {
		_, err := MoneyFromString(in)
		assert.ErrorIs(t, err, ErrAmountPrecision, in)
	}

	m, err := MoneyFromString("1234.50")
	require.NoError(t, err)
	assert.Equal(t, "1234.50", m.String())

	m, err = MoneyFromString("1234.5000")
	require.NoError(t, err)
	assert.Equal(t, "1234.50", m.String())
}

func TestMoneyJSONRejectsSubCentDigits(t *testing.T) {
	var line LedgerLine
	err := json.Unmarshal([]byte(`{"rubric":"1001","kind":"earning","amount":"1234.567"}`), &line)
	assert.ErrorIs(t, err, ErrAmountPrecision)

	err = json.Unmarshal([]byte(`{"rubric":"1001","kind":"earning","amount":0.004}`), &line)
	assert.ErrorIs(t, err, ErrAmountPrecision)
}

func TestMoneyJSON(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"5000.00","b":12.5,"c":null}`), &payload))
	assert.Equal(t, "5000.00", payload.A.String())
	assert.Equal(t, "12.50", payload.B.String())
	assert.True(t, payload.C.IsZero())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"5000.00","b":"12.50","c":"0.00"}`, string(out))
}
