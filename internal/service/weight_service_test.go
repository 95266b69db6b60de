package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightService_WithinAllowance(t *testing.T) {
	s := NewWeightService(25, 200)

	charge, serr := s.Calculate(20)
	require.Nil(t, serr)
	assert.Equal(t, 0.0, charge.ExcessKg)
	assert.Equal(t, 0.0, charge.Fee)
	assert.False(t, charge.PaymentRequired)
}

func TestWeightService_ExactlyAtAllowance(t *testing.T) {
	s := NewWeightService(25, 200)

	charge, serr := s.Calculate(25)
	require.Nil(t, serr)
	assert.Equal(t, 0.0, charge.Fee)
	assert.False(t, charge.PaymentRequired)
}

func TestWeightService_OverAllowance(t *testing.T) {
	s := NewWeightService(25, 200)

	charge, serr := s.Calculate(30)
	require.Nil(t, serr)
	assert.Equal(t, 5.0, charge.ExcessKg)
	assert.Equal(t, 1000.0, charge.Fee)
	assert.True(t, charge.PaymentRequired)
	assert.Equal(t, "INR", charge.Currency)
}

func TestWeightService_FractionalExcessChargesStartedKilogram(t *testing.T) {
	s := NewWeightService(25, 200)

	charge, serr := s.Calculate(26.3)
	require.Nil(t, serr)
	assert.Equal(t, 2.0, charge.ExcessKg)
	assert.Equal(t, 400.0, charge.Fee)
}

func TestWeightService_RejectsInvalidWeights(t *testing.T) {
	s := NewWeightService(25, 200)

	for _, w := range []float64{0, -3, 51} {
		_, serr := s.Calculate(w)
		require.NotNil(t, serr, "weight %v must be rejected", w)
		assert.Equal(t, "VALIDATION_FAILED", serr.Code)
	}
}
