package btc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateFormula(t *testing.T) {
	f := NewFeeEstimator(10)

	tests := []struct {
		name    string
		inputs  int
		outputs int
		want    int64
	}{
		{"single input, two outputs", 1, 2, 10 * (1*180 + 2*34 + 10 - 1)},
		{"three inputs, two outputs", 3, 2, 10 * (3*180 + 2*34 + 10 - 3)},
		{"no inputs", 0, 2, 10 * (2*34 + 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Estimate(tt.inputs, tt.outputs))
		})
	}
}

// 固定输出数时，手续费对输入数单调不减
func TestEstimateMonotonicInInputCount(t *testing.T) {
	f := NewFeeEstimator(10)

	prev := f.Estimate(0, PaymentOutputs)
	for n := 1; n <= 200; n++ {
		cur := f.Estimate(n, PaymentOutputs)
		assert.GreaterOrEqual(t, cur, prev, "inputs=%d", n)
		prev = cur
	}
}

func TestEstimateScalesWithRate(t *testing.T) {
	low := NewFeeEstimator(1)
	high := NewFeeEstimator(108)

	assert.Equal(t, int64(108)*low.Estimate(2, 2), high.Estimate(2, 2))
}
