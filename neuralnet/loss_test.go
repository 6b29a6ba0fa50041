package neuralnet

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCrossEntropyCompute(t *testing.T) {
	tests := []struct {
		description string
		a, y        []float64
		want        float64
	}{
		{
			description: "coin flip",
			a:           []float64{0.5, 0.5},
			y:           []float64{1, 0},
			want:        math.Log(2),
		},
		{
			description: "confident and right",
			a:           []float64{0.9, 0.2, 0.7},
			y:           []float64{1, 0, 1},
			want:        -(math.Log(0.9) + math.Log(0.8) + math.Log(0.7)) / 3,
		},
		{
			description: "confident and wrong",
			a:           []float64{0.1},
			y:           []float64{1},
			want:        -math.Log(0.1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			a := mat.NewDense(1, len(tt.a), tt.a)
			y := mat.NewDense(1, len(tt.y), tt.y)
			got, err := Cost(a, y)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCrossEntropyClipsSaturatedOutput(t *testing.T) {
	a := mat.NewDense(1, 4, []float64{0, 1, 1, 0})
	y := mat.NewDense(1, 4, []float64{1, 0, 1, 0})

	cost, err := Cost(a, y)
	require.NoError(t, err)
	assert.False(t, math.IsInf(cost, 0) || math.IsNaN(cost))
	assert.Greater(t, cost, 10.0)

	da, err := CrossEntropy{}.Gradient(a, y)
	require.NoError(t, err)
	for _, v := range da.RawRowView(0) {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v), "gradient %v", v)
	}
}

func TestCrossEntropyNaNIsNumericError(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{math.NaN(), 0.5})
	y := mat.NewDense(1, 2, []float64{1, 0})

	_, err := Cost(a, y)
	var numeric *NumericError
	assert.True(t, errors.As(err, &numeric), "got %v", err)
}

func TestCrossEntropyShapeError(t *testing.T) {
	_, err := Cost(mat.NewDense(1, 3, nil), mat.NewDense(1, 2, nil))
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr), "got %v", err)
}

func TestCrossEntropyGradient(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{0.5, 0.25})
	y := mat.NewDense(1, 2, []float64{1, 0})
	grad, err := CrossEntropy{}.Gradient(a, y)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-2, 1 / 0.75}, grad.RawRowView(0), 1e-12)
	assert.Equal(t, []float64{0.5, 0.25}, a.RawRowView(0))
}
