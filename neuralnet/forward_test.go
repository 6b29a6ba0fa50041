package neuralnet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestForwardOneLayer(t *testing.T) {
	w := mat.NewDense(2, 3, []float64{
		1, 0, -1,
		0.5, 0.5, 0.5,
	})
	b := mat.NewDense(2, 1, []float64{0.5, -2})
	x := mat.NewDense(3, 2, []float64{
		1, 2,
		2, 0,
		3, 1,
	})

	c, err := ForwardOneLayer(w, b, x, ReLU{})
	require.NoError(t, err)

	wantZ := mat.NewDense(2, 2, []float64{
		-1.5, 1.5,
		1, -0.5,
	})
	wantA := mat.NewDense(2, 2, []float64{
		0, 1.5,
		1, 0,
	})
	assert.True(t, mat.EqualApprox(wantZ, c.Z, 1e-12), "Z = %v", mat.Formatted(c.Z))
	assert.True(t, mat.EqualApprox(wantA, c.A, 1e-12), "A = %v", mat.Formatted(c.A))
	assert.Same(t, x, c.Input)
	assert.Same(t, w, c.Weights)
}

func TestForwardOneLayerShapeError(t *testing.T) {
	w := mat.NewDense(2, 3, nil)
	b := mat.NewDense(2, 1, nil)
	x := mat.NewDense(4, 5, nil)

	_, err := ForwardOneLayer(w, b, x, Sigmoid{})
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr), "got %v", err)
	assert.Equal(t, [2]int{3, 5}, shapeErr.Want)
	assert.Equal(t, [2]int{4, 5}, shapeErr.Got)

	_, err = ForwardOneLayer(w, mat.NewDense(3, 1, nil), mat.NewDense(3, 5, nil), Sigmoid{})
	assert.True(t, errors.As(err, &shapeErr), "bad bias accepted: %v", err)
}

func TestForwardAllLayersOutput(t *testing.T) {
	tests := []struct {
		description string
		topology    Topology
		scale       float64
	}{
		{description: "logistic regression", topology: Topology{4, 1}, scale: 1},
		{description: "one hidden layer", topology: Topology{4, 3, 1}, scale: DefaultInitScale},
		{description: "deep and wide", topology: Topology{4, 16, 8, 4, 1}, scale: 2},
	}
	x := mat.NewDense(4, 5, []float64{
		0.1, 0.9, 0.3, 0.0, 1.0,
		0.5, 0.2, 0.8, 0.4, 0.0,
		0.7, 0.6, 0.1, 0.9, 0.3,
		0.0, 1.0, 0.5, 0.2, 0.6,
	})
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			p, err := InitParameters(tt.topology, RandomNormal(3, tt.scale))
			require.NoError(t, err)

			caches, err := ForwardAllLayers(x, p)
			require.NoError(t, err)
			require.Len(t, caches, len(tt.topology))
			assert.Same(t, x, caches[0].A)
			assert.Nil(t, caches[0].Weights)

			out := caches[len(caches)-1].A
			r, c := out.Dims()
			assert.Equal(t, 1, r)
			assert.Equal(t, 5, c)
			for _, v := range out.RawRowView(0) {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
			for i := 1; i < len(caches)-1; i++ {
				assert.IsType(t, ReLU{}, caches[i].Activation, "layer %d", i)
				assert.Same(t, caches[i-1].A, caches[i].Input, "layer %d", i)
			}
			assert.IsType(t, Sigmoid{}, caches[len(caches)-1].Activation)
		})
	}
}

func TestForwardAllLayersReportsLayer(t *testing.T) {
	p, err := InitParameters(Topology{3, 2, 1}, Zeros())
	require.NoError(t, err)
	p.Layer(2).Weights = mat.NewDense(1, 4, nil)

	_, err = ForwardAllLayers(mat.NewDense(3, 2, nil), p)
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr), "got %v", err)
	assert.Equal(t, 2, shapeErr.Layer)
}

func TestZeroInitIsSymmetric(t *testing.T) {
	x, y := xorBatch()
	topology := Topology{2, 3, 1}
	nn, err := NewNeuralNetwork(topology, Params{Lr: 0.5, Iterations: 25, Init: Zeros()})
	require.NoError(t, err)

	_, err = nn.Train(x, y)
	require.NoError(t, err)

	// every hidden unit sees the same weights, so they never become different
	caches, err := ForwardAllLayers(x, nn.Parameters)
	require.NoError(t, err)
	hidden := caches[1].A
	for unit := 1; unit < topology[1]; unit++ {
		assert.Equal(t, hidden.RawRowView(0), hidden.RawRowView(unit), "unit %d", unit)
	}
	w := nn.Parameters.Layer(1).Weights
	for unit := 1; unit < topology[1]; unit++ {
		assert.Equal(t, w.RawRowView(0), w.RawRowView(unit), "unit %d", unit)
	}
}
