package neuralnet

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTopologyValidate(t *testing.T) {
	tests := []struct {
		description string
		topology    Topology
		wantErr     bool
	}{
		{description: "single layer", topology: Topology{4, 1}},
		{description: "two hidden layers", topology: Topology{12, 5, 2, 1}},
		{description: "too short", topology: Topology{1}, wantErr: true},
		{description: "empty", topology: nil, wantErr: true},
		{description: "zero width", topology: Topology{3, 0, 1}, wantErr: true},
		{description: "output wider than 1", topology: Topology{3, 2}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			err := tt.topology.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestInitParametersShapes(t *testing.T) {
	topology := Topology{6, 4, 3, 1}
	p, err := InitParameters(topology, RandomNormal(7, DefaultInitScale))
	require.NoError(t, err)
	require.Equal(t, 3, p.NumLayers())
	require.NoError(t, p.Validate(topology))
	assert.Equal(t, topology, p.Topology())

	for i := 1; i <= p.NumLayers(); i++ {
		l := p.Layer(i)
		r, c := l.Weights.Dims()
		assert.Equal(t, topology[i], r)
		assert.Equal(t, topology[i-1], c)
		assert.Equal(t, 0.0, mat.Sum(l.Bias), "bias of layer %d", i)
		for _, w := range l.Weights.RawMatrix().Data {
			// N(0,1)*0.01 stays well inside 0.1
			assert.Less(t, math.Abs(w), 0.1)
		}
	}
	assert.Equal(t, 6*4+4+4*3+3+3+1, p.Size())
}

func TestRandomNormalIsSeeded(t *testing.T) {
	a := RandomNormal(42, 1)(3, 2)
	b := RandomNormal(42, 1)(3, 2)
	c := RandomNormal(43, 1)(3, 2)
	assert.True(t, mat.Equal(a, b))
	assert.False(t, mat.Equal(a, c))
}

func TestParametersValidateDetectsShape(t *testing.T) {
	topology := Topology{3, 2, 1}
	p, err := InitParameters(topology, Zeros())
	require.NoError(t, err)

	p.Layer(2).Weights = mat.NewDense(1, 3, nil)
	err = p.Validate(topology)
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr), "got %v", err)
	assert.Equal(t, 2, shapeErr.Layer)
	assert.Equal(t, [2]int{1, 2}, shapeErr.Want)
	assert.Equal(t, [2]int{1, 3}, shapeErr.Got)
}

func TestInitParametersRejectsBadInitializer(t *testing.T) {
	_, err := InitParameters(Topology{3, 1}, func(rows, cols int) *mat.Dense {
		return mat.NewDense(cols, rows+1, nil)
	})
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr), "got %v", err)
}

func TestParametersVectorLayout(t *testing.T) {
	p, err := InitParameters(Topology{2, 2, 1}, sequenceInit(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	p.Layer(1).Bias.Set(1, 0, -1)

	// W1 row-major, b1, W2, b2
	assert.Equal(t, []float64{1, 2, 3, 4, 0, -1, 5, 6, 0}, p.Vector())

	clone := p.Clone()
	require.NoError(t, clone.SetVector(make([]float64, clone.Size())))
	assert.Equal(t, 0.0, mat.Sum(clone.Layer(1).Weights))
	assert.Equal(t, 1.0, p.Layer(1).Weights.At(0, 0), "clone shares memory with the original")

	assert.Error(t, clone.SetVector([]float64{1}))
}
