package neuralnet

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Gradient holds the derivatives of the cost for one layer, shaped like the
// forward values they belong to.
type Gradient struct {
	DW     *mat.Dense
	DB     *mat.Dense
	DZ     *mat.Dense
	DAPrev *mat.Dense
}

// BackwardOneLayer turns dA, the cost gradient w.r.t. the layer output, into the
// parameter gradients and the gradient w.r.t. the layer input.
func BackwardOneLayer(dA *mat.Dense, c Cache, fn ActivationFunction) (Gradient, error) {
	return backwardLayer(dA, c, fn, 0)
}

func backwardLayer(dA *mat.Dense, c Cache, fn ActivationFunction, layer int) (Gradient, error) {
	ar, m := c.A.Dims()
	if r, col := dA.Dims(); r != ar || col != m {
		return Gradient{}, shapeErr("backward", layer, ar, m, r, col)
	}

	var dz mat.Dense
	dz.MulElem(dA, Derivative(fn, c.A))

	var dw mat.Dense
	dw.Mul(&dz, c.Input.T())
	dw.Scale(1/float64(m), &dw)

	db := mat.NewDense(ar, 1, nil)
	for i := 0; i < ar; i++ {
		db.Set(i, 0, mat.Sum(dz.RowView(i))/float64(m))
	}

	var dAPrev mat.Dense
	dAPrev.Mul(c.Weights.T(), &dz)

	g := Gradient{DW: &dw, DB: db, DZ: &dz, DAPrev: &dAPrev}
	if !finite(g.DW) || !finite(g.DB) || !finite(g.DAPrev) {
		return Gradient{}, numericErr("backward", layer)
	}
	return g, nil
}

// BackwardAllLayers backpropagates the cross-entropy cost through caches, as
// returned by ForwardAllLayers. grads[i] belongs to forward layer i; grads[0]
// is left empty.
func BackwardAllLayers(y *mat.Dense, caches []Cache) ([]Gradient, error) {
	layers := len(caches) - 1
	if layers < 1 {
		return nil, &ConfigError{Field: "caches", Reason: "no layers to backpropagate"}
	}
	grads := make([]Gradient, layers+1)

	dA, err := CrossEntropy{}.Gradient(caches[layers].A, y)
	if err != nil {
		return nil, err
	}
	for i := layers; i >= 1; i-- {
		g, err := backwardLayer(dA, caches[i], layerActivation(i, layers), i)
		if err != nil {
			return nil, err
		}
		grads[i] = g
		dA = g.DAPrev
	}
	return grads, nil
}

func finite(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
