package neuralnet

import "gonum.org/v1/gonum/mat"

// Cache keeps what one layer computed during a forward pass. The input cache
// (index 0) only has A set.
type Cache struct {
	Weights    *mat.Dense
	Bias       *mat.Dense
	Input      *mat.Dense
	Z          *mat.Dense
	A          *mat.Dense
	Activation ActivationFunction
}

// ForwardOneLayer computes Z = W·X + b and A = fn(Z).
func ForwardOneLayer(w, b, x *mat.Dense, fn ActivationFunction) (Cache, error) {
	return forwardLayer(w, b, x, fn, 0)
}

func forwardLayer(w, b, x *mat.Dense, fn ActivationFunction, layer int) (Cache, error) {
	wr, wc := w.Dims()
	xr, xc := x.Dims()
	if wc != xr {
		return Cache{}, shapeErr("forward", layer, wc, xc, xr, xc)
	}
	if br, bc := b.Dims(); br != wr || bc != 1 {
		return Cache{}, shapeErr("forward bias", layer, wr, 1, br, bc)
	}

	z := mat.NewDense(wr, xc, nil)
	z.Mul(w, x)
	// broadcast the bias column over every example
	z.Apply(func(i, _ int, v float64) float64 {
		return v + b.At(i, 0)
	}, z)

	return Cache{
		Weights:    w,
		Bias:       b,
		Input:      x,
		Z:          z,
		A:          Activate(fn, z),
		Activation: fn,
	}, nil
}

// ForwardAllLayers runs x through every layer of p: ReLU for the hidden layers,
// sigmoid for the last one. The result has L+1 caches; caches[L].A is the
// (1, m) prediction.
func ForwardAllLayers(x *mat.Dense, p *Parameters) ([]Cache, error) {
	caches := make([]Cache, p.NumLayers()+1)
	caches[0] = Cache{A: x}
	for i := 1; i <= p.NumLayers(); i++ {
		l := p.Layer(i)
		c, err := forwardLayer(l.Weights, l.Bias, caches[i-1].A, layerActivation(i, p.NumLayers()), i)
		if err != nil {
			return nil, err
		}
		caches[i] = c
	}
	return caches, nil
}

func layerActivation(i, layers int) ActivationFunction {
	if i == layers {
		return Sigmoid{}
	}
	return ReLU{}
}
