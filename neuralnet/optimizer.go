package neuralnet

import "fmt"

// Optimizer applies one set of gradients to the parameters in place.
type Optimizer interface {
	Apply(p *Parameters, grads []Gradient) error
}

// SGD implements vanilla full-batch gradient descent.
type SGD struct {
	Lr float64
}

// NewSGD returns an SGD optimizer with learning rate lr.
func NewSGD(lr float64) (*SGD, error) {
	if lr <= 0 {
		return nil, &ConfigError{Field: "learning rate", Reason: fmt.Sprintf("must be > 0 (got %g)", lr)}
	}
	return &SGD{Lr: lr}, nil
}

// Apply performs W_i -= Lr·dW_i and b_i -= Lr·db_i for every layer i, reading
// grads[i] as returned by BackwardAllLayers.
func (o *SGD) Apply(p *Parameters, grads []Gradient) error {
	if o.Lr <= 0 {
		return &ConfigError{Field: "learning rate", Reason: fmt.Sprintf("must be > 0 (got %g)", o.Lr)}
	}
	if len(grads) != p.NumLayers()+1 {
		return &ConfigError{Field: "gradients", Reason: fmt.Sprintf("have %d records, need %d", len(grads), p.NumLayers()+1)}
	}
	for i := 1; i <= p.NumLayers(); i++ {
		l := p.Layer(i)
		g := grads[i]
		if g.DW == nil || g.DB == nil {
			return &ConfigError{Field: "gradients", Reason: fmt.Sprintf("layer %d has no gradient", i)}
		}
		wr, wc := l.Weights.Dims()
		if r, c := g.DW.Dims(); r != wr || c != wc {
			return shapeErr("update weights", i, wr, wc, r, c)
		}
		br, bc := l.Bias.Dims()
		if r, c := g.DB.Dims(); r != br || c != bc {
			return shapeErr("update bias", i, br, bc, r, c)
		}
	}
	// shapes are checked first so a failed update leaves p untouched
	for i := 1; i <= p.NumLayers(); i++ {
		l := p.Layer(i)
		l.Weights.Apply(func(r, c int, v float64) float64 {
			return v - o.Lr*grads[i].DW.At(r, c)
		}, l.Weights)
		l.Bias.Apply(func(r, c int, v float64) float64 {
			return v - o.Lr*grads[i].DB.At(r, c)
		}, l.Bias)
	}
	return nil
}
