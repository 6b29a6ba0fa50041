package neuralnet

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultInitScale keeps initial pre-activations small so neither ReLU nor
// sigmoid starts out saturated.
const DefaultInitScale = 0.01

// Topology lists layer widths from the input features to the single output unit.
type Topology []int

// Validate checks that t describes a ReLU stack ending in one sigmoid unit.
func (t Topology) Validate() error {
	if len(t) < 2 {
		return &ConfigError{Field: "topology", Reason: fmt.Sprintf("need at least 2 entries, got %d", len(t))}
	}
	for i, n := range t {
		if n <= 0 {
			return &ConfigError{Field: "topology", Reason: fmt.Sprintf("width of layer %d must be > 0 (got %d)", i, n)}
		}
	}
	if out := t[len(t)-1]; out != 1 {
		return &ConfigError{Field: "topology", Reason: fmt.Sprintf("output width must be 1 (got %d)", out)}
	}
	return nil
}

// Layers returns the number of weighted layers.
func (t Topology) Layers() int {
	return len(t) - 1
}

// Layer holds the weights (n_i x n_{i-1}) and bias (n_i x 1) of one layer.
type Layer struct {
	Weights *mat.Dense
	Bias    *mat.Dense
}

// Parameters is the network's parameter store.
type Parameters struct {
	Layers []Layer
}

// NumLayers returns L, the number of weighted layers.
func (p *Parameters) NumLayers() int {
	return len(p.Layers)
}

// Layer returns forward layer i, counting from 1.
func (p *Parameters) Layer(i int) *Layer {
	return &p.Layers[i-1]
}

// Initializer builds a rows x cols weight matrix.
type Initializer func(rows, cols int) *mat.Dense

// RandomNormal draws weights from N(0, 1) scaled by scale.
func RandomNormal(seed uint64, scale float64) Initializer {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	return func(rows, cols int) *mat.Dense {
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = dist.Rand() * scale
		}
		return mat.NewDense(rows, cols, data)
	}
}

// Zeros initializes every weight to zero. Only useful to show why
// symmetric weights cannot be trained.
func Zeros() Initializer {
	return func(rows, cols int) *mat.Dense {
		return mat.NewDense(rows, cols, nil)
	}
}

// InitParameters creates weights with init and zero biases.
func InitParameters(t Topology, init Initializer) (*Parameters, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if init == nil {
		return nil, &ConfigError{Field: "initializer", Reason: "nil"}
	}
	p := &Parameters{Layers: make([]Layer, t.Layers())}
	for i := 1; i <= t.Layers(); i++ {
		w := init(t[i], t[i-1])
		if r, c := w.Dims(); r != t[i] || c != t[i-1] {
			return nil, shapeErr("init", i, t[i], t[i-1], r, c)
		}
		*p.Layer(i) = Layer{
			Weights: w,
			Bias:    mat.NewDense(t[i], 1, nil),
		}
	}
	return p, nil
}

// Validate checks every layer shape against t.
func (p *Parameters) Validate(t Topology) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if p.NumLayers() != t.Layers() {
		return &ConfigError{Field: "parameters", Reason: fmt.Sprintf("have %d layers, topology needs %d", p.NumLayers(), t.Layers())}
	}
	for i := 1; i <= p.NumLayers(); i++ {
		l := p.Layer(i)
		if r, c := l.Weights.Dims(); r != t[i] || c != t[i-1] {
			return shapeErr("weights", i, t[i], t[i-1], r, c)
		}
		if r, c := l.Bias.Dims(); r != t[i] || c != 1 {
			return shapeErr("bias", i, t[i], 1, r, c)
		}
	}
	return nil
}

// Topology recovers the layer widths from the stored weights.
func (p *Parameters) Topology() Topology {
	if p.NumLayers() == 0 {
		return nil
	}
	_, in := p.Layer(1).Weights.Dims()
	t := Topology{in}
	for i := 1; i <= p.NumLayers(); i++ {
		r, _ := p.Layer(i).Weights.Dims()
		t = append(t, r)
	}
	return t
}

// Clone returns a deep copy of p.
func (p *Parameters) Clone() *Parameters {
	c := &Parameters{Layers: make([]Layer, len(p.Layers))}
	for i, l := range p.Layers {
		c.Layers[i] = Layer{
			Weights: mat.DenseCopyOf(l.Weights),
			Bias:    mat.DenseCopyOf(l.Bias),
		}
	}
	return c
}

// Size is the total number of trainable values.
func (p *Parameters) Size() int {
	n := 0
	for _, l := range p.Layers {
		r, c := l.Weights.Dims()
		n += r*c + r
	}
	return n
}

// Vector flattens all weights and biases, layer by layer, row-major.
func (p *Parameters) Vector() []float64 {
	v := make([]float64, 0, p.Size())
	for _, l := range p.Layers {
		v = appendDense(v, l.Weights)
		v = appendDense(v, l.Bias)
	}
	return v
}

// SetVector overwrites all weights and biases from v, the layout of Vector.
func (p *Parameters) SetVector(v []float64) error {
	if len(v) != p.Size() {
		return &ShapeError{Op: "set vector", Want: [2]int{p.Size(), 1}, Got: [2]int{len(v), 1}}
	}
	off := 0
	for _, l := range p.Layers {
		off = fillDense(l.Weights, v, off)
		off = fillDense(l.Bias, v, off)
	}
	return nil
}

func appendDense(v []float64, m *mat.Dense) []float64 {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v = append(v, m.At(i, j))
		}
	}
	return v
}

func fillDense(m *mat.Dense, v []float64, off int) int {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, v[off])
			off++
		}
	}
	return off
}
