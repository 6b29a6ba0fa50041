package neuralnet

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Reporter observes the cost of every training iteration, in order.
// It must not change anything the training loop uses.
type Reporter interface {
	Report(iteration int, cost float64)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(iteration int, cost float64)

func (f ReporterFunc) Report(iteration int, cost float64) { f(iteration, cost) }

// Params are the hyperparameters of a training run.
type Params struct {
	Lr         float64
	Iterations int
	// Seed feeds the default initializer. Zero means NNSeed(topology).
	Seed      uint64
	InitScale float64
	// Init overrides the random normal initializer.
	Init Initializer
}

// NewParams returns Params with the default seed and init scale.
func NewParams(lr float64, iterations int) Params {
	return Params{Lr: lr, Iterations: iterations, InitScale: DefaultInitScale}
}

func (p Params) validate() error {
	if p.Iterations <= 0 {
		return &ConfigError{Field: "iterations", Reason: fmt.Sprintf("must be > 0 (got %d)", p.Iterations)}
	}
	if p.Lr <= 0 {
		return &ConfigError{Field: "learning rate", Reason: fmt.Sprintf("must be > 0 (got %g)", p.Lr)}
	}
	if p.Init == nil && p.InitScale < 0 {
		return &ConfigError{Field: "init scale", Reason: fmt.Sprintf("must be >= 0 (got %g)", p.InitScale)}
	}
	return nil
}

// NeuralNetwork is a stack of ReLU layers topped by a single sigmoid unit,
// trained with full-batch gradient descent.
type NeuralNetwork struct {
	Topology   Topology
	Params     Params
	Parameters *Parameters
	Loss       LossFunction
	Optimizer  Optimizer
	reporters  []Reporter
}

// NewNeuralNetwork validates the configuration and initializes parameters.
func NewNeuralNetwork(topology Topology, params Params) (*NeuralNetwork, error) {
	if err := topology.Validate(); err != nil {
		return nil, err
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	init := params.Init
	if init == nil {
		seed := params.Seed
		if seed == 0 {
			seed = NNSeed(topology)
		}
		scale := params.InitScale
		if scale == 0 {
			scale = DefaultInitScale
		}
		init = RandomNormal(seed, scale)
	}
	parameters, err := InitParameters(topology, init)
	if err != nil {
		return nil, err
	}
	sgd, err := NewSGD(params.Lr)
	if err != nil {
		return nil, err
	}
	return &NeuralNetwork{
		Topology:   topology,
		Params:     params,
		Parameters: parameters,
		Loss:       CrossEntropy{},
		Optimizer:  sgd,
	}, nil
}

// NNSeed derives a deterministic seed from the layer widths.
func NNSeed(t Topology) uint64 {
	var seed uint64
	for _, n := range t {
		seed += uint64(n)
	}
	return seed
}

// AddReporter registers r to receive every iteration's cost.
func (nn *NeuralNetwork) AddReporter(r Reporter) {
	nn.reporters = append(nn.reporters, r)
}

// Train runs Params.Iterations full-batch iterations of
// forward, cost, backward and update over x (n0, m) and y (1, m).
// It returns the cost recorded at each iteration.
func (nn *NeuralNetwork) Train(x, y *mat.Dense) ([]float64, error) {
	if err := nn.checkBatch(x, y); err != nil {
		return nil, err
	}
	costs := make([]float64, 0, nn.Params.Iterations)
	for i := 0; i < nn.Params.Iterations; i++ {
		cost, err := nn.step(x, y)
		if err != nil {
			var numeric *NumericError
			if errors.As(err, &numeric) {
				numeric.Iteration = i
			}
			return costs, fmt.Errorf("iteration %d: %w", i, err)
		}
		costs = append(costs, cost)
		for _, r := range nn.reporters {
			r.Report(i, cost)
		}
	}
	return costs, nil
}

// step is one iteration. The cost it returns was measured before the update.
func (nn *NeuralNetwork) step(x, y *mat.Dense) (float64, error) {
	caches, err := ForwardAllLayers(x, nn.Parameters)
	if err != nil {
		return 0, err
	}
	cost, err := nn.Loss.Compute(caches[len(caches)-1].A, y)
	if err != nil {
		return 0, err
	}
	grads, err := BackwardAllLayers(y, caches)
	if err != nil {
		return 0, err
	}
	if err := nn.Optimizer.Apply(nn.Parameters, grads); err != nil {
		return 0, err
	}
	return cost, nil
}

func (nn *NeuralNetwork) checkBatch(x, y *mat.Dense) error {
	xr, xc := x.Dims()
	if xr != nn.Topology[0] {
		return &ConfigError{Field: "topology", Reason: fmt.Sprintf("input width %d does not match %d features", nn.Topology[0], xr)}
	}
	if yr, yc := y.Dims(); yr != 1 || yc != xc {
		return shapeErr("labels", 0, 1, xc, yr, yc)
	}
	for j := 0; j < xc; j++ {
		if v := y.At(0, j); v != 0 && v != 1 {
			return &ConfigError{Field: "labels", Reason: fmt.Sprintf("example %d has label %g, want 0 or 1", j, v)}
		}
	}
	return nil
}

// Predict classifies x with the trained parameters.
func (nn *NeuralNetwork) Predict(x *mat.Dense) (*mat.Dense, error) {
	return Predict(x, nn.Parameters)
}

// Train is the one-call entry point: it builds a network with the default
// initializer, trains it and returns the parameters and the cost history.
func Train(x, y *mat.Dense, topology Topology, iterations int, lr float64, reporters ...Reporter) (*Parameters, []float64, error) {
	nn, err := NewNeuralNetwork(topology, NewParams(lr, iterations))
	if err != nil {
		return nil, nil, err
	}
	for _, r := range reporters {
		nn.AddReporter(r)
	}
	costs, err := nn.Train(x, y)
	if err != nil {
		return nil, costs, err
	}
	return nn.Parameters, costs, nil
}

// Probabilities returns the sigmoid output (1, m) for x.
func Probabilities(x *mat.Dense, p *Parameters) (*mat.Dense, error) {
	if p.NumLayers() == 0 {
		return nil, &ConfigError{Field: "parameters", Reason: "no layers"}
	}
	caches, err := ForwardAllLayers(x, p)
	if err != nil {
		return nil, err
	}
	return caches[len(caches)-1].A, nil
}

// Predict thresholds the network output at 0.5: values above become 1,
// everything else 0. p and x are not modified.
func Predict(x *mat.Dense, p *Parameters) (*mat.Dense, error) {
	a, err := Probabilities(x, p)
	if err != nil {
		return nil, err
	}
	var labels mat.Dense
	labels.Apply(func(_, _ int, v float64) float64 {
		if v > 0.5 {
			return 1
		}
		return 0
	}, a)
	return &labels, nil
}

// Accuracy is the fraction of predictions equal to the labels.
func Accuracy(pred, y *mat.Dense) (float64, error) {
	if err := sameShape("accuracy", pred, y); err != nil {
		return 0, err
	}
	_, m := pred.Dims()
	hits := 0
	for j := 0; j < m; j++ {
		if pred.At(0, j) == y.At(0, j) {
			hits++
		}
	}
	return float64(hits) / float64(m), nil
}

func (nn *NeuralNetwork) String() string {
	var sb strings.Builder
	for i := 1; i <= nn.Parameters.NumLayers(); i++ {
		l := nn.Parameters.Layer(i)
		r, c := l.Weights.Dims()
		sb.WriteString(fmt.Sprintf("Layer %d (%s): W %dx%d\n", i, layerActivation(i, nn.Parameters.NumLayers()), r, c))
		sb.WriteString(fmt.Sprintf("%v\n", mat.Formatted(l.Weights, mat.Prefix("  "), mat.Squeeze())))
	}
	return sb.String()
}
