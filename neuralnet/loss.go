package neuralnet

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Epsilon bounds predicted probabilities away from 0 and 1 before any log or
// division, so a saturated sigmoid cannot produce an infinite cost.
const Epsilon = 1e-15

// LossFunction defines the interface for computing loss and its gradient.
type LossFunction interface {
	// Compute returns the mean loss of predictions a against labels y, both (1, m).
	Compute(a, y *mat.Dense) (float64, error)
	// Gradient returns dL/da for every prediction.
	Gradient(a, y *mat.Dense) (*mat.Dense, error)
}

// CrossEntropy implements binary cross-entropy over a sigmoid output.
type CrossEntropy struct{}

// Compute returns -1/m Σ [y·log(a) + (1-y)·log(1-a)].
func (ce CrossEntropy) Compute(a, y *mat.Dense) (float64, error) {
	if err := sameShape("cost", a, y); err != nil {
		return 0, err
	}
	_, m := a.Dims()
	terms := make([]float64, 0, m)
	for j := 0; j < m; j++ {
		p := clip(a.At(0, j))
		t := y.At(0, j)
		terms = append(terms, t*math.Log(p)+(1-t)*math.Log(1-p))
	}
	cost := -floats.Sum(terms) / float64(m)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return 0, numericErr("cost", 0)
	}
	return cost, nil
}

// Gradient returns (1-y)/(1-a) - y/a.
func (ce CrossEntropy) Gradient(a, y *mat.Dense) (*mat.Dense, error) {
	if err := sameShape("cost gradient", a, y); err != nil {
		return nil, err
	}
	var da mat.Dense
	da.Apply(func(i, j int, v float64) float64 {
		p := clip(v)
		t := y.At(i, j)
		return (1-t)/(1-p) - t/p
	}, a)
	return &da, nil
}

// Cost is CrossEntropy.Compute.
func Cost(a, y *mat.Dense) (float64, error) {
	return CrossEntropy{}.Compute(a, y)
}

func clip(p float64) float64 {
	return math.Min(math.Max(p, Epsilon), 1-Epsilon)
}

func sameShape(op string, a, y *mat.Dense) error {
	ar, ac := a.Dims()
	yr, yc := y.Dims()
	if ar != 1 || yr != ar || yc != ac {
		return shapeErr(op, 0, 1, ac, yr, yc)
	}
	return nil
}
