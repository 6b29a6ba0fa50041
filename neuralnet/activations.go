package neuralnet

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ActivationFunction is an elementwise nonlinearity.
// Derivative receives the activation output, not the pre-activation.
type ActivationFunction interface {
	Activate(z float64) float64
	Derivative(a float64) float64
}

type ReLU struct{}

func (r ReLU) Activate(z float64) float64 {
	return math.Max(z, 0)
}

func (r ReLU) Derivative(a float64) float64 {
	if a > 0 {
		return 1
	}
	return 0
}

func (r ReLU) String() string { return "relu" }

type Sigmoid struct{}

func (s Sigmoid) Activate(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Derivative is only valid when a is a sigmoid output.
func (s Sigmoid) Derivative(a float64) float64 {
	return a * (1 - a)
}

func (s Sigmoid) String() string { return "sigmoid" }

// Activate applies fn to every entry of z and returns a new matrix.
func Activate(fn ActivationFunction, z mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return fn.Activate(v)
	}, z)
	return &out
}

// Derivative evaluates fn' on a copy of a; a itself is never written.
func Derivative(fn ActivationFunction, a mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return fn.Derivative(v)
	}, a)
	return &out
}
