package neuralnet

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GradientCheck compares the backpropagated gradient of the cost at p with a
// central finite-difference estimate and returns
// ‖numeric − analytic‖ / (‖numeric‖ + ‖analytic‖). A step of 0 uses the
// fd default. p is not modified.
//
// Every hidden pre-activation must sit further than step from 0. A difference
// that straddles the ReLU kink measures a secant across it, which backprop does not
// compute, so freshly initialized parameters (DefaultInitScale, zero biases)
// report a large error even when the backward pass is correct.
func GradientCheck(x, y *mat.Dense, p *Parameters, step float64) (float64, error) {
	caches, err := ForwardAllLayers(x, p)
	if err != nil {
		return 0, err
	}
	grads, err := BackwardAllLayers(y, caches)
	if err != nil {
		return 0, err
	}
	analytic := make([]float64, 0, p.Size())
	for i := 1; i <= p.NumLayers(); i++ {
		analytic = appendDense(analytic, grads[i].DW)
		analytic = appendDense(analytic, grads[i].DB)
	}

	trial := p.Clone()
	var evalErr error
	cost := func(v []float64) float64 {
		if err := trial.SetVector(v); err != nil {
			evalErr = err
			return 0
		}
		c, err := ForwardAllLayers(x, trial)
		if err != nil {
			evalErr = err
			return 0
		}
		loss, err := Cost(c[len(c)-1].A, y)
		if err != nil {
			evalErr = err
			return 0
		}
		return loss
	}
	numeric := fd.Gradient(nil, cost, p.Vector(), &fd.Settings{
		Formula: fd.Central,
		Step:    step,
	})
	if evalErr != nil {
		return 0, evalErr
	}

	den := floats.Norm(numeric, 2) + floats.Norm(analytic, 2)
	if den == 0 {
		return 0, nil
	}
	return floats.Distance(numeric, analytic, 2) / den, nil
}
