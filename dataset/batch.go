// Package dataset builds training batches for the binary classifier: one
// example per column of X and a 1×m row of 0/1 labels in Y.
package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// ErrEmpty is returned when a source yields no usable examples.
var ErrEmpty = errors.New("dataset: no examples")

// Batch is a full training or test set.
type Batch struct {
	X *mat.Dense // features × examples
	Y *mat.Dense // 1 × examples
}

// Features is the number of rows of X.
func (b Batch) Features() int {
	r, _ := b.X.Dims()
	return r
}

// Examples is the number of columns of X.
func (b Batch) Examples() int {
	_, c := b.X.Dims()
	return c
}

// fromTensors flattens every image tensor into one column of X.
func fromTensors(images []*tensor.Dense, labels []float64) (Batch, error) {
	if len(images) == 0 {
		return Batch{}, ErrEmpty
	}
	if len(images) != len(labels) {
		return Batch{}, fmt.Errorf("dataset: %d images but %d labels", len(images), len(labels))
	}
	features := images[0].Shape().TotalSize()
	x := mat.NewDense(features, len(images), nil)
	for j, img := range images {
		data, ok := img.Data().([]float64)
		if !ok {
			return Batch{}, fmt.Errorf("dataset: image %d has dtype %v, want float64", j, img.Dtype())
		}
		if len(data) != features {
			return Batch{}, fmt.Errorf("dataset: image %d has %d values, want %d", j, len(data), features)
		}
		x.SetCol(j, data)
	}
	return Batch{X: x, Y: mat.NewDense(1, len(labels), labels)}, nil
}
