package neuralnet

import "fmt"

// ShapeError reports matrices whose dimensions cannot be combined.
type ShapeError struct {
	Op    string
	Layer int
	Want  [2]int
	Got   [2]int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("neuralnet: %s layer %d: shape mismatch: want %dx%d, got %dx%d",
		e.Op, e.Layer, e.Want[0], e.Want[1], e.Got[0], e.Got[1])
}

// NumericError reports a cost or gradient that is no longer finite.
// Iteration is -1 outside of a training run.
type NumericError struct {
	Op        string
	Layer     int
	Iteration int
}

func (e *NumericError) Error() string {
	if e.Iteration < 0 {
		return fmt.Sprintf("neuralnet: %s layer %d: non-finite value", e.Op, e.Layer)
	}
	return fmt.Sprintf("neuralnet: %s layer %d iteration %d: non-finite value", e.Op, e.Layer, e.Iteration)
}

// ConfigError reports a topology or hyperparameter that cannot be trained.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("neuralnet: invalid %s: %s", e.Field, e.Reason)
}

func shapeErr(op string, layer int, wantR, wantC, gotR, gotC int) error {
	return &ShapeError{Op: op, Layer: layer, Want: [2]int{wantR, wantC}, Got: [2]int{gotR, gotC}}
}

func numericErr(op string, layer int) error {
	return &NumericError{Op: op, Layer: layer, Iteration: -1}
}
