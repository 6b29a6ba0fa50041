package report

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"
)

// PlotWidth is the widest plot History renders; longer runs are resampled.
const PlotWidth = 72

// History records every reported cost in order.
type History struct {
	iterations []int
	costs      []float64
}

func (h *History) Report(iteration int, cost float64) {
	h.iterations = append(h.iterations, iteration)
	h.costs = append(h.costs, cost)
}

// Len is the number of recorded iterations.
func (h *History) Len() int { return len(h.costs) }

// Costs returns a copy of the recorded costs.
func (h *History) Costs() []float64 {
	out := make([]float64, len(h.costs))
	copy(out, h.costs)
	return out
}

// Best returns the iteration with the lowest cost. ok is false when nothing
// was recorded.
func (h *History) Best() (iteration int, cost float64, ok bool) {
	if len(h.costs) == 0 {
		return 0, 0, false
	}
	i := floats.MinIdx(h.costs)
	return h.iterations[i], h.costs[i], true
}

// Plot renders the cost curve height rows tall.
func (h *History) Plot(height int) string {
	if len(h.costs) == 0 {
		return ""
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("cost over %d iterations", len(h.costs))),
	}
	if len(h.costs) > PlotWidth {
		opts = append(opts, asciigraph.Width(PlotWidth))
	}
	return asciigraph.Plot(h.costs, opts...)
}
