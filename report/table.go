package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Predictions renders one row per example: its name, the output probability
// and the predicted label.
func Predictions(w io.Writer, names []string, probs, labels []float64) error {
	if len(names) != len(probs) || len(probs) != len(labels) {
		return fmt.Errorf("report: %d names, %d probabilities, %d labels", len(names), len(probs), len(labels))
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Example", "Probability", "Label"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i := range names {
		table.Append([]string{
			names[i],
			strconv.FormatFloat(probs[i], 'f', 4, 64),
			strconv.FormatFloat(labels[i], 'f', 0, 64),
		})
	}
	table.Render()
	return nil
}
