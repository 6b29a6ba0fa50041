// Package report turns the per-iteration cost stream of a training run into
// log lines, a plot, prometheus metrics and prediction tables.
package report

import (
	"github.com/rs/zerolog"

	"binnet/neuralnet"
)

var (
	_ neuralnet.Reporter = (*Logger)(nil)
	_ neuralnet.Reporter = (*History)(nil)
	_ neuralnet.Reporter = (*Metrics)(nil)
)

// Logger writes one line every Every iterations and on the final one.
type Logger struct {
	Every int
	Total int
	Log   zerolog.Logger
}

// NewLogger reports through logger. An every of 0 logs only the final
// iteration.
func NewLogger(logger zerolog.Logger, every, total int) *Logger {
	return &Logger{Every: every, Total: total, Log: logger}
}

func (l *Logger) Report(iteration int, cost float64) {
	last := l.Total > 0 && iteration == l.Total-1
	if !last && (l.Every <= 0 || iteration%l.Every != 0) {
		return
	}
	l.Log.Info().
		Int("iteration", iteration).
		Float64("cost", cost).
		Msg("training")
}
