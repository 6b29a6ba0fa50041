package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"binnet/config"
	"binnet/dataset"
	"binnet/neuralnet"
	"binnet/report"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML run config")
	iterations := flag.Int("iterations", 0, "override the number of training iterations")
	learningRate := flag.Float64("learning-rate", 0, "override the learning rate")
	seed := flag.Uint64("seed", 0, "override the weight initialisation seed")
	logEvery := flag.Int("log-every", 0, "log the cost every N iterations")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal().Err(err).Str("config", *configPath).Msg("could not load config")
		}
	}
	cfg.ApplyOverrides(config.Overrides{
		Iterations:   *iterations,
		LearningRate: *learningRate,
		Seed:         *seed,
		LogEvery:     *logEvery,
		MetricsAddr:  *metricsAddr,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	lvl, err := cfg.Level()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(lvl)

	runID := uuid.NewString()
	logger := log.With().Str("run", runID).Logger()
	if err := run(cfg, runID, logger, os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("run failed")
	}
}

// testSet is an optional batch of examples to label after training.
type testSet struct {
	batch dataset.Batch
	names []string
}

func run(cfg *config.Config, runID string, logger zerolog.Logger, out io.Writer) error {
	train, test, err := loadData(cfg.Dataset)
	if err != nil {
		return err
	}
	logger.Info().
		Int("features", train.Features()).
		Int("examples", train.Examples()).
		Str("format", cfg.Dataset.Format).
		Msg("dataset loaded")

	nn, err := neuralnet.NewNeuralNetwork(cfg.Topology(train.Features()), cfg.Params())
	if err != nil {
		return err
	}

	history := &report.History{}
	metrics := report.NewMetrics(runID)
	nn.AddReporter(report.NewLogger(logger, cfg.LogEvery, cfg.Iterations))
	nn.AddReporter(history)
	nn.AddReporter(metrics)
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			return err
		}
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	logger.Info().
		Ints("topology", nn.Parameters.Topology()).
		Int("iterations", cfg.Iterations).
		Float64("learning_rate", cfg.LearningRate).
		Msg("training")
	start := time.Now()
	costs, err := nn.Train(train.X, train.Y)
	if err != nil {
		return err
	}
	best, bestCost, _ := history.Best()
	logger.Info().
		Dur("elapsed", time.Since(start)).
		Float64("cost", costs[len(costs)-1]).
		Int("best_iteration", best).
		Float64("best_cost", bestCost).
		Msg("training finished")

	if cfg.PlotHeight > 0 {
		fmt.Fprintln(out, history.Plot(cfg.PlotHeight))
	}

	pred, err := nn.Predict(train.X)
	if err != nil {
		return err
	}
	acc, err := neuralnet.Accuracy(pred, train.Y)
	if err != nil {
		return err
	}
	logger.Info().Float64("accuracy", acc).Msg("training set")

	if test == nil {
		return nil
	}
	probs, err := neuralnet.Probabilities(test.batch.X, nn.Parameters)
	if err != nil {
		return fmt.Errorf("test set: %w", err)
	}
	labels, err := neuralnet.Predict(test.batch.X, nn.Parameters)
	if err != nil {
		return fmt.Errorf("test set: %w", err)
	}
	return report.Predictions(out, test.names, probs.RawRowView(0), labels.RawRowView(0))
}

func loadData(d config.Dataset) (dataset.Batch, *testSet, error) {
	switch d.Format {
	case config.FormatImages:
		train, err := dataset.LoadImageDirs(d.ClassA, d.ClassB)
		if err != nil {
			return dataset.Batch{}, nil, err
		}
		if d.Test == "" {
			return train, nil, nil
		}
		batch, names, err := dataset.LoadImageDir(d.Test, 0)
		if errors.Is(err, dataset.ErrEmpty) {
			return train, nil, nil
		}
		if err != nil {
			return dataset.Batch{}, nil, err
		}
		return train, &testSet{batch: batch, names: names}, nil

	case config.FormatCIFAR:
		var names []string
		if d.CIFARClasses != "" {
			var err error
			if names, err = dataset.ReadCIFARLabels(d.CIFARClasses); err != nil {
				return dataset.Batch{}, nil, err
			}
		}
		a, err := dataset.CIFARClass(d.ClassA, names)
		if err != nil {
			return dataset.Batch{}, nil, err
		}
		b, err := dataset.CIFARClass(d.ClassB, names)
		if err != nil {
			return dataset.Batch{}, nil, err
		}
		train, err := dataset.LoadCIFAR10(d.CIFARFile, a, b)
		if err != nil {
			return dataset.Batch{}, nil, err
		}
		if d.Test == "" {
			return train, nil, nil
		}
		batch, err := dataset.LoadCIFAR10(d.Test, a, b)
		if err != nil {
			return dataset.Batch{}, nil, err
		}
		rows := make([]string, batch.Examples())
		for i := range rows {
			want := d.ClassB
			if batch.Y.At(0, i) == 1 {
				want = d.ClassA
			}
			rows[i] = fmt.Sprintf("#%d (%s)", i, want)
		}
		return train, &testSet{batch: batch, names: rows}, nil
	}
	return dataset.Batch{}, nil, fmt.Errorf("unknown dataset format %q", d.Format)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
