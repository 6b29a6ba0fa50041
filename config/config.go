// Package config loads the runtime knobs for a training run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"binnet/neuralnet"
)

// Dataset formats.
const (
	FormatImages = "images"
	FormatCIFAR  = "cifar"
)

// Dataset selects where examples come from. For the images format ClassA and
// ClassB are directories and Test a directory of unlabelled images. For the
// cifar format they are class indices or names and Test a second batch file.
type Dataset struct {
	Format       string `yaml:"format"`
	ClassA       string `yaml:"class_a"`
	ClassB       string `yaml:"class_b"`
	Test         string `yaml:"test"`
	CIFARFile    string `yaml:"cifar_file"`
	CIFARClasses string `yaml:"cifar_classes"`
}

// Config captures the runtime knobs for a training run.
type Config struct {
	Hidden       []int   `yaml:"hidden"`
	Iterations   int     `yaml:"iterations"`
	LearningRate float64 `yaml:"learning_rate"`
	Seed         uint64  `yaml:"seed"`
	InitScale    float64 `yaml:"init_scale"`
	LogEvery     int     `yaml:"log_every"` // 0 logs only the final iteration
	LogLevel     string  `yaml:"log_level"`
	PlotHeight   int     `yaml:"plot_height"`
	MetricsAddr  string  `yaml:"metrics_addr"`
	Dataset      Dataset `yaml:"dataset"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Iterations   int
	LearningRate float64
	Seed         uint64
	LogEvery     int
	MetricsAddr  string
}

// Default mirrors the classic two-folder demo: a 5-2 hidden stack trained
// for 20000 iterations at rate 1.2 on sample/A versus sample/B.
func Default() *Config {
	return &Config{
		Hidden:       []int{5, 2},
		Iterations:   20000,
		LearningRate: 1.2,
		InitScale:    neuralnet.DefaultInitScale,
		LogEvery:     1000,
		LogLevel:     zerolog.LevelInfoValue,
		PlotHeight:   15,
		Dataset: Dataset{
			Format: FormatImages,
			ClassA: "sample/A",
			ClassB: "sample/B",
			Test:   "sample/Test",
		},
	}
}

// Load reads a Config from YAML on top of Default. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: open: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Iterations > 0 {
		c.Iterations = o.Iterations
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.MetricsAddr != "" {
		c.MetricsAddr = o.MetricsAddr
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	for i, n := range c.Hidden {
		if n <= 0 {
			return fmt.Errorf("config: hidden[%d] must be > 0 (got %d)", i, n)
		}
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("config: iterations must be > 0 (got %d)", c.Iterations)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("config: learning_rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.InitScale <= 0 {
		return fmt.Errorf("config: init_scale must be > 0 (got %v)", c.InitScale)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("config: log_every must be >= 0 (got %d)", c.LogEvery)
	}
	if c.PlotHeight < 0 {
		return fmt.Errorf("config: plot_height must be >= 0 (got %d)", c.PlotHeight)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	d := c.Dataset
	switch d.Format {
	case FormatImages:
		if d.ClassA == "" || d.ClassB == "" {
			return errors.New("config: dataset.class_a and dataset.class_b must name directories")
		}
	case FormatCIFAR:
		if d.CIFARFile == "" {
			return errors.New("config: dataset.cifar_file must be set for the cifar format")
		}
		if d.ClassA == "" || d.ClassB == "" {
			return errors.New("config: dataset.class_a and dataset.class_b must name cifar classes")
		}
		if d.ClassA == d.ClassB {
			return fmt.Errorf("config: dataset classes must differ (both %q)", d.ClassA)
		}
	default:
		return fmt.Errorf("config: unknown dataset.format %q", d.Format)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: log_level: %w", err)
	}
	return lvl, nil
}

// Topology is the layer widths for a batch with the given number of features.
func (c *Config) Topology(features int) neuralnet.Topology {
	t := make(neuralnet.Topology, 0, len(c.Hidden)+2)
	t = append(t, features)
	t = append(t, c.Hidden...)
	return append(t, 1)
}

// Params converts the training knobs.
func (c *Config) Params() neuralnet.Params {
	return neuralnet.Params{
		Lr:         c.LearningRate,
		Iterations: c.Iterations,
		Seed:       c.Seed,
		InitScale:  c.InitScale,
	}
}
