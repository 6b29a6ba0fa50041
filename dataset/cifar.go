package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gorgonia.org/tensor"
)

// CIFAR-10 binary layout: one label byte followed by a 3×32×32 image,
// channel planes in R, G, B order.
const (
	CIFARSide    = 32
	CIFARClasses = 10
	ImageSize    = 3 * CIFARSide * CIFARSide
	LabelSize    = 1
	Row          = LabelSize + ImageSize
)

// LoadCIFAR10 reads a CIFAR-10 batch file and keeps only the records of
// classA (labelled 1) and classB (labelled 0).
func LoadCIFAR10(path string, classA, classB int) (Batch, error) {
	for _, c := range []int{classA, classB} {
		if c < 0 || c >= CIFARClasses {
			return Batch{}, fmt.Errorf("dataset: cifar class %d out of range [0, %d)", c, CIFARClasses)
		}
	}
	if classA == classB {
		return Batch{}, fmt.Errorf("dataset: cifar classes must differ (both %d)", classA)
	}

	file, err := os.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("dataset: %w", err)
	}
	defer file.Close()

	images := make([]*tensor.Dense, 0)
	labels := make([]float64, 0)
	r := bufio.NewReader(file)
	row := make([]byte, Row)
	for n := 0; ; n++ {
		if _, err := io.ReadFull(r, row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return Batch{}, fmt.Errorf("dataset: %s: record %d is truncated", path, n)
			}
			return Batch{}, fmt.Errorf("dataset: %s: %w", path, err)
		}

		var label float64
		switch int(row[0]) {
		case classA:
			label = 1
		case classB:
			label = 0
		default:
			continue
		}

		norm := make([]float64, ImageSize)
		for i, v := range row[LabelSize:] {
			norm[i] = float64(v) / 255.0
		}
		t := tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(3, CIFARSide, CIFARSide), tensor.WithBacking(norm))
		images = append(images, t)
		labels = append(labels, label)
	}

	return fromTensors(images, labels)
}

// ReadCIFARLabels reads batches.meta.txt: one class name per line.
func ReadCIFARLabels(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var words []string
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return words, nil
}

// CIFARClass resolves a class given either by index or by name from names.
func CIFARClass(class string, names []string) (int, error) {
	if i, err := strconv.Atoi(class); err == nil {
		return i, nil
	}
	for i, name := range names {
		if strings.EqualFold(name, class) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("dataset: unknown cifar class %q", class)
}
