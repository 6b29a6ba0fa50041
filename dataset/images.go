package dataset

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"gorgonia.org/tensor"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// SizeError reports an image whose dimensions differ from the first image
// loaded into the same batch.
type SizeError struct {
	File      string
	Want, Got image.Point
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("dataset: %s is %dx%d, want %dx%d", e.File, e.Got.X, e.Got.Y, e.Want.X, e.Want.Y)
}

// LoadImageDirs builds a batch from two directories of images. Images in
// dirA are labelled 1, images in dirB 0; A examples come first.
func LoadImageDirs(dirA, dirB string) (Batch, error) {
	filesA, err := listImages(dirA)
	if err != nil {
		return Batch{}, err
	}
	filesB, err := listImages(dirB)
	if err != nil {
		return Batch{}, err
	}

	images, err := loadImages(append(filesA, filesB...))
	if err != nil {
		return Batch{}, err
	}
	labels := make([]float64, len(images))
	for i := range filesA {
		labels[i] = 1
	}
	return fromTensors(images, labels)
}

// LoadImageDir builds a batch from one directory, every example carrying
// label. The file names are returned in column order.
func LoadImageDir(dir string, label float64) (Batch, []string, error) {
	files, err := listImages(dir)
	if err != nil {
		return Batch{}, nil, err
	}
	images, err := loadImages(files)
	if err != nil {
		return Batch{}, nil, err
	}
	labels := make([]float64, len(images))
	for i := range labels {
		labels[i] = label
	}
	b, err := fromTensors(images, labels)
	if err != nil {
		return Batch{}, nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	return b, names, nil
}

// ImageTensor converts img to a (3, H, W) tensor of RGB values scaled to [0, 1].
func ImageTensor(img image.Image) *tensor.Dense {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	plane := w * h
	norm := make([]float64, 3*plane)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*w + x
			norm[i] = float64(r>>8) / 255.0
			norm[plane+i] = float64(g>>8) / 255.0
			norm[2*plane+i] = float64(b>>8) / 255.0
		}
	}
	return tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(3, h, w), tensor.WithBacking(norm))
}

// listImages returns the image files directly inside dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func loadImages(files []string) ([]*tensor.Dense, error) {
	images := make([]*tensor.Dense, 0, len(files))
	var size image.Point
	for i, path := range files {
		img, err := decode(path)
		if err != nil {
			return nil, err
		}
		got := img.Bounds().Size()
		if i == 0 {
			size = got
		} else if got != size {
			return nil, &SizeError{File: path, Want: size, Got: got}
		}
		images = append(images, ImageTensor(img))
	}
	return images, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: decode %s: %w", path, err)
	}
	return img, nil
}
