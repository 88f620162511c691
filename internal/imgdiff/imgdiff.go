// Package imgdiff compares screenshots pixel by pixel.
package imgdiff

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	"github.com/google/renameio/v2"
)

// Options controls a comparison.
type Options struct {
	// Threshold is the largest differing-pixel percentage still counted as a match.
	Threshold float64
	// PixelThreshold is the per-pixel color distance (0..1) above which two
	// pixels differ.
	PixelThreshold float64
	// DiffPath, when set, receives a PNG highlighting the differences.
	DiffPath string
}

// DefaultOptions returns the usual comparison settings.
func DefaultOptions() Options {
	return Options{Threshold: 1, PixelThreshold: 0.1}
}

// Result is the outcome of a comparison.
type Result struct {
	DiffPercentage  int    `json:"diffPercentage"          yaml:"diffPercentage"`
	Match           bool   `json:"match"                   yaml:"match"`
	DiffImagePath   string `json:"diffImagePath,omitempty" yaml:"diffImagePath,omitempty"`
	TotalPixels     int    `json:"totalPixels"             yaml:"totalPixels"`
	DifferentPixels int    `json:"differentPixels"         yaml:"differentPixels"`
}

// maxYIQDelta is the largest possible value of colorDelta.
const maxYIQDelta = 35215

// Compare diffs a and b. Images of different sizes never match. The returned
// image is nil when the sizes differ.
func Compare(a, b image.Image, opts Options) (Result, *image.RGBA) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		total := max(ab.Dx()*ab.Dy(), bb.Dx()*bb.Dy())
		return Result{DiffPercentage: 100, TotalPixels: total, DifferentPixels: total}, nil
	}

	w, h := ab.Dx(), ab.Dy()
	diff := image.NewRGBA(image.Rect(0, 0, w, h))
	limit := maxYIQDelta * opts.PixelThreshold * opts.PixelThreshold
	region := image.Rectangle{}
	different := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pa := rgba(a.At(ab.Min.X+x, ab.Min.Y+y))
			pb := rgba(b.At(bb.Min.X+x, bb.Min.Y+y))
			if colorDelta(pa, pb) > limit {
				different++
				diff.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
				region = region.Union(image.Rect(x, y, x+1, y+1))
				continue
			}
			diff.SetRGBA(x, y, faded(pa))
		}
	}

	total := w * h
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(different) / float64(total) * 100))
	}
	if different > 0 {
		annotate(diff, region, fmt.Sprintf("%d%% (%d px)", pct, different))
	}
	return Result{
		DiffPercentage:  pct,
		Match:           float64(pct) <= opts.Threshold,
		TotalPixels:     total,
		DifferentPixels: different,
	}, diff
}

// CompareFiles diffs two image files, writing the diff image when
// opts.DiffPath is set.
func CompareFiles(pathA, pathB string, opts Options) (Result, error) {
	a, err := load(pathA)
	if err != nil {
		return Result{}, err
	}
	b, err := load(pathB)
	if err != nil {
		return Result{}, err
	}

	res, diff := Compare(a, b, opts)
	if opts.DiffPath != "" && diff != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, diff); err != nil {
			return Result{}, fmt.Errorf("encode diff: %w", err)
		}
		if err := renameio.WriteFile(opts.DiffPath, buf.Bytes(), 0o644); err != nil {
			return Result{}, fmt.Errorf("write diff: %w", err)
		}
		res.DiffImagePath = opts.DiffPath
	}
	return res, nil
}

func load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

// blend composites c over white and returns its channels in 0..255.
func blend(c color.RGBA) (r, g, b float64) {
	// color.RGBA is premultiplied, so compositing over white adds 255*(1-alpha).
	white := 255 - float64(c.A)
	return float64(c.R) + white, float64(c.G) + white, float64(c.B) + white
}

// colorDelta is the squared YIQ distance between two pixels.
func colorDelta(a, b color.RGBA) float64 {
	if a == b {
		return 0
	}
	r1, g1, b1 := blend(a)
	r2, g2, b2 := blend(b)
	dy := yiqY(r1, g1, b1) - yiqY(r2, g2, b2)
	di := yiqI(r1, g1, b1) - yiqI(r2, g2, b2)
	dq := yiqQ(r1, g1, b1) - yiqQ(r2, g2, b2)
	return 0.5053*dy*dy + 0.299*di*di + 0.1957*dq*dq
}

func yiqY(r, g, b float64) float64 { return r*0.29889531 + g*0.58662247 + b*0.11448223 }
func yiqI(r, g, b float64) float64 { return r*0.59597799 - g*0.27417610 - b*0.32180189 }
func yiqQ(r, g, b float64) float64 { return r*0.21147017 - g*0.52261711 + b*0.31114694 }

// faded renders an unchanged pixel as light gray.
func faded(c color.RGBA) color.RGBA {
	r, g, b := blend(c)
	v := uint8(255 + (yiqY(r, g, b)-255)*0.1)
	return color.RGBA{R: v, G: v, B: v, A: 255}
}
