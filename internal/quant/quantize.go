package quant

import (
	"errors"
	"image"
	"image/color"
	"sort"
)

// ErrQualityTooLow is returned when the best palette within the color limit
// is still below the minimum quality.
var ErrQualityTooLow = errors.New("quality too low")

type Options struct {
	MaxColors int
	// Speed 1 (slow, best) to 10 (fast, rough).
	Speed     int
	Posterize int
	IEBug     bool

	MinQuality    int
	TargetQuality int

	LastIndexTransparent bool
}

// Result is a finished palette and the error it achieves on its histogram.
type Result struct {
	Palette []Color
	MSE     float64
	Quality int
}

// ColorPalette returns the palette in the form image.Paletted expects.
func (r *Result) ColorPalette() color.Palette {
	p := make(color.Palette, len(r.Palette))
	for i, c := range r.Palette {
		p[i] = c.NRGBA()
	}
	return p
}

// Quantize picks a palette for img. With a TargetQuality below 100 it uses
// the fewest colors that still reach the target. A result below MinQuality
// is returned together with ErrQualityTooLow.
func Quantize(img *image.NRGBA, opts Options) (*Result, error) {
	hist := NewHistogram(img, HistogramOptions{
		Posterize: opts.Posterize,
		IEBug:     opts.IEBug,
		Stride:    sampleStride(opts.Speed),
	})
	if len(hist.Entries) == 0 {
		return &Result{Palette: []Color{{}}, Quality: 100}, nil
	}

	iterations := refineIterations(opts.Speed)
	build := func(n int) []Color {
		palette := MedianCut(hist, n)
		Refine(hist, palette, iterations)
		return Posterize(palette, opts.Posterize)
	}

	palette := build(opts.MaxColors)
	target := opts.TargetQuality
	if target > 0 && target < 100 && len(palette) > 2 {
		targetMSE := QualityToMSE(target)
		if hist.MSE(palette) <= targetMSE {
			lo, hi := 2, len(palette)
			best := palette
			for lo < hi {
				mid := (lo + hi) / 2
				candidate := build(mid)
				if hist.MSE(candidate) <= targetMSE {
					best, hi = candidate, mid
				} else {
					lo = mid + 1
				}
			}
			palette = best
		}
	}

	return finish(hist, palette, opts)
}

// QuantizeWithPalette uses a fixed palette instead of building one.
func QuantizeWithPalette(img *image.NRGBA, palette []Color, opts Options) (*Result, error) {
	hist := NewHistogram(img, HistogramOptions{
		Posterize: opts.Posterize,
		IEBug:     opts.IEBug,
		Stride:    sampleStride(opts.Speed),
	})
	return finish(hist, append([]Color(nil), palette...), opts)
}

func finish(hist *Histogram, palette []Color, opts Options) (*Result, error) {
	SortPalette(palette, opts.LastIndexTransparent)
	mse := hist.MSE(palette)
	res := &Result{Palette: palette, MSE: mse, Quality: MSEToQuality(mse)}
	if opts.MinQuality > 0 && res.Quality < opts.MinQuality {
		return res, ErrQualityTooLow
	}
	return res, nil
}

// Posterize drops the low bits of every palette channel.
func Posterize(palette []Color, bits int) []Color {
	if bits <= 0 {
		return palette
	}
	for i, c := range palette {
		palette[i] = FromNRGBA(posterizeNRGBA(c.NRGBA(), bits))
	}
	return palette
}

// SortPalette puts translucent entries first, most transparent first, so the
// PNG transparency chunk stays short. With lastIndexTransparent the fully
// transparent entry is moved to the end instead.
func SortPalette(palette []Color, lastIndexTransparent bool) {
	sort.SliceStable(palette, func(i, j int) bool {
		return palette[i].NRGBA().A < palette[j].NRGBA().A
	})
	if !lastIndexTransparent || len(palette) == 0 || palette[0].NRGBA().A != 0 {
		return
	}
	transparent := palette[0]
	copy(palette, palette[1:])
	palette[len(palette)-1] = transparent
}

// PaletteFromImage returns the distinct colors of img, or nil when there are
// more than limit of them.
func PaletteFromImage(img *image.NRGBA, limit int) []Color {
	b := img.Bounds()
	seen := make(map[uint32]struct{})
	var palette []Color
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			key := pack(c)
			if _, ok := seen[key]; ok {
				continue
			}
			if len(seen) == limit {
				return nil
			}
			seen[key] = struct{}{}
			palette = append(palette, FromNRGBA(unpack(key)))
		}
	}
	return palette
}

func sampleStride(speed int) int {
	switch {
	case speed >= 9:
		return 3
	case speed >= 7:
		return 2
	default:
		return 1
	}
}

func refineIterations(speed int) int {
	if speed >= 8 {
		return 0
	}
	if speed < 1 {
		speed = 1
	}
	return 8 - speed
}
