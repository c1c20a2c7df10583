package quant

import (
	"image"
	"image/color"
)

// ieMinOpacity is the alpha above which --iebug treats pixels as opaque.
const ieMinOpacity = 238

type HistEntry struct {
	Color  Color
	Weight float64
	key    uint32
}

// Histogram is the set of distinct colors of an image with their pixel
// counts.
type Histogram struct {
	Entries []HistEntry
	Total   float64
}

type HistogramOptions struct {
	Posterize int
	IEBug     bool
	// Stride samples every Stride-th pixel. Values below 1 mean 1.
	Stride int
}

func NewHistogram(img *image.NRGBA, opts HistogramOptions) *Histogram {
	stride := opts.Stride
	if stride < 1 {
		stride = 1
	}

	b := img.Bounds()
	counts := make(map[uint32]float64)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if i%stride == 0 {
				c := prepare(img.NRGBAAt(x, y), opts.Posterize, opts.IEBug)
				counts[pack(c)]++
			}
			i++
		}
	}

	h := &Histogram{Entries: make([]HistEntry, 0, len(counts))}
	for key, n := range counts {
		h.Entries = append(h.Entries, HistEntry{Color: FromNRGBA(unpack(key)), Weight: n, key: key})
		h.Total += n
	}
	sortEntries(h.Entries)
	return h
}

// prepare applies the per-pixel input adjustments shared by the histogram
// and the remapper.
func prepare(c color.NRGBA, posterize int, iebug bool) color.NRGBA {
	if iebug && c.A >= ieMinOpacity {
		c.A = 255
	}
	if c.A == 0 {
		return color.NRGBA{}
	}
	return posterizeNRGBA(c, posterize)
}

func unpack(key uint32) color.NRGBA {
	return color.NRGBA{R: uint8(key >> 24), G: uint8(key >> 16), B: uint8(key >> 8), A: uint8(key)}
}

// MSE is the weighted mean squared error of mapping every histogram color to
// its nearest palette entry.
func (h *Histogram) MSE(palette []Color) float64 {
	if h.Total == 0 || len(palette) == 0 {
		return 0
	}
	var sum float64
	for _, e := range h.Entries {
		_, d := nearest(palette, e.Color)
		sum += float64(d) * e.Weight
	}
	return sum / h.Total
}
