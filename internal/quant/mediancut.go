package quant

import (
	"math"
	"sort"
)

type box struct {
	entries  []HistEntry
	weight   float64
	mean     Color
	variance [4]float64
}

func newBox(entries []HistEntry) box {
	b := box{entries: entries}
	var sum [4]float64
	for _, e := range entries {
		b.weight += e.Weight
		for ch := 0; ch < 4; ch++ {
			sum[ch] += float64(e.Color.channel(ch)) * e.Weight
		}
	}
	if b.weight == 0 {
		return b
	}
	var mean [4]float64
	for ch := range mean {
		mean[ch] = sum[ch] / b.weight
	}
	b.mean = Color{R: float32(mean[0]), G: float32(mean[1]), B: float32(mean[2]), A: float32(mean[3])}
	for _, e := range entries {
		for ch := 0; ch < 4; ch++ {
			d := float64(e.Color.channel(ch)) - mean[ch]
			b.variance[ch] += d * d * e.Weight
		}
	}
	return b
}

func (b box) score() float64 {
	if len(b.entries) < 2 {
		return -1
	}
	return b.variance[0] + b.variance[1] + b.variance[2] + b.variance[3]
}

func (b box) widestChannel() int {
	widest := 0
	for ch := 1; ch < 4; ch++ {
		if b.variance[ch] > b.variance[widest] {
			widest = ch
		}
	}
	return widest
}

// split cuts the box at the weighted median of its widest channel.
func (b box) split() (box, box) {
	ch := b.widestChannel()
	sort.SliceStable(b.entries, func(i, j int) bool {
		return b.entries[i].Color.channel(ch) < b.entries[j].Color.channel(ch)
	})

	half := b.weight / 2
	var acc float64
	cut := 1
	for i, e := range b.entries {
		acc += e.Weight
		if acc >= half {
			cut = i + 1
			break
		}
	}
	if cut >= len(b.entries) {
		cut = len(b.entries) - 1
	}
	return newBox(b.entries[:cut]), newBox(b.entries[cut:])
}

// MedianCut builds a palette of at most n colors from the histogram. A
// histogram with n or fewer colors is returned exactly.
func MedianCut(h *Histogram, n int) []Color {
	if n < 1 || len(h.Entries) == 0 {
		return nil
	}
	if len(h.Entries) <= n {
		palette := make([]Color, len(h.Entries))
		for i, e := range h.Entries {
			palette[i] = e.Color
		}
		return palette
	}

	entries := append([]HistEntry(nil), h.Entries...)
	boxes := []box{newBox(entries)}
	for len(boxes) < n {
		best := -1
		bestScore := 0.0
		for i, b := range boxes {
			if s := b.score(); s > bestScore {
				best, bestScore = i, s
			}
		}
		if best < 0 {
			break
		}
		left, right := boxes[best].split()
		boxes[best] = left
		boxes = append(boxes, right)
	}

	palette := make([]Color, len(boxes))
	for i, b := range boxes {
		palette[i] = b.mean
	}
	return palette
}

// Refine moves each palette entry to the weighted centroid of the histogram
// colors nearest to it.
func Refine(h *Histogram, palette []Color, iterations int) {
	if len(palette) == 0 {
		return
	}
	sums := make([][4]float64, len(palette))
	weights := make([]float64, len(palette))
	for iter := 0; iter < iterations; iter++ {
		for i := range sums {
			sums[i] = [4]float64{}
			weights[i] = 0
		}
		for _, e := range h.Entries {
			idx, _ := nearest(palette, e.Color)
			for ch := 0; ch < 4; ch++ {
				sums[idx][ch] += float64(e.Color.channel(ch)) * e.Weight
			}
			weights[idx] += e.Weight
		}
		moved := false
		for i := range palette {
			if weights[i] == 0 {
				continue
			}
			next := Color{
				R: float32(sums[i][0] / weights[i]),
				G: float32(sums[i][1] / weights[i]),
				B: float32(sums[i][2] / weights[i]),
				A: float32(sums[i][3] / weights[i]),
			}
			if next != palette[i] {
				moved = true
			}
			palette[i] = next
		}
		if !moved {
			return
		}
	}
}

func nearest(palette []Color, c Color) (int, float32) {
	best := 0
	bestDist := float32(math.MaxFloat32)
	for i, p := range palette {
		if d := p.dist(c); d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return best, bestDist
}

func sortEntries(entries []HistEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].key < entries[j].key
	})
}
