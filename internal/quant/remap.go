package quant

import (
	"image"
)

// maxDitherError caps the error carried to neighbouring pixels so that a
// single badly matched pixel cannot smear across a flat area.
const maxDitherError = 0.25

type RemapOptions struct {
	// Dither is the Floyd-Steinberg strength, 0 (off) to 1 (full).
	Dither    float32
	Posterize int
	IEBug     bool
}

// Remap converts img to a paletted image using the result's palette.
func Remap(img *image.NRGBA, res *Result, opts RemapOptions) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(b, res.ColorPalette())
	if len(res.Palette) == 0 || b.Empty() {
		return out
	}
	if opts.Dither <= 0 {
		remapNearest(img, out, res.Palette, opts)
		return out
	}
	remapDithered(img, out, res.Palette, opts)
	return out
}

func remapNearest(img *image.NRGBA, out *image.Paletted, palette []Color, opts RemapOptions) {
	b := img.Bounds()
	cache := make(map[uint32]uint8)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			key := pack(prepare(img.NRGBAAt(x, y), opts.Posterize, opts.IEBug))
			idx, ok := cache[key]
			if !ok {
				i, _ := nearest(palette, FromNRGBA(unpack(key)))
				idx = uint8(i)
				cache[key] = idx
			}
			out.SetColorIndex(x, y, idx)
		}
	}
}

// remapDithered runs serpentine Floyd-Steinberg error diffusion.
func remapDithered(img *image.NRGBA, out *image.Paletted, palette []Color, opts RemapOptions) {
	b := img.Bounds()
	w := b.Dx()
	level := opts.Dither
	if level > 1 {
		level = 1
	}

	// Error rows are padded by one pixel on each side.
	cur := make([]Color, w+2)
	next := make([]Color, w+2)

	for row, y := 0, b.Min.Y; y < b.Max.Y; row, y = row+1, y+1 {
		for i := range next {
			next[i] = Color{}
		}
		reverse := row%2 == 1
		dir := 1
		if reverse {
			dir = -1
		}
		for i := 0; i < w; i++ {
			col := i
			if reverse {
				col = w - 1 - i
			}
			x := b.Min.X + col
			px := FromNRGBA(prepare(img.NRGBAAt(x, y), opts.Posterize, opts.IEBug))
			if px.A == 0 {
				// Error is not diffused into or out of fully transparent pixels.
				idx, _ := nearest(palette, px)
				out.SetColorIndex(x, y, uint8(idx))
				continue
			}
			target := px.add(cur[col+1], 1).clamp()
			idx, _ := nearest(palette, target)
			out.SetColorIndex(x, y, uint8(idx))

			diff := limitError(target.sub(palette[idx]))
			diff = Color{}.add(diff, level)
			cur[col+1+dir] = cur[col+1+dir].add(diff, 7.0/16)
			next[col+1-dir] = next[col+1-dir].add(diff, 3.0/16)
			next[col+1] = next[col+1].add(diff, 5.0/16)
			next[col+1+dir] = next[col+1+dir].add(diff, 1.0/16)
		}
		cur, next = next, cur
	}
}

func limitError(c Color) Color {
	return Color{
		R: clampSigned(c.R),
		G: clampSigned(c.G),
		B: clampSigned(c.B),
		A: clampSigned(c.A),
	}
}

func clampSigned(v float32) float32 {
	if v > maxDitherError {
		return maxDitherError
	}
	if v < -maxDitherError {
		return -maxDitherError
	}
	return v
}
