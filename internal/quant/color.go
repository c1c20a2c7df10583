package quant

import (
	"image/color"
	"math"
)

// Color is a premultiplied RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

func FromNRGBA(c color.NRGBA) Color {
	a := float32(c.A) / 255
	return Color{
		R: float32(c.R) / 255 * a,
		G: float32(c.G) / 255 * a,
		B: float32(c.B) / 255 * a,
		A: a,
	}
}

// NRGBA converts back to 8-bit straight alpha. Fully transparent colors
// collapse to transparent black.
func (c Color) NRGBA() color.NRGBA {
	if c.A <= 0.5/255 {
		return color.NRGBA{}
	}
	return color.NRGBA{
		R: to8(c.R / c.A),
		G: to8(c.G / c.A),
		B: to8(c.B / c.A),
		A: to8(c.A),
	}
}

func (c Color) dist(o Color) float32 {
	dr := c.R - o.R
	dg := c.G - o.G
	db := c.B - o.B
	da := c.A - o.A
	return dr*dr + dg*dg + db*db + da*da
}

func (c Color) add(o Color, scale float32) Color {
	return Color{
		R: c.R + o.R*scale,
		G: c.G + o.G*scale,
		B: c.B + o.B*scale,
		A: c.A + o.A*scale,
	}
}

func (c Color) sub(o Color) Color {
	return Color{R: c.R - o.R, G: c.G - o.G, B: c.B - o.B, A: c.A - o.A}
}

// clamp keeps the color inside the premultiplied gamut.
func (c Color) clamp() Color {
	c.A = clamp01(c.A)
	c.R = clampTo(c.R, c.A)
	c.G = clampTo(c.G, c.A)
	c.B = clampTo(c.B, c.A)
	return c
}

func (c Color) channel(i int) float32 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	case 2:
		return c.B
	default:
		return c.A
	}
}

func to8(v float32) uint8 {
	return uint8(math.Round(float64(clamp01(v)) * 255))
}

func clamp01(v float32) float32 {
	return clampTo(v, 1)
}

func clampTo(v, hi float32) float32 {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

func pack(c color.NRGBA) uint32 {
	if c.A == 0 {
		return 0
	}
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// posterizeChannel drops the low bits of v and refills them from the high
// bits so that 0 and 255 stay reachable.
func posterizeChannel(v uint8, bits int) uint8 {
	if bits <= 0 {
		return v
	}
	v &= 0xFF << bits
	return v | v>>(8-bits)
}

func posterizeNRGBA(c color.NRGBA, bits int) color.NRGBA {
	if bits <= 0 {
		return c
	}
	return color.NRGBA{
		R: posterizeChannel(c.R, bits),
		G: posterizeChannel(c.G, bits),
		B: posterizeChannel(c.B, bits),
		A: posterizeChannel(c.A, bits),
	}
}
