package quant

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / (w - 1)),
				G: uint8(y * 255 / (h - 1)),
				B: uint8((x + y) * 255 / (w + h - 2)),
				A: 255,
			})
		}
	}
	return img
}

func flat(w, h int, colors ...color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, colors[i%len(colors)])
			i++
		}
	}
	return img
}

func TestPosterizeChannel(t *testing.T) {
	tests := []struct {
		in   uint8
		bits int
		want uint8
	}{
		{in: 0xAB, bits: 0, want: 0xAB},
		{in: 0xAB, bits: 4, want: 0xAA},
		{in: 0xFF, bits: 4, want: 0xFF},
		{in: 0x00, bits: 2, want: 0x00},
		{in: 0x81, bits: 1, want: 0x81},
	}
	for _, tt := range tests {
		if got := posterizeChannel(tt.in, tt.bits); got != tt.want {
			t.Fatalf("posterizeChannel(%#x, %d) = %#x, want %#x", tt.in, tt.bits, got, tt.want)
		}
	}
}

func TestNRGBARoundTrip(t *testing.T) {
	for _, c := range []color.NRGBA{
		{R: 10, G: 200, B: 30, A: 255},
		{R: 255, G: 0, B: 128, A: 128},
		{R: 1, G: 2, B: 3, A: 17},
	} {
		if got := FromNRGBA(c).NRGBA(); got != c {
			t.Fatalf("round trip %v = %v", c, got)
		}
	}
	if got := FromNRGBA(color.NRGBA{R: 9, G: 9, B: 9, A: 0}).NRGBA(); got != (color.NRGBA{}) {
		t.Fatalf("transparent = %v, want transparent black", got)
	}
}

func TestHistogramCollapsesTransparentPixels(t *testing.T) {
	img := flat(4, 1,
		color.NRGBA{R: 255, A: 0},
		color.NRGBA{G: 255, A: 0},
		color.NRGBA{R: 10, G: 20, B: 30, A: 255},
		color.NRGBA{R: 10, G: 20, B: 30, A: 255},
	)
	hist := NewHistogram(img, HistogramOptions{})
	if len(hist.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(hist.Entries))
	}
	if hist.Total != 4 {
		t.Fatalf("total = %v, want 4", hist.Total)
	}
}

func TestHistogramIEBugRoundsAlpha(t *testing.T) {
	img := flat(2, 1, color.NRGBA{R: 10, A: 240}, color.NRGBA{R: 10, A: 255})
	if got := len(NewHistogram(img, HistogramOptions{}).Entries); got != 2 {
		t.Fatalf("entries without iebug = %d, want 2", got)
	}
	if got := len(NewHistogram(img, HistogramOptions{IEBug: true}).Entries); got != 1 {
		t.Fatalf("entries with iebug = %d, want 1", got)
	}
}

func TestHistogramStrideSamplesFirstPixel(t *testing.T) {
	img := flat(1, 1, color.NRGBA{R: 1, A: 255})
	hist := NewHistogram(img, HistogramOptions{Stride: 3})
	if len(hist.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(hist.Entries))
	}
}

func TestMedianCutExactWhenFewColors(t *testing.T) {
	img := flat(3, 3,
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{G: 255, A: 255},
		color.NRGBA{B: 255, A: 255},
	)
	res, err := Quantize(img, Options{MaxColors: 256, Speed: 3})
	if err != nil {
		t.Fatalf("Quantize() error = %v", err)
	}
	if len(res.Palette) != 3 {
		t.Fatalf("palette size = %d, want 3", len(res.Palette))
	}
	if res.Quality != 100 {
		t.Fatalf("quality = %d, want 100", res.Quality)
	}
}

func TestQuantizeRespectsColorLimit(t *testing.T) {
	img := gradient(64, 64)
	for _, n := range []int{2, 16, 200} {
		res, err := Quantize(img, Options{MaxColors: n, Speed: 5})
		if err != nil {
			t.Fatalf("Quantize(%d) error = %v", n, err)
		}
		if len(res.Palette) > n {
			t.Fatalf("palette size = %d, want <= %d", len(res.Palette), n)
		}
	}
}

func TestQuantizeMoreColorsLowersError(t *testing.T) {
	img := gradient(64, 64)
	few, err := Quantize(img, Options{MaxColors: 4, Speed: 3})
	if err != nil {
		t.Fatal(err)
	}
	many, err := Quantize(img, Options{MaxColors: 128, Speed: 3})
	if err != nil {
		t.Fatal(err)
	}
	if many.MSE >= few.MSE {
		t.Fatalf("MSE with 128 colors = %v, want below %v", many.MSE, few.MSE)
	}
}

func TestQuantizeTargetQualityUsesFewerColors(t *testing.T) {
	img := gradient(64, 64)
	full, err := Quantize(img, Options{MaxColors: 256, Speed: 3})
	if err != nil {
		t.Fatal(err)
	}
	reduced, err := Quantize(img, Options{MaxColors: 256, Speed: 3, TargetQuality: 30})
	if err != nil {
		t.Fatal(err)
	}
	if len(reduced.Palette) >= len(full.Palette) {
		t.Fatalf("palette with target = %d, want fewer than %d", len(reduced.Palette), len(full.Palette))
	}
}

func TestQuantizeMinQuality(t *testing.T) {
	img := gradient(64, 64)
	res, err := Quantize(img, Options{MaxColors: 2, Speed: 3, MinQuality: 99})
	if !errors.Is(err, ErrQualityTooLow) {
		t.Fatalf("Quantize() error = %v, want ErrQualityTooLow", err)
	}
	if res == nil || res.Quality >= 99 {
		t.Fatalf("result = %+v, want quality below 99", res)
	}
}

func TestQualityCurve(t *testing.T) {
	if QualityToMSE(100) != 0 {
		t.Fatalf("QualityToMSE(100) = %v, want 0", QualityToMSE(100))
	}
	prev := QualityToMSE(1)
	for q := 2; q <= 100; q++ {
		cur := QualityToMSE(q)
		if cur > prev {
			t.Fatalf("QualityToMSE not decreasing at %d", q)
		}
		prev = cur
	}
	for _, q := range []int{10, 50, 90, 100} {
		if got := MSEToQuality(QualityToMSE(q)); got != q {
			t.Fatalf("MSEToQuality(QualityToMSE(%d)) = %d", q, got)
		}
	}
	if got := MSEToQuality(10); got != 0 {
		t.Fatalf("MSEToQuality(10) = %d, want 0", got)
	}
}

func TestSortPalette(t *testing.T) {
	opaque := FromNRGBA(color.NRGBA{R: 200, A: 255})
	half := FromNRGBA(color.NRGBA{G: 200, A: 128})
	transparent := Color{}

	palette := []Color{opaque, half, transparent}
	SortPalette(palette, false)
	if palette[0] != transparent || palette[1] != half || palette[2] != opaque {
		t.Fatalf("default order = %v", palette)
	}

	palette = []Color{opaque, transparent, half}
	SortPalette(palette, true)
	if palette[2] != transparent {
		t.Fatalf("last entry = %v, want transparent", palette[2])
	}
	if palette[0] != half {
		t.Fatalf("first entry = %v, want translucent", palette[0])
	}
}

func TestRemapWithoutDitherUsesNearest(t *testing.T) {
	img := flat(2, 2,
		color.NRGBA{R: 250, A: 255},
		color.NRGBA{B: 250, A: 255},
	)
	res := &Result{Palette: []Color{
		FromNRGBA(color.NRGBA{B: 255, A: 255}),
		FromNRGBA(color.NRGBA{R: 255, A: 255}),
	}}
	out := Remap(img, res, RemapOptions{})
	if out.ColorIndexAt(0, 0) != 1 || out.ColorIndexAt(1, 0) != 0 {
		t.Fatalf("indices = %d, %d, want 1, 0", out.ColorIndexAt(0, 0), out.ColorIndexAt(1, 0))
	}
}

func TestRemapDitherMixesColors(t *testing.T) {
	grey := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	img := flat(16, 16, grey)
	res := &Result{Palette: []Color{
		FromNRGBA(color.NRGBA{A: 255}),
		FromNRGBA(color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
	}}

	count := func(p *image.Paletted) (black, white int) {
		for _, idx := range p.Pix {
			if idx == 0 {
				black++
			} else {
				white++
			}
		}
		return
	}

	black, white := count(Remap(img, res, RemapOptions{}))
	if black != 0 && white != 0 {
		t.Fatalf("undithered remap mixed colors: %d black, %d white", black, white)
	}
	black, white = count(Remap(img, res, RemapOptions{Dither: 1}))
	if black == 0 || white == 0 {
		t.Fatalf("dithered remap = %d black, %d white, want both", black, white)
	}
}

func TestRemapKeepsTransparentPixels(t *testing.T) {
	img := flat(4, 4, color.NRGBA{}, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	res := &Result{Palette: []Color{
		{},
		FromNRGBA(color.NRGBA{A: 255}),
		FromNRGBA(color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
	}}
	out := Remap(img, res, RemapOptions{Dither: 1})
	for i := 0; i < 16; i += 2 {
		if out.Pix[i] != 0 {
			t.Fatalf("pixel %d index = %d, want transparent", i, out.Pix[i])
		}
	}
}

func TestPaletteFromImage(t *testing.T) {
	img := flat(4, 1,
		color.NRGBA{R: 1, A: 255},
		color.NRGBA{R: 2, A: 255},
		color.NRGBA{R: 1, A: 255},
	)
	if got := len(PaletteFromImage(img, 256)); got != 2 {
		t.Fatalf("palette size = %d, want 2", got)
	}
	if got := PaletteFromImage(img, 1); got != nil {
		t.Fatalf("palette = %v, want nil over limit", got)
	}
}
