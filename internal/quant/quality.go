package quant

import "math"

// QualityToMSE maps a 0-100 quality to the largest acceptable mean squared
// error. The curve is close to libjpeg's quality scale, with extra room at
// the very low end for tiny palettes.
func QualityToMSE(quality int) float64 {
	if quality <= 0 {
		return maxDiff
	}
	if quality >= 100 {
		return 0
	}
	q := float64(quality)
	extraLowQualityFudge := math.Max(0, 0.016/(0.001+q)-0.001)
	return extraLowQualityFudge + 2.5/math.Pow(210.0+q, 1.2)*(100.1-q)/100.0
}

// MSEToQuality is the inverse of QualityToMSE, rounded down.
func MSEToQuality(mse float64) int {
	for q := 100; q > 0; q-- {
		if mse <= QualityToMSE(q)+0.000001 {
			return q
		}
	}
	return 0
}

// DisplayMSE scales an internal MSE to the 8-bit range used in status output.
func DisplayMSE(mse float64) float64 {
	return mse * 65536.0 / 6.0
}

// maxDiff is the largest possible distance between two colors.
const maxDiff = 4.0
