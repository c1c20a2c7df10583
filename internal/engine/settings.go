package engine

import (
	"errors"
	"strconv"
	"strings"

	"github.com/chojs23/gopngquant/internal/cli"
)

const (
	defaultColors = 256
	defaultSpeed  = 3
	maxSpeed      = 10

	ditheredExtension = "-fs8.png"
	orderedExtension  = "-or8.png"
)

// settings is Options resolved against engine defaults and checked for
// ranges the parser leaves alone.
type settings struct {
	colors          int
	speed           int
	fastCompression bool
	posterize       int
	floyd           float32

	minQuality    int
	targetQuality int

	extension string
	// An explicit empty path is still a path; only absence means default.
	outputPath cli.OptionalString
	mapFile    cli.OptionalString
}

func resolve(opts cli.Options) (settings, error) {
	s := settings{
		colors:        opts.Colors,
		speed:         opts.Speed,
		posterize:     opts.Posterize,
		floyd:         float32(opts.Floyd),
		targetQuality: 100,
	}

	if s.colors == 0 {
		s.colors = defaultColors
	}
	if s.colors < 2 || s.colors > 256 {
		return settings{}, fail(InvalidArgument, "Number of colors must be between 2 and 256.")
	}

	if s.speed == 0 {
		s.speed = defaultSpeed
	}
	if s.speed < 1 || s.speed > maxSpeed+1 {
		return settings{}, fail(InvalidArgument, "Speed should be between 1 (slow) and 11 (fast).")
	}
	if s.speed >= maxSpeed {
		s.fastCompression = true
		s.speed = maxSpeed
	}

	if s.posterize < 0 || s.posterize > 4 {
		return settings{}, fail(InvalidArgument, "Posterization should be number of bits in range 0-4.")
	}

	if !(opts.Floyd >= 0 && opts.Floyd <= 1) {
		return settings{}, fail(InvalidArgument, "--floyd argument must be in 0..1 range")
	}

	if q, ok := opts.Quality.Get(); ok {
		limit, target, err := parseQuality(q)
		if err != nil {
			return settings{}, fail(InvalidArgument, "Quality should be in format min-max where min and max are numbers in range 0-100.")
		}
		s.minQuality, s.targetQuality = limit, target
	}

	hasOutput := opts.OutputPath.IsSet()
	if hasOutput && opts.Extension.IsSet() {
		return settings{}, fail(InvalidArgument, "--ext and --output options can't be used at the same time")
	}
	if (hasOutput || (opts.UsingStdout && !opts.UsingStdin)) && len(opts.Files) != 1 {
		return settings{}, fail(InvalidArgument, "Only one input file is allowed when --output is used. This error also happens when filenames with spaces are not in quotes.")
	}
	s.outputPath = opts.OutputPath

	s.extension = ditheredExtension
	if s.floyd == 0 {
		s.extension = orderedExtension
	}
	if ext, ok := opts.Extension.Get(); ok {
		s.extension = ext
	}

	s.mapFile = opts.MapFile
	return s, nil
}

var errQualityFormat = errors.New("invalid quality")

// parseQuality accepts "N", "-N", "N-" and "N-M". A single number is the
// target, with the minimum set a tenth below it.
func parseQuality(q string) (limit, target int, err error) {
	t1, rest, ok := leadingInt(q)
	if !ok {
		return 0, 0, errQualityFormat
	}

	switch {
	case rest == "" && t1 < 0:
		target, limit = -t1, 0
	case rest == "":
		target, limit = t1, t1*9/10
	case rest == "-":
		target, limit = 100, t1
	default:
		t2, tail, ok := leadingInt(rest)
		if !ok || t2 > 0 || tail != "" {
			return 0, 0, errQualityFormat
		}
		target, limit = -t2, t1
	}

	if limit < 0 || target > 100 || limit > target {
		return 0, 0, errQualityFormat
	}
	return limit, target, nil
}

// leadingInt reads an optionally signed decimal prefix of s.
func leadingInt(s string) (int, string, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, s, false
	}
	return n, s[end:], true
}

// outputFilename derives the output path from the input path by replacing a
// trailing ".png" with the extension.
func outputFilename(input, extension string) string {
	base := input
	if strings.HasSuffix(strings.ToLower(base), ".png") {
		base = base[:len(base)-len(".png")]
	}
	return base + extension
}
