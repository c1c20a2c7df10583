package cli

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

var (
	ErrHelp             = errors.New("help requested")
	ErrVersion          = errors.New("version requested")
	ErrMissingArguments = errors.New("no arguments given")
	ErrNoInputFiles     = errors.New("No input files specified")
)

// SyntaxError reports malformed command-line input: an unknown flag or an
// option that needs a value and did not get one.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return e.Err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// StdinPath is the positional token meaning "read standard input".
const StdinPath = "-"

const defaultFloyd = 1.0

// Parse turns the arguments following the program name into Options.
//
// Only malformed flags are errors. Numeric options that do not parse fall
// back to their defaults without a diagnostic.
func Parse(args []string) (Options, error) {
	var floyd optionalValue

	fs := pflag.NewFlagSet("pngquant", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	verbose := fs.BoolP("verbose", "v", false, "print status messages")
	help := fs.BoolP("help", "h", false, "show help")
	quiet := fs.BoolP("quiet", "q", false, "don't print status messages")
	force := fs.BoolP("force", "f", false, "overwrite existing output files")
	noForce := fs.Bool("no-force", false, "don't overwrite existing output files")
	ordered := fs.Bool("ordered", false, "disable dithering")
	nofs := fs.Bool("nofs", false, "disable Floyd-Steinberg dithering")
	iebug := fs.Bool("iebug", false, "increase opacity to work around Internet Explorer 6 bug")
	transbug := fs.Bool("transbug", false, "transparent color will be placed at the end of the palette")
	skipIfLarger := fs.Bool("skip-if-larger", false, "only save converted files if they're smaller than original")
	strip := fs.Bool("strip", false, "remove optional metadata")
	version := fs.BoolP("version", "V", false, "show version")

	fs.Var(&floyd, "floyd", "dithering level 0.0-1.0")
	fs.Lookup("floyd").NoOptDefVal = bareMarker

	ext := fs.String("ext", "", "custom suffix for output filenames")
	output := fs.StringP("output", "o", "", "destination file path")
	speed := fs.StringP("speed", "s", "", "speed/quality trade-off 1-11")
	quality := fs.StringP("quality", "Q", "", "min-max quality 0-100")
	posterize := fs.String("posterize", "", "output lower-precision color")
	mapFile := fs.String("map", "", "use palette of this image")

	if err := fs.Parse(args); err != nil {
		return Options{}, &SyntaxError{Err: err}
	}

	optional := func(name string, value *string) OptionalString {
		if fs.Changed(name) {
			return Some(*value)
		}
		return None()
	}

	opts := Options{
		Speed:     parseCount(optional("speed", speed)),
		Posterize: parseCount(optional("posterize", posterize)),
		Floyd:     floyd.level(),

		Quality:   optional("quality", quality),
		Extension: optional("ext", ext),
		MapFile:   optional("map", mapFile),
	}

	files := append([]string(nil), fs.Args()...)
	if len(files) > 0 {
		if n, err := parseUnsigned(files[0]); err == nil {
			opts.Colors = int(n)
			files = files[1:]
			if len(files) == 0 {
				files = []string{StdinPath}
			}
		}
	}

	opts.UsingStdin = len(files) == 1 && files[0] == StdinPath
	opts.UsingStdout = opts.UsingStdin
	if fs.Changed("output") {
		if *output == StdinPath {
			opts.UsingStdout = true
		} else {
			opts.UsingStdout = false
			opts.OutputPath = Some(*output)
		}
	}
	opts.Files = files

	opts.Verbose = *verbose && !*quiet
	opts.Force = *force && !*noForce
	opts.SkipIfLarger = *skipIfLarger
	opts.Strip = *strip
	opts.IEBug = *iebug
	opts.LastIndexTransparent = *transbug
	opts.PrintHelp = *help
	opts.PrintVersion = *version
	opts.MissingArguments = len(args) == 0

	if *nofs || *ordered {
		opts.Floyd = 0
	}

	return opts, nil
}

// Validate reports whether the invocation should stop before the engine
// runs. The order matches the order the driver must check them in.
func (o Options) Validate() error {
	switch {
	case o.PrintVersion:
		return ErrVersion
	case o.PrintHelp:
		return ErrHelp
	case o.MissingArguments:
		return ErrMissingArguments
	case !o.UsingStdin && len(o.Files) == 0:
		return ErrNoInputFiles
	}
	return nil
}

func parseCount(v OptionalString) int {
	s, ok := v.Get()
	if !ok {
		return 0
	}
	n, err := parseUnsigned(s)
	if err != nil {
		return 0
	}
	return int(n)
}

// parseUnsigned reads a decimal 32-bit unsigned number. A single leading
// plus sign is allowed.
func parseUnsigned(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 32)
}
