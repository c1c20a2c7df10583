package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/chojs23/gopngquant/internal/cli"
	"github.com/chojs23/gopngquant/internal/ctxlog"
	"github.com/chojs23/gopngquant/internal/pngio"
	"github.com/chojs23/gopngquant/internal/quant"
)

// Observer is told when each input file starts and finishes.
type Observer interface {
	FileStarted(path string)
	FileFinished(path string, err error)
}

type nopObserver struct{}

func (nopObserver) FileStarted(string)         {}
func (nopObserver) FileFinished(string, error) {}

// Env is the process environment the engine reads from and writes to.
type Env struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Observer Observer
	// Workers bounds parallel file processing; 0 means one per CPU.
	Workers int
}

// Summary is the outcome of one engine run.
type Summary struct {
	Total  int
	Failed int
	Status Status
}

// Main quantizes every input file named by opts. The returned status is the
// status of the last file that failed, or Success.
func Main(ctx context.Context, opts cli.Options, env Env) Summary {
	logger := ctxlog.FromContext(ctx)
	if env.Observer == nil {
		env.Observer = nopObserver{}
	}
	if env.Stdin == nil {
		env.Stdin = os.Stdin
	}
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}

	s, err := resolve(opts)
	if err != nil {
		logger.Error(err.Error())
		return Summary{Status: StatusOf(err)}
	}

	var fixed []quant.Color
	if mapFile, ok := s.mapFile.Get(); ok {
		fixed, err = loadMap(mapFile, s)
		if err != nil {
			logger.Error(err.Error())
			return Summary{Status: StatusOf(err)}
		}
		logger.Info("using fixed palette", "map", mapFile, "colors", len(fixed))
	}

	workers := env.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]error, len(opts.Files))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range opts.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = &Error{Status: ReadError, Err: err}
				return nil
			}
			env.Observer.FileStarted(path)
			err := processFile(ctx, path, s, opts, env, fixed)
			env.Observer.FileFinished(path, err)
			if err != nil {
				logger.Error(err.Error(), "file", displayName(path))
			}
			results[i] = err
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{Total: len(opts.Files), Status: Success}
	for _, err := range results {
		if err != nil {
			summary.Failed++
			summary.Status = StatusOf(err)
		}
	}
	return summary
}

func processFile(ctx context.Context, path string, s settings, opts cli.Options, env Env, fixed []quant.Color) error {
	logger := ctxlog.FromContext(ctx).With("file", displayName(path))

	outPath := ""
	if !opts.UsingStdout {
		outPath = s.outputPath.Or(outputFilename(path, s.extension))
		if !opts.Force {
			if _, err := os.Stat(outPath); err == nil {
				return fail(NotOverwritingError, "'%s' exists; not overwriting", outPath)
			}
		}
	}

	input, err := readInput(path, opts, env)
	if err != nil {
		return fail(ReadError, "cannot open %s for reading: %w", displayName(path), err)
	}
	logger.Info("read file", "kb", (len(input)+1023)/1024)

	img, err := pngio.DecodeBytes(input)
	if err != nil {
		return fail(ReadError, "%s: %w", displayName(path), err)
	}

	qopts := quant.Options{
		MaxColors:            s.colors,
		Speed:                s.speed,
		Posterize:            s.posterize,
		IEBug:                opts.IEBug,
		MinQuality:           s.minQuality,
		TargetQuality:        s.targetQuality,
		LastIndexTransparent: opts.LastIndexTransparent,
	}
	var res *quant.Result
	if fixed != nil {
		res, err = quant.QuantizeWithPalette(img, fixed, qopts)
	} else {
		res, err = quant.Quantize(img, qopts)
	}
	if res != nil {
		logger.Info("made palette", "colors", len(res.Palette), "mse", fmt.Sprintf("%.3f", quant.DisplayMSE(res.MSE)), "quality", res.Quality)
	}
	if errors.Is(err, quant.ErrQualityTooLow) {
		return keepInput(fail(TooLowQuality, "conversion results in quality too low (Q=%d < %d)", res.Quality, s.minQuality), input, opts, env)
	}
	if err != nil {
		return fail(OutOfMemoryError, "%s: %w", displayName(path), err)
	}

	remapped := quant.Remap(img, res, quant.RemapOptions{
		Dither:    s.floyd,
		Posterize: s.posterize,
		IEBug:     opts.IEBug,
	})
	output, err := pngio.EncodeBytes(remapped, s.fastCompression)
	if err != nil {
		return fail(EncodeError, "%s: %w", displayName(path), err)
	}

	if opts.SkipIfLarger && len(output) > len(input) {
		return keepInput(fail(TooLargeFile, "file exceeded expected size of %dKB", (len(input)+1023)/1024), input, opts, env)
	}

	if opts.UsingStdout {
		if _, err := env.Stdout.Write(output); err != nil {
			return fail(CantWriteError, "cannot write to stdout: %w", err)
		}
		logger.Info("wrote image", "colors", len(res.Palette), "output", "stdout")
		return nil
	}

	if err := writeFileAtomic(outPath, output); err != nil {
		return fail(CantWriteError, "cannot open %s for writing: %w", outPath, err)
	}
	logger.Info("wrote image", "colors", len(res.Palette), "output", outPath)
	return nil
}

// keepInput writes the untouched input to stdout when the conversion was
// rejected, so a pipeline still gets an image. The rejection is still
// reported.
func keepInput(reason error, input []byte, opts cli.Options, env Env) error {
	if !opts.UsingStdout {
		return reason
	}
	if _, err := env.Stdout.Write(input); err != nil {
		return fail(CantWriteError, "cannot write to stdout: %w", err)
	}
	return reason
}

func readInput(path string, opts cli.Options, env Env) ([]byte, error) {
	if opts.UsingStdin && path == cli.StdinPath {
		return io.ReadAll(env.Stdin)
	}
	return os.ReadFile(path)
}

// loadMap takes the map image's colors as a fixed palette, quantizing them
// down when there are more than the color limit.
func loadMap(path string, s settings) ([]quant.Color, error) {
	img, err := readImageFile(path)
	if err != nil {
		return nil, fail(ReadError, "unable to read map image '%s': %w", path, err)
	}
	if palette := quant.PaletteFromImage(img, s.colors); palette != nil {
		return palette, nil
	}
	res, err := quant.Quantize(img, quant.Options{MaxColors: s.colors, Speed: s.speed})
	if err != nil {
		return nil, fail(ReadError, "unable to build palette from %s: %w", path, err)
	}
	return res.Palette, nil
}

func readImageFile(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pngio.Decode(f)
}

var errEmptyPath = errors.New("empty path")

// writeFileAtomic writes through a temporary file in the destination
// directory so a failed write never leaves a truncated image behind.
func writeFileAtomic(path string, data []byte) error {
	if path == "" {
		return errEmptyPath
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func displayName(path string) string {
	if path == cli.StdinPath {
		return "stdin"
	}
	return path
}
