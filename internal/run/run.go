package run

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chojs23/gopngquant/internal/cli"
	"github.com/chojs23/gopngquant/internal/ctxlog"
	"github.com/chojs23/gopngquant/internal/engine"
	"github.com/chojs23/gopngquant/internal/tui"
)

// Streams are the process streams a run uses.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Interactive reports whether Stderr is a terminal.
	Interactive bool
}

func Run(ctx context.Context, opts cli.Options) int {
	return RunWith(ctx, opts, Streams{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: isTTY(os.Stderr),
	})
}

// RunWith quantizes the files named by opts and returns the process exit code.
func RunWith(ctx context.Context, opts cli.Options, streams Streams) int {
	themeErr := tui.LoadTheme()

	// While the progress bar owns stderr, log lines are held back and written
	// once it has drawn its last frame.
	logs := &heldWriter{out: streams.Stderr, hold: showProgress(opts, streams)}
	logger := ctxlog.New(logs, opts.Verbose)
	ctx = ctxlog.WithLogger(ctx, logger)
	if themeErr != nil {
		logger.Warn("using default theme", "err", themeErr)
	}

	env := engine.Env{Stdin: streams.Stdin, Stdout: streams.Stdout}

	var progress *tui.Progress
	if logs.hold {
		progress = tui.StartProgress(ctx, streams.Stderr, len(opts.Files))
		env.Observer = progress
	}

	summary := engine.Main(ctx, opts, env)

	if progress != nil {
		if err := progress.Stop(); err != nil {
			logger.Warn("progress display failed", "err", err)
		}
	}
	logs.release()

	if summary.Failed > 0 {
		fmt.Fprintln(streams.Stderr, tui.Summary(summary.Total, summary.Failed))
	} else if opts.Verbose && summary.Total > 0 {
		fmt.Fprintln(streams.Stderr, tui.Success(summary.Total))
	}
	return int(summary.Status)
}

// showProgress keeps the bar off when it would interleave with log lines or
// when there is only a single file to report on.
func showProgress(opts cli.Options, streams Streams) bool {
	return streams.Interactive && !opts.Verbose && len(opts.Files) > 1
}

// heldWriter buffers writes while hold is set and passes them through
// otherwise.
type heldWriter struct {
	mu   sync.Mutex
	out  io.Writer
	hold bool
	buf  bytes.Buffer
}

func (w *heldWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hold {
		return w.buf.Write(p)
	}
	return w.out.Write(p)
}

// release writes everything held so far and stops holding.
func (w *heldWriter) release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hold = false
	w.buf.WriteTo(w.out)
}
