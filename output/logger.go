package output

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// VerbosityLevel controls how much of the run the logger narrates.
type VerbosityLevel int

const (
	VerbosityQuiet VerbosityLevel = iota
	VerbosityDefault
	VerbosityVerbose
	VerbosityDebug
)

// Logger prints run progress to stderr, keeping stdout free for the
// violation/diagnostic formatters.
type Logger struct {
	verbosity VerbosityLevel
	writer    io.Writer
	isTTY     bool
}

func NewLogger(verbosity VerbosityLevel) *Logger {
	w := os.Stderr
	return &Logger{verbosity: verbosity, writer: w, isTTY: IsTTY(w)}
}

func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	return &Logger{verbosity: verbosity, writer: w, isTTY: IsTTY(w)}
}

func (l *Logger) GetWriter() io.Writer { return l.writer }
func (l *Logger) IsTTY() bool          { return l.isTTY }

// Progress logs high-level progress ("walking handlers...") shown from
// verbose level up.
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs fine-grained tracing shown only at debug level.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		fmt.Fprintf(l.writer, "[debug] "+format+"\n", args...)
	}
}

// Warning always prints, regardless of verbosity: diagnostics surfaced
// from the core are user-actionable.
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "warning: "+format+"\n", args...)
}

// NewProgressBar returns a file-walk progress bar, or nil when the
// logger's writer isn't a terminal or verbosity is quiet (matching the
// banner's own TTY gating).
func (l *Logger) NewProgressBar(total int, description string) *progressbar.ProgressBar {
	if !l.isTTY || l.verbosity == VerbosityQuiet || total <= 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(l.writer),
		progressbar.OptionClearOnFinish(),
	)
}
