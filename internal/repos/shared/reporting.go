package shared

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// Reporter emits formatted executor events to an underlying sink.
type Reporter interface {
	Successf(format string, args ...any)
	Failuref(format string, args ...any)
}

type writerReporter struct {
	writer       io.Writer
	successColor *color.Color
	failureColor *color.Color
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
// Success and failure lines are colored only when color output is enabled for the terminal.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil || writer == io.Discard {
		writer = os.Stderr
	}
	return writerReporter{
		writer:       writer,
		successColor: color.New(color.FgGreen),
		failureColor: color.New(color.FgRed),
	}
}

func (reporter writerReporter) Successf(format string, args ...any) {
	if reporter.writer == nil {
		return
	}
	reporter.successColor.Fprintf(reporter.writer, format, args...)
}

func (reporter writerReporter) Failuref(format string, args ...any) {
	if reporter.writer == nil {
		return
	}
	reporter.failureColor.Fprintf(reporter.writer, format, args...)
}
