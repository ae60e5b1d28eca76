package logging

import (
	"io"

	"go.uber.org/multierr"
)

// FanOutWriter writes every log line to all of its writers.
// A failing writer does not stop the others; errors are combined.
type FanOutWriter struct {
	writers []io.Writer
}

func NewFanOutWriter(writers ...io.Writer) *FanOutWriter {
	return &FanOutWriter{writers: writers}
}

func (fw *FanOutWriter) Write(p []byte) (int, error) {
	var err error
	failed := 0
	for _, w := range fw.writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Append(err, werr)
			failed++
		}
	}
	if failed == len(fw.writers) {
		return 0, err
	}
	return len(p), err
}
