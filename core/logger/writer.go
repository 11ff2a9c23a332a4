package logger

import (
	"errors"
	"io"
	"os"
	"sync"
)

// lockedWriter serialises whole log lines to every sink.
type lockedWriter struct {
	mu    sync.Mutex
	sinks []io.Writer
	err   error
}

func newLockedWriter(writers ...io.Writer) *lockedWriter {
	sinks := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			sinks = append(sinks, w)
		}
	}
	return &lockedWriter{sinks: sinks}
}

// Write sends p to all sinks. The first sink error is sticky.
func (w *lockedWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

// Sync flushes file-backed sinks.
func (w *lockedWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, sink := range w.sinks {
		f, ok := sink.(*os.File)
		if !ok || f == os.Stdout || f == os.Stderr {
			continue
		}
		if err := f.Sync(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
