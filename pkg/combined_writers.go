package pkg

import (
	"io"
	"sync"

	"go.uber.org/multierr"
)

// CombinedWriter writes every message to all of its writers. A failing writer
// does not stop the others; the errors are combined.
type CombinedWriter struct {
	mu      sync.Mutex
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		writers: writers,
	}
}

// Write reports len(p) if at least one writer took the whole message.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	var err error
	delivered := false
	for _, w := range cw.writers {
		written, werr := w.Write(p)
		if werr == nil && written < len(p) {
			werr = io.ErrShortWrite
		}
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		delivered = true
	}

	if !delivered {
		return 0, err
	}
	return len(p), err
}

func (cw *CombinedWriter) WritersCount() int {
	return len(cw.writers)
}
