package log

import (
	"os"
	"sync"
)

// Writer is the destination log records are written to.
type Writer struct {
	writeLock sync.Mutex
	isStdout  bool
	file      *os.File
}

// newWriter returns a writer to stdout or to the kernel log. If
// /dev/kmsg cannot be opened, it falls back to stderr.
func newWriter(toStdout bool) *Writer {
	if toStdout {
		return &Writer{
			file:     os.Stdout,
			isStdout: true,
		}
	}

	kmsg, err := os.OpenFile("/dev/kmsg", os.O_WRONLY, 0)
	if err != nil {
		return &Writer{file: os.Stderr}
	}
	return &Writer{file: kmsg}
}

// Write writes the buffer to the writer.
// The kernel log accepts at most one record per write.
func (w *Writer) Write(buf []byte) (int, error) {
	// No need to lock in stdout context.
	if !w.isStdout {
		w.writeLock.Lock()
		defer w.writeLock.Unlock()
	}

	return w.file.Write(buf)
}

// IsStdout returns whether the writer was initialized with stdout.
func (w *Writer) IsStdout() bool {
	return w != nil && w.isStdout
}

// Close closes the writer.
func (w *Writer) Close() {
	if w != nil && !w.isStdout {
		_ = w.file.Close()
	}
}
