package diag

import (
	"sync"
	"unsafe"

	"github.com/codefionn/hlbridge/internal/cbuf"
	"github.com/codefionn/hlbridge/internal/logger"
)

// Sink holds at most one undelivered error. Recording overwrites; draining
// always consumes, whether or not the message fits the caller's buffer.
type Sink struct {
	mu  sync.Mutex
	err error
}

// Record stores err as the last error, dropping any previous one, and logs
// err together with its full cause chain.
func (s *Sink) Record(err error) {
	if err == nil {
		return
	}

	log := logger.Global()
	log.Error("Setting LAST_ERROR: %s", err)
	for _, cause := range Chain(err)[1:] {
		log.Warn("Caused by: %s", cause)
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Len returns the message length plus one for the terminator, or 0 when no
// error is pending.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return 0
	}
	return len(s.err.Error()) + 1
}

// Pending reports whether an error is waiting to be drained.
func (s *Sink) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err != nil
}

// Take returns the pending error and clears it.
func (s *Sink) Take() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}

// DrainInto writes the pending message and a NUL terminator to buf.
//
// It returns the number of message bytes written, 0 when nothing is pending,
// or -1 when buf is nil (state untouched) or too small (error consumed).
func (s *Sink) DrainInto(buf unsafe.Pointer, capacity int32) int32 {
	if buf == nil {
		logger.Warn("A null pointer passed into last_error_message() as the buffer")
		return -1
	}

	err := s.Take()
	if err == nil {
		return 0
	}

	n, werr := cbuf.Write(buf, capacity, err.Error(), cbuf.Terminated)
	if werr != nil {
		logger.Warn("Buffer provided for writing the last error message is too small: %s", werr)
		return -1
	}
	return n
}
