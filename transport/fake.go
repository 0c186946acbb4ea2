package transport

import (
	"sync"
	"time"

	"zinkdriver/zerr"
)

// Fake is an in-memory Transport for tests, standing in for the real
// RFCOMM socket the way the teacher's own `notifications chan []byte`
// stood in for a live device. Writes are recorded for assertions; reads
// are served from a queue of canned responses pushed with Enqueue.
type Fake struct {
	mu       sync.Mutex
	writes   [][]byte
	pending  []byte
	inbox    chan []byte
	closed   bool
	closeErr error
}

// NewFake returns a ready-to-use fake transport.
func NewFake() *Fake {
	return &Fake{inbox: make(chan []byte, 64)}
}

// Enqueue makes b available to the next ReadExact call(s). Multiple
// enqueued buffers are concatenated in FIFO order, same as a real stream.
func (f *Fake) Enqueue(b []byte) {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.inbox <- cp
}

// Writes returns every buffer passed to Write so far, for assertions
// about chunking (§8 "chunked transfer of a buffer...").
func (f *Fake) Writes() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

func (f *Fake) Write(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return zerr.New(zerr.KindTransportClosed, "write on closed fake transport")
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	f.writes = append(f.writes, cp)
	return nil
}

func (f *Fake) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for len(f.pending) < n {
		select {
		case chunk := <-f.inbox:
			f.pending = append(f.pending, chunk...)
		case <-deadline.C:
			return nil, zerr.New(zerr.KindTransportTimeout, "fake transport read timed out")
		}
	}

	out := f.pending[:n]
	f.pending = f.pending[n:]
	return out, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return f.closeErr
	}
	f.closed = true
	return f.closeErr
}

func (f *Fake) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

// FailCloseWith makes the next Close() call return err, for testing
// close-error propagation. It does not affect idempotence: a second
// Close() after the first still returns the same recorded error.
func (f *Fake) FailCloseWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeErr = err
}
