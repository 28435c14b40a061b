// Package chario chains byte-chunk suppliers into a single logically
// infinite, position-addressable stream with one-byte pushback. It is the
// buffering layer shared by the csv and json packages: a Supplier produces
// successive chunks from an underlying io.Reader, and a Reader walks those
// chunks exposing the tight-loop, index-based access the tokenizers need.
package chario

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// ErrBufferTooSmall is returned by NewRotatingSupplier when poolSize does
// not leave room for one buffer in flight to the producer and one to the
// consumer.
var ErrBufferTooSmall = errors.New("chario: rotating supplier needs poolSize >= 2")

// Supplier produces successive chunks from an underlying source. Next
// returns (nil, nil) at end of stream. Close stops the supplier and
// releases any resources (including, for the async wrapper, the producer
// goroutine).
type Supplier interface {
	Next() ([]byte, error)
	Close() error
}

// rotatingSupplier issues one blocking read per Next call into one of a
// fixed pool of buffers, cycling through the pool so at most one buffer is
// "in flight" to the caller while others are free to be refilled. This
// keeps steady-state throughput high by avoiding an allocation per chunk.
type rotatingSupplier struct {
	src    io.Reader
	bufs   [][]byte
	idx    int
	closed bool
	eof    bool
}

// NewRotatingSupplier returns a Supplier that cycles through poolSize
// buffers of bufSize bytes. poolSize must be at least 2 so that one buffer
// can be filled while another is in use; callers layering this under an
// AsyncQueueSupplier should size poolSize at queueDepth+2 so production can
// stay ahead of consumption.
func NewRotatingSupplier(src io.Reader, bufSize, poolSize int) (Supplier, error) {
	if poolSize < 2 {
		return nil, ErrBufferTooSmall
	}
	bufs := make([][]byte, poolSize)
	for i := range bufs {
		bufs[i] = make([]byte, bufSize)
	}
	return &rotatingSupplier{src: src, bufs: bufs}, nil
}

func (s *rotatingSupplier) Next() ([]byte, error) {
	if s.closed || s.eof {
		return nil, nil
	}
	buf := s.bufs[s.idx]
	s.idx = (s.idx + 1) % len(s.bufs)

	n, err := io.ReadFull(s.src, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF):
		s.eof = true
		if n == 0 {
			return nil, nil
		}
		// Short read at EOF: hand back a freshly sized copy so the
		// rotating buffer remains free for (never-to-happen) further reuse.
		short := make([]byte, n)
		copy(short, buf[:n])
		return short, nil
	default:
		return nil, err
	}
}

func (s *rotatingSupplier) Close() error {
	s.closed = true
	return nil
}

// allocatingSupplier allocates a fresh buffer on every call, trading
// throughput for safety when a caller retains chunks past the next Next
// call (e.g. zero-copy field slices that must remain valid indefinitely).
type allocatingSupplier struct {
	src     io.Reader
	bufSize int
	closed  bool
	eof     bool
}

// NewAllocatingSupplier returns a Supplier that allocates a new bufSize
// buffer for every chunk.
func NewAllocatingSupplier(src io.Reader, bufSize int) Supplier {
	return &allocatingSupplier{src: src, bufSize: bufSize}
}

func (s *allocatingSupplier) Next() ([]byte, error) {
	if s.closed || s.eof {
		return nil, nil
	}
	buf := make([]byte, s.bufSize)
	n, err := io.ReadFull(s.src, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF):
		s.eof = true
		if n == 0 {
			return nil, nil
		}
		return buf[:n], nil
	default:
		return nil, err
	}
}

func (s *allocatingSupplier) Close() error {
	s.closed = true
	return nil
}

// utf8BOM is the three-byte UTF-8 byte-order mark some producers (notably
// Excel and other Windows tooling) still prepend to text files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomSkippingSupplier strips a leading UTF-8 byte-order mark from the very
// first chunk an upstream Supplier produces. It never looks past the first
// chunk, which is sufficient for every bufSize the csv/json packages use in
// practice (a BOM spanning a chunk boundary would require a buffer smaller
// than 3 bytes).
type bomSkippingSupplier struct {
	upstream Supplier
	checked  bool
}

// SkipBOM wraps upstream so that a leading UTF-8 byte-order mark is removed
// before any Reader built on top of it ever sees it.
func SkipBOM(upstream Supplier) Supplier {
	return &bomSkippingSupplier{upstream: upstream}
}

func (s *bomSkippingSupplier) Next() ([]byte, error) {
	buf, err := s.upstream.Next()
	if !s.checked {
		s.checked = true
		if err == nil && len(buf) >= len(utf8BOM) && bytes.Equal(buf[:len(utf8BOM)], utf8BOM) {
			buf = buf[len(utf8BOM):]
		}
	}
	return buf, err
}

func (s *bomSkippingSupplier) Close() error {
	return s.upstream.Close()
}

// asyncMsg is the item type flowing over the async supplier's queue.
type asyncMsg struct {
	buf  []byte
	err  error
	done bool
}

// asyncSupplier decouples reading bytes (in a dedicated producer goroutine)
// from parsing them (in the consumer). It is the Go analogue of the
// source's producer-thread-plus-bounded-queue pattern: a single goroutine
// pulls from an upstream Supplier and offers to a depth-Q channel; a
// sentinel message marks normal end of stream, and any error the producer
// encounters is captured once and re-delivered to the consumer's next
// call.
type asyncSupplier struct {
	upstream   Supplier
	queue      chan asyncMsg
	stop       chan struct{}
	done       chan struct{}
	putTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// DefaultPutTimeout bounds how long the producer goroutine will block
// trying to hand a chunk to a consumer that has stopped reading without
// closing, so the goroutine cannot wedge forever.
const DefaultPutTimeout = 5 * time.Second

// NewAsyncSupplier wraps upstream in a producer goroutine feeding a bounded
// queue of the given depth. Close stops the producer, drains the queue,
// closes upstream, and waits for the goroutine to exit.
func NewAsyncSupplier(upstream Supplier, queueDepth int) Supplier {
	return NewAsyncSupplierTimeout(upstream, queueDepth, DefaultPutTimeout)
}

// NewAsyncSupplierTimeout is NewAsyncSupplier with an explicit put timeout.
func NewAsyncSupplierTimeout(upstream Supplier, queueDepth int, putTimeout time.Duration) Supplier {
	s := &asyncSupplier{
		upstream:   upstream,
		queue:      make(chan asyncMsg, queueDepth),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		putTimeout: putTimeout,
	}
	go s.produce()
	return s
}

func (s *asyncSupplier) produce() {
	defer close(s.done)
	for {
		buf, err := s.upstream.Next()
		var msg asyncMsg
		switch {
		case err != nil:
			msg = asyncMsg{err: err}
		case buf == nil:
			msg = asyncMsg{done: true}
		default:
			msg = asyncMsg{buf: buf}
		}

		if !s.offer(msg) {
			return
		}
		if msg.done || msg.err != nil {
			return
		}
	}
}

// offer hands msg to the consumer, giving up (and reporting failure) if the
// consumer neither takes it nor closes within putTimeout.
func (s *asyncSupplier) offer(msg asyncMsg) bool {
	timer := time.NewTimer(s.putTimeout)
	defer timer.Stop()
	select {
	case s.queue <- msg:
		return true
	case <-s.stop:
		return false
	case <-timer.C:
		return false
	}
}

func (s *asyncSupplier) Next() ([]byte, error) {
	select {
	case msg := <-s.queue:
		if msg.err != nil {
			return nil, msg.err
		}
		if msg.done {
			return nil, nil
		}
		return msg.buf, nil
	case <-s.done:
		// Producer exited without a final message (closed concurrently).
		return nil, nil
	}
}

func (s *asyncSupplier) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		for len(s.queue) > 0 {
			<-s.queue
		}
		s.closeErr = s.upstream.Close()
	})
	return s.closeErr
}
