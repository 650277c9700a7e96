package sink

import (
	errs "errors"
	"log/slog"
	"sync"

	"github.com/goto/optimus-concat/pkg/flow"
	"github.com/pkg/errors"
)

// ErrEnded is returned by In when the stream has already ended or
// closed and the pushed value cannot be delivered.
var ErrEnded = errs.New("sink: stream already ended")

// Stream is an object-mode output channel with an explicit lifecycle.
// Producers push values with In; a single consumer reads them from Out.
// End marks that no more data will ever arrive (Out is closed once all
// buffered values are delivered), Close is the terminal transition, and
// Pause/Resume gate delivery so the stream can be quiesced before
// closing. All transitions are idempotent.
type Stream struct {
	logger *slog.Logger

	in  chan any
	out chan any

	mu     sync.Mutex
	gate   chan struct{} // closed while flowing, open (blocking) while paused
	err    error
	ended  chan struct{}
	closed chan struct{}

	endOnce   sync.Once
	closeOnce sync.Once
}

var _ flow.Sink = (*Stream)(nil)

// NewStream creates a new stream. The internal buffer is unbuffered by
// default; use flow.WithBufferSize to bound producer blocking.
func NewStream(l *slog.Logger, opts ...flow.Option) *Stream {
	flowing := make(chan struct{})
	close(flowing)

	s := &Stream{
		logger: l.WithGroup("sink"),
		in:     make(chan any),
		out:    make(chan any),
		gate:   flowing,
		ended:  make(chan struct{}),
		closed: make(chan struct{}),
	}
	// apply options
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// SetBufferSize sets the buffer size of the inbound channel.
func (s *Stream) SetBufferSize(size int) {
	s.in = make(chan any, size)
}

// In pushes a value into the stream. It blocks while the stream is
// paused or the buffer is full, and returns ErrEnded if the stream
// ends or closes before the value is accepted.
func (s *Stream) In(v any) error {
	select {
	case <-s.ended:
		return errors.WithStack(ErrEnded)
	default:
	}
	select {
	case s.in <- v:
		return nil
	case <-s.ended:
		return errors.WithStack(ErrEnded)
	case <-s.closed:
		return errors.WithStack(ErrEnded)
	}
}

// Out returns the consumer side of the stream. It is closed exactly
// once, after the last delivered value, when the stream ends.
func (s *Stream) Out() <-chan any {
	return s.out
}

// End marks the stream as ended. Values already accepted by In are
// still delivered, then Out is closed. Safe to call more than once.
func (s *Stream) End() {
	s.endOnce.Do(func() {
		s.logger.Debug("end")
		close(s.ended)
	})
}

// Close is the terminal transition. It ends the stream if it has not
// ended yet and releases the delivery loop even when paused.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		s.logger.Debug("close")
		s.End()
		close(s.closed)
	})
}

// Closed reports the terminal transition. The returned channel is
// closed once Close has been called.
func (s *Stream) Closed() <-chan struct{} {
	return s.closed
}

// Pause suspends delivery to the consumer. Producers calling In block
// until Resume or Close.
func (s *Stream) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.gate:
		s.logger.Debug("pause")
		s.gate = make(chan struct{})
	default:
		// already paused
	}
}

// Resume lifts a previous Pause.
func (s *Stream) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.gate:
		// already flowing
	default:
		s.logger.Debug("resume")
		close(s.gate)
	}
}

// Err returns the error recorded on the stream, if any.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetErr records a runtime error on the stream. Errors are joined, not
// replaced, so none is lost.
func (s *Stream) SetErr(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = errs.Join(s.err, err)
}

// run moves accepted values from the inbound buffer to the consumer,
// honoring the pause gate. On End it drains what is already buffered,
// then closes Out. On Close it stops delivering immediately.
func (s *Stream) run() {
	defer close(s.out)
	for {
		s.mu.Lock()
		gate := s.gate
		s.mu.Unlock()
		select {
		case <-gate:
		case <-s.closed:
			return
		}

		select {
		case v := <-s.in:
			select {
			case s.out <- v:
			case <-s.closed:
				return
			}
		case <-s.ended:
			s.drain()
			return
		case <-s.closed:
			return
		}
	}
}

// drain delivers values that were accepted before the end transition.
func (s *Stream) drain() {
	for {
		select {
		case v := <-s.in:
			select {
			case s.out <- v:
			case <-s.closed:
				return
			}
		case <-s.closed:
			return
		default:
			return
		}
	}
}
