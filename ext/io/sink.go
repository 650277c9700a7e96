package io

import (
	errs "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/djherbis/buffer"
	"github.com/djherbis/nio/v3"
	"github.com/goccy/go-json"
	"github.com/klauspost/readahead"
	"github.com/pkg/errors"
)

// IOSink drains an object-mode channel into an io.Writer, one value
// per line. Values flow through an in-memory buffered pipe with a
// readahead reader on the draining side, so a slow writer does not
// stall the channel for longer than the pipe capacity.
type IOSink struct {
	logger *slog.Logger
	dst    io.Writer
	in     <-chan any
	done   chan uint8

	mu  sync.Mutex
	err error
}

// NewSink creates a new IO sink and starts draining immediately.
func NewSink(l *slog.Logger, dst io.Writer, in <-chan any) *IOSink {
	s := &IOSink{
		logger: l.WithGroup("sink").With("name", "io"),
		dst:    dst,
		in:     in,
		done:   make(chan uint8),
	}
	go s.process()
	return s
}

func (s *IOSink) process() {
	defer close(s.done)

	buf := buffer.New(readahead.DefaultBufferSize)
	pr, pw := nio.Pipe(buf)
	ra, err := readahead.NewReaderSize(pr, 4, readahead.DefaultBufferSize)
	if err != nil {
		s.setErr(errors.WithStack(err))
		return
	}

	copied := make(chan error, 1)
	go func() {
		_, err := io.Copy(s.dst, ra)
		copied <- err
	}()

	for v := range s.in {
		line, err := marshal(v)
		if err != nil {
			s.setErr(err)
			continue
		}
		if _, err := pw.Write(append(line, '\n')); err != nil {
			s.setErr(errors.WithStack(err))
			break
		}
	}
	pw.Close()

	if err := <-copied; err != nil {
		s.setErr(errors.WithStack(err))
	}
	s.logger.Debug("drain done")
}

// Wait blocks until the inbound channel is closed and every value has
// been written out.
func (s *IOSink) Wait() {
	<-s.done
}

// Err returns the error recorded while draining, if any.
func (s *IOSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *IOSink) setErr(err error) {
	s.logger.Error(fmt.Sprintf("sink error: %s", err.Error()))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = errs.Join(s.err, err)
}

// marshal renders a channel value as a single output line. Byte slices
// and strings pass through, anything else is JSON-encoded.
func marshal(v any) ([]byte, error) {
	switch vv := v.(type) {
	case []byte:
		return vv, nil
	case string:
		return []byte(vv), nil
	default:
		b, err := json.Marshal(vv)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return b, nil
	}
}
