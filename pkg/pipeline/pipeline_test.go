package pipeline_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/goto/optimus-concat/pkg/concat"
	"github.com/goto/optimus-concat/pkg/pipeline"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// chanDrainer consumes the concatenator output and remembers it.
type chanDrainer struct {
	in   <-chan any
	got  []any
	done chan struct{}
	err  error
}

func newChanDrainer(in <-chan any) *chanDrainer {
	d := &chanDrainer{in: in, done: make(chan struct{})}
	go func() {
		defer close(d.done)
		for v := range d.in {
			d.got = append(d.got, v)
		}
	}()
	return d
}

func (d *chanDrainer) Wait()      { <-d.done }
func (d *chanDrainer) Err() error { return d.err }

type endedSource struct{ c chan any }

func newEndedSource(values ...any) *endedSource {
	s := &endedSource{c: make(chan any, len(values))}
	for _, v := range values {
		s.c <- v
	}
	close(s.c)
	return s
}

func (s *endedSource) Out() <-chan any { return s.c }

func TestPipeline(t *testing.T) {
	t.Run("runs until the output is fully drained", func(t *testing.T) {
		// given
		cc := concat.New(t.Context(), testLogger(),
			concat.WithSources(newEndedSource("a"), newEndedSource("b")),
		)
		out := newChanDrainer(cc.Out())
		p := pipeline.NewPipeline(testLogger(), cc, out)
		defer p.Close()

		// when
		select {
		case <-p.Run():
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for pipeline")
		}

		// then
		assert.ElementsMatch(t, []any{"a", "b"}, out.got)
		assert.Empty(t, p.Errs())
	})
	t.Run("collects drainer errors", func(t *testing.T) {
		cc := concat.New(t.Context(), testLogger())
		cc.Close()
		out := newChanDrainer(cc.Out())
		out.err = assert.AnError
		p := pipeline.NewPipeline(testLogger(), cc, out)

		<-p.Run()

		assert.Len(t, p.Errs(), 1)
	})
}
