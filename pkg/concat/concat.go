package concat

import (
	"context"
	errs "errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/goto/optimus-concat/pkg/flow"
	"github.com/goto/optimus-concat/pkg/sink"
	"github.com/pkg/errors"
)

// Concat composes zero or more sources into a single output stream.
// Sources can be attached and detached at runtime while the consumer
// sees one continuous stream. No ordering between sources is enforced:
// when several sources are ready at once, values reach the output in
// whatever order the runtime schedules the wiring goroutines. A source
// that produces greedily without ever blocking can starve its
// co-registered sources; that is a documented limitation of the
// concatenation model, not something this package works around.
//
// The output ends when the active set runs empty and closes terminally
// via Close. Sources are not owned: detaching or closing only tears
// down this concatenator's wiring, never the source itself.
type Concat struct {
	logger *slog.Logger
	sink   *sink.Stream
	sched  *Scheduler

	mu      sync.Mutex
	wires   map[flow.Source]*wire
	order   []flow.Source
	drained bool
	closed  bool
}

// wire is the forwarding path of a single registered source. The stop
// channel disconnects the pump without touching the source.
type wire struct {
	id   string
	src  flow.Source
	stop chan struct{}
	once sync.Once
}

func (w *wire) disconnect() {
	w.once.Do(func() {
		close(w.stop)
	})
}

// New creates a concatenator. Sources supplied with WithSources are
// registered immediately and wired on the next scheduler turn, exactly
// like sources added right after construction. Unless WithScheduler is
// given, a dedicated scheduler is run in the background until ctx is
// canceled.
func New(ctx context.Context, l *slog.Logger, opts ...Option) *Concat {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var sinkOpts []flow.Option
	if o.maxListeners > 0 {
		sinkOpts = append(sinkOpts, flow.WithBufferSize(o.maxListeners))
	}

	c := &Concat{
		logger: l.WithGroup("concat"),
		sink:   sink.NewStream(l, sinkOpts...),
		sched:  o.scheduler,
		wires:  make(map[flow.Source]*wire),
	}
	if c.sched == nil {
		c.sched = NewScheduler()
		go c.sched.Run(ctx)
	}

	c.mu.Lock()
	for _, src := range o.sources {
		c.register(src)
	}
	c.mu.Unlock()

	return c
}

// Add registers one or more sources. Slices of sources are flattened
// and handled per item. Each candidate must satisfy flow.Source,
// otherwise that item fails with an InvalidSourceError while the rest
// of the batch is still processed. Adding to a closed concatenator
// fails with a ClosedError, adding to a drained one with a
// DrainedError; in every failure case the active set is left exactly
// as it was for that item. Registration is synchronous but the actual
// forwarding wiring starts on the next scheduler turn.
func (c *Concat) Add(sources ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.WithStack(&ClosedError{})
	}

	var errAll error
	for _, v := range sources {
		errAll = errs.Join(errAll, c.add(v))
	}
	return errAll
}

// add handles a single Add item, recursing per element when the item
// is itself a sequence of candidates.
func (c *Concat) add(v any) error {
	switch vv := v.(type) {
	case nil:
		return errors.WithStack(&InvalidSourceError{Value: v})
	case []any:
		var errAll error
		for _, item := range vv {
			errAll = errs.Join(errAll, c.add(item))
		}
		return errAll
	case []flow.Source:
		var errAll error
		for _, item := range vv {
			errAll = errs.Join(errAll, c.add(item))
		}
		return errAll
	case flow.Source:
		if c.drained {
			return errors.WithStack(&DrainedError{})
		}
		c.register(vv)
		return nil
	default:
		return errors.WithStack(&InvalidSourceError{Value: v})
	}
}

// register puts the source in the active set and defers its wiring by
// one scheduler turn. Callers hold c.mu. Registering a current member
// again is a no-op, keeping the at-most-once membership invariant.
func (c *Concat) register(src flow.Source) {
	if _, ok := c.wires[src]; ok {
		return
	}
	w := &wire{
		id:   uuid.NewString()[:8],
		src:  src,
		stop: make(chan struct{}),
	}
	c.wires[src] = w
	c.order = append(c.order, src)
	c.logger.Debug(fmt.Sprintf("register: wire %s", w.id))
	c.sched.Defer(func() {
		c.startWire(w)
	})
}

// startWire begins forwarding for a wire, unless the source was
// removed or the concatenator closed between registration and this
// turn.
func (c *Concat) startWire(w *wire) {
	c.mu.Lock()
	if c.closed || c.wires[w.src] != w {
		c.mu.Unlock()
		c.logger.Debug(fmt.Sprintf("wire %s: gone before wiring", w.id))
		return
	}
	c.mu.Unlock()
	go c.pump(w)
}

// pump forwards the source's values into the output stream until the
// source is exhausted or the wire is disconnected. Natural end routes
// into the same removal path as an explicit Remove. Disconnection
// takes effect on the next delivery opportunity, never mid-delivery.
func (c *Concat) pump(w *wire) {
	for {
		select {
		case <-w.stop:
			return
		case v, ok := <-w.src.Out():
			if !ok {
				c.logger.Debug(fmt.Sprintf("wire %s: source ended", w.id))
				c.remove(w.src)
				return
			}
			if err := c.sink.In(v); err != nil {
				c.logger.Debug(fmt.Sprintf("wire %s: output ended, dropping delivery", w.id))
				return
			}
		}
	}
}

// Remove disconnects the source from the forwarding path and deletes
// it from the active set. Removing a source that is not a current
// member is a safe no-op. When the removal empties the active set the
// output stream ends.
func (c *Concat) Remove(src flow.Source) *Concat {
	c.remove(src)
	return c
}

// remove is the single removal path shared by Remove, natural source
// end, and external disconnection.
func (c *Concat) remove(src flow.Source) {
	c.mu.Lock()
	w, ok := c.wires[src]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.wires, src)
	if i := slices.IndexFunc(c.order, func(s flow.Source) bool { return s == src }); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	w.disconnect()
	empty := len(c.wires) == 0
	drain := empty && !c.drained
	if drain {
		c.drained = true
	}
	c.mu.Unlock()

	c.logger.Debug(fmt.Sprintf("remove: wire %s", w.id))
	if drain {
		c.logger.Debug("active set empty, ending output")
		c.sink.End()
	}
}

// Clear removes every current member, in registration order. On a
// non-empty set this always ends the output, because the active set
// runs empty.
func (c *Concat) Clear() *Concat {
	c.mu.Lock()
	srcs := slices.Clone(c.order)
	c.mu.Unlock()

	for _, src := range srcs {
		c.remove(src)
	}
	return c
}

// Close is the idempotent terminal operation. It permanently marks the
// concatenator closed, clears the active set (ending the output), and
// on the next scheduler turn quiesces the output stream and emits its
// terminal close.
func (c *Concat) Close() *Concat {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return c
	}
	c.closed = true
	c.mu.Unlock()

	c.Clear()

	c.mu.Lock()
	// a concatenator that never had members has nothing to drain, but
	// the output must still end before it closes
	if !c.drained {
		c.drained = true
		c.mu.Unlock()
		c.sink.End()
	} else {
		c.mu.Unlock()
	}

	c.sched.Defer(func() {
		c.logger.Debug("quiesce and close output")
		c.sink.Pause()
		c.sink.Close()
	})
	return c
}

// Out returns the consumer side of the output stream. It is closed
// exactly once, when the stream ends.
func (c *Concat) Out() <-chan any {
	return c.sink.Out()
}

// Closed reports the terminal close transition of the output stream.
func (c *Concat) Closed() <-chan struct{} {
	return c.sink.Closed()
}

// Err returns any runtime error recorded on the output stream. The
// concatenator never translates or swallows source and sink errors.
func (c *Concat) Err() error {
	return c.sink.Err()
}

// Sources returns the current members in registration order.
func (c *Concat) Sources() []flow.Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}

// Len returns the size of the active set.
func (c *Concat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.wires)
}
