package flow

// Outlet is an interface for a component that can send data.
type Outlet interface {
	Out() <-chan any
}

// Source is the capability a data producer must satisfy to be
// registered with a concatenator. Data is delivered incrementally
// through Out; natural exhaustion is signaled by closing the channel.
// Disconnection from a specific downstream is handled by the wiring
// that reads the channel, so the producer itself carries no detach
// method.
type Source interface {
	Outlet
}

// Sink is an interface for the owned output channel of a concatenator.
// It receives pushed data, supports an end transition (no more data
// will ever arrive, observed by consumers as Out closing) and a
// terminal close transition, and exposes a pause/resume gate for
// quiescing delivery.
type Sink interface {
	Outlet
	In(v any) error
	End()
	Close()
	Pause()
	Resume()
	Closed() <-chan struct{}
	Err() error
}

// Options is an interface for setting options on a component.
type Options interface {
	SetBufferSize(int)
}

// Option is a function that sets up the options for a component.
type Option func(Options)

// WithBufferSize sets the channel buffer size for a component.
func WithBufferSize(size int) Option {
	return func(o Options) {
		if size > 0 {
			o.SetBufferSize(size)
		}
	}
}
