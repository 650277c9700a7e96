package concat

import "github.com/goto/optimus-concat/pkg/flow"

type options struct {
	sources      []flow.Source
	maxListeners int
	scheduler    *Scheduler
}

// Option is a function that sets up the options for a concatenator.
type Option func(*options)

// WithSources supplies sources at construction time. They are queued
// for deferred wiring under the same policy as sources added right
// after construction.
func WithSources(sources ...flow.Source) Option {
	return func(o *options) {
		o.sources = append(o.sources, sources...)
	}
}

// WithMaxListeners bounds the output stream's inbound buffer, the
// capacity available to concurrently delivering sources. Zero or
// negative keeps the default.
func WithMaxListeners(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxListeners = n
		}
	}
}

// WithScheduler injects the deferred-task scheduler. The caller is
// then responsible for draining it (by ticking manually or running it
// in the background). Without this option the concatenator runs a
// scheduler of its own.
func WithScheduler(s *Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}
