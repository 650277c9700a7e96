package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goto/optimus-concat/pkg/flow"
	"github.com/pkg/errors"
)

// Common is a source that provides common functionality.
// It is used as a base for concrete sources: a concrete source embeds
// it, registers a process function, and sends values with Send. The
// outbound channel is closed when the process returns, which is the
// natural-end signal downstream wiring observes.
type Common struct {
	logger     *slog.Logger
	c          chan any
	mu         sync.Mutex
	err        error
	cleanFuncs []func()
}

var _ flow.Source = (*Common)(nil)

// NewCommon creates a new common source.
func NewCommon(l *slog.Logger, opts ...flow.Option) *Common {
	common := &Common{
		logger:     l,
		c:          make(chan any),
		cleanFuncs: []func(){},
	}
	// apply options
	for _, opt := range opts {
		opt(common)
	}
	return common
}

func (common *Common) SetBufferSize(size int) {
	common.c = make(chan any, size)
}

func (common *Common) Out() <-chan any {
	return common.c
}

// Logger returns the logger for logging.
func (common *Common) Logger() *slog.Logger {
	return common.logger
}

// Err returns the process error, if any.
func (common *Common) Err() error {
	common.mu.Lock()
	defer common.mu.Unlock()
	return common.err
}

// Close runs the clean functions of the source.
func (common *Common) Close() {
	common.logger.Debug("close")
	for _, clean := range common.cleanFuncs {
		clean()
	}
}

// Send sends a value to the outbound channel.
// It provides a way to send data without exposing the channel itself.
func (common *Common) Send(v any) {
	common.c <- v
}

// SendContext sends a value to the outbound channel, giving up when
// the context is canceled.
func (common *Common) SendContext(ctx context.Context, v any) error {
	select {
	case common.c <- v:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

// AddCleanFunc adds a clean function to the source.
// Clean functions are called when the source is closed
// whether it is closed gracefully or due to an error.
func (common *Common) AddCleanFunc(f func()) {
	common.cleanFuncs = append(common.cleanFuncs, f)
}

// RegisterProcess registers a process function that is run in a
// goroutine. The process function should produce data using Send; the
// outbound channel is closed once it returns, regardless of error, so
// downstream always observes an end.
func (common *Common) RegisterProcess(f func() error) {
	go func() {
		defer func() {
			common.logger.Debug("process done")
			close(common.c)
		}()
		if err := f(); err != nil {
			common.logger.Error(fmt.Sprintf("process error: %s", err.Error()))
			common.mu.Lock()
			common.err = errors.WithStack(err)
			common.mu.Unlock()
		}
	}()
}
