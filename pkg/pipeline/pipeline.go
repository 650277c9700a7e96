package pipeline

import (
	"log/slog"

	"github.com/goto/optimus-concat/pkg/concat"
)

// Drainer is the consumer side of a pipeline: it drains the
// concatenator's output and reports when it is done.
type Drainer interface {
	Wait()
	Err() error
}

// Pipeline connects a concatenator to a drainer and runs until the
// output is fully consumed.
type Pipeline struct {
	logger *slog.Logger
	concat *concat.Concat
	out    Drainer
}

// NewPipeline creates a new pipeline.
func NewPipeline(l *slog.Logger, cc *concat.Concat, out Drainer) *Pipeline {
	return &Pipeline{
		logger: l,
		concat: cc,
		out:    out,
	}
}

// Run runs the pipeline until the drainer has consumed the whole
// output stream.
func (p *Pipeline) Run() <-chan uint8 {
	done := make(chan uint8)
	go func() {
		defer close(done)
		p.out.Wait()
	}()
	return done
}

// Errs returns the errors recorded on the output stream and drainer.
func (p *Pipeline) Errs() []error {
	var errs []error
	if err := p.concat.Err(); err != nil {
		errs = append(errs, err)
	}
	if err := p.out.Err(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// Close closes the concatenator gracefully.
func (p *Pipeline) Close() {
	p.concat.Close()
}
