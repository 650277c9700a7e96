package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/goto/optimus-concat/ext/file"
	xhttp "github.com/goto/optimus-concat/ext/http"
	xio "github.com/goto/optimus-concat/ext/io"
	"github.com/goto/optimus-concat/internal/config"
	"github.com/goto/optimus-concat/internal/logger"
	"github.com/goto/optimus-concat/pkg/concat"
	"github.com/goto/optimus-concat/pkg/flow"
	"github.com/goto/optimus-concat/pkg/pipeline"
	"github.com/pkg/errors"
)

// run builds a concatenator over the given file and http sources and
// drains the combined stream to stdout.
func run(files, urls, envs []string) []error {
	// load config
	cfg, err := config.NewConfig(envs...)
	if err != nil {
		return []error{errors.WithStack(err)}
	}

	// set up logger
	l, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		return []error{errors.WithStack(err)}
	}

	// graceful shutdown
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFn()

	// create sources
	var sourceOpts []flow.Option
	if cfg.SourceBufferSize > 0 {
		sourceOpts = append(sourceOpts, flow.WithBufferSize(cfg.SourceBufferSize))
	}
	var sources []flow.Source
	for _, path := range files {
		sources = append(sources, file.NewSource(ctx, l, path, sourceOpts...))
	}
	for _, url := range urls {
		src, err := xhttp.NewSource(ctx, l, url, cfg.HTTPHeaders, sourceOpts...)
		if err != nil {
			return []error{errors.WithStack(err)}
		}
		sources = append(sources, src)
	}

	// compose sources into a single output stream
	cc := concat.New(ctx, l,
		concat.WithSources(sources...),
		concat.WithMaxListeners(cfg.MaxListeners),
	)

	// nothing to wait for without sources: end and close right away
	if len(sources) == 0 {
		cc.Close()
	}

	// drain the stream to stdout
	out := xio.NewSink(l, os.Stdout, cc.Out())
	p := pipeline.NewPipeline(l, cc, out)
	defer p.Close()

	select {
	// run pipeline until done
	case <-p.Run():
		errs := p.Errs()
		for _, src := range sources {
			if eg, ok := src.(interface{ Err() error }); ok {
				if err := eg.Err(); err != nil {
					errs = append(errs, err)
				}
			}
		}
		return errs
	// or until context is canceled
	case <-ctx.Done():
	}

	return nil
}
