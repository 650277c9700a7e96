package file

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/goto/optimus-concat/pkg/flow"
	"github.com/goto/optimus-concat/pkg/source"
	"github.com/pkg/errors"
)

// FileSource reads a file line by line and sends each line downstream.
type FileSource struct {
	*source.Common
	ctx  context.Context
	path string
}

var _ flow.Source = (*FileSource)(nil)

// NewSource creates a new file source and starts reading immediately.
func NewSource(ctx context.Context, l *slog.Logger, path string, opts ...flow.Option) *FileSource {
	fs := &FileSource{
		Common: source.NewCommon(l.WithGroup("source").With("name", "file"), opts...),
		ctx:    ctx,
		path:   path,
	}
	fs.RegisterProcess(fs.process)
	return fs
}

func (fs *FileSource) process() error {
	f, err := os.Open(fs.path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	buf := make([]byte, 0, 4*1024)
	sc.Buffer(buf, 1024*1024)
	for sc.Scan() {
		raw := sc.Bytes()
		line := make([]byte, len(raw)) // scanner reuses its buffer
		copy(line, raw)
		if err := fs.SendContext(fs.ctx, line); err != nil {
			return err
		}
	}
	return errors.WithStack(sc.Err())
}
