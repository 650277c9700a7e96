package http

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/goto/optimus-concat/internal/model"
	xnet "github.com/goto/optimus-concat/internal/net"
	"github.com/goto/optimus-concat/pkg/flow"
	"github.com/goto/optimus-concat/pkg/source"
	"github.com/pkg/errors"
)

const connCheckTimeout = 5 * time.Second

// HTTPSource streams a JSON-lines response body, decoding each line
// into a record before sending it downstream.
type HTTPSource struct {
	*source.Common
	ctx      context.Context
	client   *http.Client
	endpoint string
	headers  map[string][]string
}

var _ flow.Source = (*HTTPSource)(nil)

// NewSource creates a new HTTP source. headerContent carries optional
// request headers, one "key: value" pair per line.
func NewSource(ctx context.Context, l *slog.Logger, endpoint string, headerContent string, opts ...flow.Option) (*HTTPSource, error) {
	headers := make(map[string][]string)
	sc := bufio.NewScanner(strings.NewReader(headerContent))
	for sc.Scan() {
		h := sc.Text()
		if strings.TrimSpace(h) == "" {
			continue
		}
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New("invalid header format, expected 'key: value'")
		}
		key := strings.TrimSpace(parts[0])
		headers[key] = append(headers[key], strings.TrimSpace(parts[1]))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := xnet.ConnCheck(endpoint, connCheckTimeout); err != nil {
		return nil, errors.WithStack(err)
	}

	hs := &HTTPSource{
		Common:   source.NewCommon(l.WithGroup("source").With("name", "http"), opts...),
		ctx:      ctx,
		client:   http.DefaultClient,
		endpoint: endpoint,
		headers:  headers,
	}
	hs.AddCleanFunc(func() {
		hs.client.CloseIdleConnections()
	})
	hs.RegisterProcess(hs.process)

	return hs, nil
}

func (hs *HTTPSource) process() error {
	req, err := http.NewRequestWithContext(hs.ctx, http.MethodGet, hs.endpoint, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	for key, values := range hs.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := hs.client.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status code: %d, expected: %d", resp.StatusCode, http.StatusOK)
	}

	sc := bufio.NewScanner(resp.Body)
	buf := make([]byte, 0, 4*1024)
	sc.Buffer(buf, 1024*1024)
	for sc.Scan() {
		raw := sc.Bytes()
		line := make([]byte, len(raw)) // scanner reuses its buffer
		copy(line, raw)

		record := model.NewRecord()
		if err := json.Unmarshal(line, &record); err != nil {
			return errors.WithStack(errors.Wrap(err, "failed to unmarshal record"))
		}
		if err := hs.SendContext(hs.ctx, record); err != nil {
			return err
		}
	}
	return errors.WithStack(sc.Err())
}
