package http_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xhttp "github.com/goto/optimus-concat/ext/http"
	"github.com/goto/optimus-concat/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func drain(t *testing.T, out <-chan any) []*model.Record {
	t.Helper()
	var got []*model.Record
	for {
		select {
		case v, ok := <-out:
			if !ok {
				return got
			}
			got = append(got, v.(*model.Record))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out draining source")
		}
	}
}

func TestHTTPSource(t *testing.T) {
	t.Run("streams json lines as records", func(t *testing.T) {
		// given
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{\"id\":1}\n{\"id\":2}\n"))
		}))
		defer srv.Close()

		// when
		src, err := xhttp.NewSource(t.Context(), testLogger(), srv.URL, "")
		require.NoError(t, err)
		records := drain(t, src.Out())

		// then
		require.Len(t, records, 2)
		id, ok := records[0].Get("id")
		assert.True(t, ok)
		assert.EqualValues(t, 1, id)
		assert.NoError(t, src.Err())
	})
	t.Run("forwards configured headers", func(t *testing.T) {
		// given
		var gotHeader string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeader = r.Header.Get("Authorization")
			w.Write([]byte("{}\n"))
		}))
		defer srv.Close()

		// when
		src, err := xhttp.NewSource(t.Context(), testLogger(), srv.URL, "Authorization: Bearer token")
		require.NoError(t, err)
		drain(t, src.Out())

		// then
		assert.Equal(t, "Bearer token", gotHeader)
	})
	t.Run("records an error on a non-200 response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		src, err := xhttp.NewSource(t.Context(), testLogger(), srv.URL, "")
		require.NoError(t, err)
		drain(t, src.Out())

		assert.ErrorContains(t, src.Err(), "unexpected status code")
	})
	t.Run("rejects malformed header content", func(t *testing.T) {
		_, err := xhttp.NewSource(t.Context(), testLogger(), "http://localhost", "not-a-header")

		assert.ErrorContains(t, err, "invalid header format")
	})
}
