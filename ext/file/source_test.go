package file_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goto/optimus-concat/ext/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func drain(t *testing.T, out <-chan any) []string {
	t.Helper()
	var got []string
	for {
		select {
		case v, ok := <-out:
			if !ok {
				return got
			}
			got = append(got, string(v.([]byte)))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out draining source")
		}
	}
}

func TestFileSource(t *testing.T) {
	t.Run("sends every line and ends", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "in.txt")
		require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644))

		// when
		src := file.NewSource(t.Context(), testLogger(), path)

		// then
		assert.Equal(t, []string{"one", "two", "three"}, drain(t, src.Out()))
		assert.NoError(t, src.Err())
	})
	t.Run("records an error for a missing file and still ends", func(t *testing.T) {
		src := file.NewSource(t.Context(), testLogger(), filepath.Join(t.TempDir(), "missing.txt"))

		assert.Empty(t, drain(t, src.Out()))
		assert.ErrorContains(t, src.Err(), "no such file")
	})
}
