package net_test

import (
	"net"
	"testing"
	"time"

	xnet "github.com/goto/optimus-concat/internal/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnCheck(t *testing.T) {
	t.Run("succeeds against a listening address", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		assert.NoError(t, xnet.ConnCheck(ln.Addr().String(), time.Second))
	})
	t.Run("succeeds against a listening url", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		assert.NoError(t, xnet.ConnCheck("http://"+ln.Addr().String(), time.Second))
	})
	t.Run("rejects an unsupported scheme", func(t *testing.T) {
		err := xnet.ConnCheck("ftp://localhost", time.Second)

		assert.ErrorContains(t, err, "unsupported scheme")
	})
	t.Run("rejects a bare host without port", func(t *testing.T) {
		err := xnet.ConnCheck("localhost", time.Second)

		assert.Error(t, err)
	})
}
