package server_test

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/kvs/client"
	"github.com/rezkam/kvs/engine"
	"github.com/rezkam/kvs/server"
)

func TestServerRoundTripOverNetwork(t *testing.T) {
	dir := t.TempDir()

	eng, err := engine.Open(dir, engine.KindLog)
	require.NoError(t, err)
	defer eng.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := server.New(eng, nil)
	go srv.Serve(ln)

	c := client.New(ln.Addr().String())

	require.NoError(t, c.Set("name", "gopher"))

	value, ok, err := c.Get("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gopher", value)

	_, ok, err = c.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Remove("name"))

	err = c.Remove("name")
	assert.ErrorIs(t, err, client.ErrKeyNotFound)
}

// corruptEngine fails every Get with an error (standing in for a corrupted
// record rather than a miss), so the server never gets
// to build a response that could be mistaken for an ordinary miss.
type corruptEngine struct{ engine.Engine }

func (corruptEngine) Get(key string) (string, bool, error) {
	return "", false, errors.New("index pointed at a non-set record")
}

func TestServerClosesConnectionOnGetError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := server.New(corruptEngine{}, nil)
	go srv.Serve(ln)

	c := client.New(ln.Addr().String())

	_, _, err = c.Get("key")
	assert.Error(t, err)
}
