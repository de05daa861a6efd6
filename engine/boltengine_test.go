package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltEngineRoundTrip(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindEmbedded)
	require.NoError(t, err)

	require.NoError(t, eng.Set("name", "gopher"))

	value, ok, err := eng.Get("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gopher", value)

	require.NoError(t, eng.Remove("name"))

	_, ok, err = eng.Get("name")
	require.NoError(t, err)
	assert.False(t, ok)

	err = eng.Remove("name")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, eng.Close())
}

func TestOpenEmbeddedThenLogMismatch(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindEmbedded)
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	_, err = Open(dir, KindLog)
	assert.ErrorIs(t, err, ErrEngineMismatch)
}
