package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogEngineBasicRoundTrip(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindLog)
	require.NoError(t, err)

	require.NoError(t, eng.Set("name", "gopher"))

	value, ok, err := eng.Get("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gopher", value)

	require.NoError(t, eng.Close())
}

func TestLogEngineOverwrite(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindLog)
	require.NoError(t, err)

	require.NoError(t, eng.Set("name", "gopher"))
	require.NoError(t, eng.Set("name", "badger"))

	value, ok, err := eng.Get("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "badger", value)

	require.NoError(t, eng.Close())
}

func TestLogEngineGetMissing(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindLog)
	require.NoError(t, err)

	_, ok, err := eng.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, eng.Close())
}

func TestLogEngineRemove(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindLog)
	require.NoError(t, err)

	require.NoError(t, eng.Set("name", "gopher"))
	require.NoError(t, eng.Remove("name"))

	_, ok, err := eng.Get("name")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, eng.Close())
}

func TestLogEngineRemoveMissingKey(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindLog)
	require.NoError(t, err)

	err = eng.Remove("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, eng.Close())
}

func TestLogEnginePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindLog)
	require.NoError(t, err)
	require.NoError(t, eng.Set("name", "gopher"))
	require.NoError(t, eng.Close())

	reopened, err := Open(dir, KindLog)
	require.NoError(t, err)

	value, ok, err := reopened.Get("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gopher", value)

	require.NoError(t, reopened.Close())
}

func TestLogEngineCompactionReducesFileSize(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindLog, WithCompactionThreshold(0.5))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, eng.Set("key", "value"))
	}

	logEng := eng.(*LogEngine)
	assert.Less(t, logEng.redundant, 20)

	// Every Set after the first overwrites the single live key and pushes
	// redundant/live past 0.5, so the log ends up holding one record.
	record, err := EncodeCommand(SetCommand("key", "value"))
	require.NoError(t, err)
	fi, err := os.Stat(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Equal(t, int64(len(record)+1), fi.Size())

	value, ok, err := eng.Get("key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	require.NoError(t, eng.Close())
}

func TestLogEngineSecondOpenIsLocked(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindLog)
	require.NoError(t, err)

	_, err = Open(dir, KindLog)
	assert.Error(t, err)

	require.NoError(t, eng.Close())
}

func TestOpenEngineMismatch(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, KindLog)
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	_, err = Open(dir, KindEmbedded)
	assert.ErrorIs(t, err, ErrEngineMismatch)
}
