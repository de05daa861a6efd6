package protocol

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/kvs/engine"
)

func TestCommandFramingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	cmd := engine.SetCommand("name", "gopher")

	require.NoError(t, WriteCommand(&buf, cmd))
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])

	decoded, err := ReadCommand(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, cmd, decoded)
}

func TestResponseFramingRoundTrip(t *testing.T) {
	cases := []Response{
		GetFound("gopher"),
		GetMissing(),
		SetSuccess(),
		SetFailure("disk full"),
		RemoveSuccess(),
		RemoveFailure("key not found"),
	}

	for _, resp := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteResponse(&buf, resp))

		decoded, err := ReadResponse(bufio.NewReader(&buf))
		require.NoError(t, err)
		assert.Equal(t, resp, decoded)
	}
}

func TestReadCommandMalformedIsProtocolError(t *testing.T) {
	buf := bytes.NewBufferString("not json\n")
	_, err := ReadCommand(bufio.NewReader(buf))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestReadCommandOnClosedConnectionIsEOF(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	_, err := ReadCommand(bufio.NewReader(buf))
	assert.ErrorIs(t, err, io.EOF)
}
