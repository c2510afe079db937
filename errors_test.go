package guibridge

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeErrorMessages(t *testing.T) {
	cases := map[ErrorType]string{
		ErrorTransport: "transport failed",
		ErrorSpawn:     "gui spawn failed",
		ErrorProtocol:  "protocol violation",
		ErrorCanceled:  "canceled",
		ErrorClosed:    "channel closed",
	}
	for typ, want := range cases {
		err := &BridgeError{Type: typ}
		assert.Equal(t, want, err.Error())

		err = &BridgeError{Type: typ, Message: "detail"}
		assert.Equal(t, want+": detail", err.Error())
	}
}

func TestBridgeErrorUnwrap(t *testing.T) {
	err := spawnError(io.ErrUnexpectedEOF, "start %s", "gui")
	require.Equal(t, ErrorSpawn, err.Type)
	assert.Equal(t, "gui spawn failed: start gui", err.Error())
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestSpawnFailureIsBridgeError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GuiExecutable = "/definitely/not/a/binary"

	_, _, err := spawnChild(&cfg)
	require.Error(t, err)
	var berr *BridgeError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ErrorSpawn, berr.Type)
}
