package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codecProbe struct {
	Name  string  `cbor:"name"`
	Value float64 `cbor:"value"`
	Flags uint32  `cbor:"flags"`
}

func TestPayloadCodecRoundTrip(t *testing.T) {
	in := codecProbe{Name: "gain", Value: 0.5, Flags: 3}

	data, err := EncodePayload(in)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var out codecProbe
	require.NoError(t, DecodePayload(data, &out))
	assert.Equal(t, in, out)
}

func TestPayloadCodecDeterministic(t *testing.T) {
	in := codecProbe{Name: "mix", Value: 1, Flags: 9}

	a, err := EncodePayload(in)
	require.NoError(t, err)
	b, err := EncodePayload(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPayloadCodecEmpty(t *testing.T) {
	data, err := EncodePayload(nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	// An empty payload decodes into nothing without touching the target.
	out := codecProbe{Name: "untouched"}
	require.NoError(t, DecodePayload(nil, &out))
	assert.Equal(t, "untouched", out.Name)
}

func TestMessageGet(t *testing.T) {
	payload, err := EncodePayload(codecProbe{Name: "depth", Value: -6})
	require.NoError(t, err)

	msg := Message{Kind: 101, Cookie: 5, Payload: payload}
	var out codecProbe
	require.NoError(t, msg.Get(&out))
	assert.Equal(t, "depth", out.Name)
	assert.Equal(t, -6.0, out.Value)
}
