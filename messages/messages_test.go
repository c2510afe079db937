package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machinefabric/guibridge-go/wire"
)

func TestKindWireValues(t *testing.T) {
	// Shipped kinds are frozen; renumbering breaks peers in the field.
	if KindDefineParameterRequest != 100 {
		t.Errorf("DefineParameterRequest must be 100, got %d", KindDefineParameterRequest)
	}
	if KindParameterValueRequest != 101 {
		t.Errorf("ParameterValueRequest must be 101, got %d", KindParameterValueRequest)
	}
	if KindUpdateTransportRequest != 102 {
		t.Errorf("UpdateTransportRequest must be 102, got %d", KindUpdateTransportRequest)
	}
	if KindSubscribeToTransportRequest != 103 {
		t.Errorf("SubscribeToTransportRequest must be 103, got %d", KindSubscribeToTransportRequest)
	}
	if KindAdjustRequest != 104 {
		t.Errorf("AdjustRequest must be 104, got %d", KindAdjustRequest)
	}
	if KindSizeRequest != 105 {
		t.Errorf("SizeRequest must be 105, got %d", KindSizeRequest)
	}
	if KindSizeResponse != 106 {
		t.Errorf("SizeResponse must be 106, got %d", KindSizeResponse)
	}
	if KindDestroyRequest != 117 {
		t.Errorf("DestroyRequest must be 117, got %d", KindDestroyRequest)
	}
	if KindDestroyResponse != 118 {
		t.Errorf("DestroyResponse must be 118, got %d", KindDestroyResponse)
	}
}

func TestKindClassification(t *testing.T) {
	responses := []wire.Kind{
		KindSizeResponse, KindSetScaleResponse, KindAttachResponse,
		KindShowResponse, KindHideResponse, KindDestroyResponse,
	}
	for _, k := range responses {
		assert.True(t, IsResponseKind(k), "%s should be a response kind", KindName(k))
	}

	requests := []wire.Kind{
		KindDefineParameterRequest, KindParameterValueRequest,
		KindUpdateTransportRequest, KindSubscribeToTransportRequest,
		KindAdjustRequest, KindSizeRequest, KindSetScaleRequest,
		KindAttachX11Request, KindAttachWin32Request, KindAttachCocoaRequest,
		KindShowRequest, KindHideRequest, KindDestroyRequest,
	}
	for _, k := range requests {
		assert.False(t, IsResponseKind(k), "%s should not be a response kind", KindName(k))
	}

	assert.False(t, IsKnownKind(0))
	assert.False(t, IsKnownKind(99))
	assert.False(t, IsKnownKind(kindEnd))
	assert.True(t, IsKnownKind(KindAdjustRequest))
}

func TestResponseKindMapping(t *testing.T) {
	cases := map[wire.Kind]wire.Kind{
		KindSizeRequest:        KindSizeResponse,
		KindSetScaleRequest:    KindSetScaleResponse,
		KindAttachX11Request:   KindAttachResponse,
		KindAttachWin32Request: KindAttachResponse,
		KindAttachCocoaRequest: KindAttachResponse,
		KindShowRequest:        KindShowResponse,
		KindHideRequest:        KindHideResponse,
		KindDestroyRequest:     KindDestroyResponse,
	}
	for rq, want := range cases {
		got, ok := ResponseKindFor(rq)
		require.True(t, ok, "%s must declare a response", KindName(rq))
		assert.Equal(t, want, got)
	}

	// Fire-and-forget kinds declare no reply.
	for _, k := range []wire.Kind{
		KindDefineParameterRequest, KindParameterValueRequest,
		KindUpdateTransportRequest, KindSubscribeToTransportRequest,
		KindAdjustRequest,
	} {
		_, ok := ResponseKindFor(k)
		assert.False(t, ok, "%s must not declare a response", KindName(k))
	}
}

func TestMessageKindsMatchConstants(t *testing.T) {
	assert.Equal(t, KindAdjustRequest, AdjustRequest{}.Kind())
	assert.Equal(t, KindSizeRequest, SizeRequest{}.Kind())
	assert.Equal(t, KindSizeResponse, SizeResponse{}.Kind())
	assert.Equal(t, KindAttachResponse, AttachResponse{}.Kind())
	assert.Equal(t, KindDestroyRequest, DestroyRequest{}.Kind())
}

func TestAdjustRequestRoundTrip(t *testing.T) {
	in := AdjustRequest{ParamID: 3, Value: -6.0, Flags: AdjustBegin}

	data, err := wire.EncodePayload(in)
	require.NoError(t, err)

	var out AdjustRequest
	require.NoError(t, wire.DecodePayload(data, &out))
	assert.Equal(t, in, out)
}

func TestDefineParameterRoundTrip(t *testing.T) {
	in := DefineParameterRequest{Info: ParamInfo{
		ID:           7,
		Name:         "gain",
		Module:       "master",
		MinValue:     -60,
		MaxValue:     12,
		DefaultValue: 0,
		Flags:        ParamCanAutomate | ParamIsModulable,
	}}

	data, err := wire.EncodePayload(in)
	require.NoError(t, err)

	var out DefineParameterRequest
	require.NoError(t, wire.DecodePayload(data, &out))
	assert.Equal(t, in, out)
}

func TestTransportEventRoundTrip(t *testing.T) {
	in := UpdateTransportRequest{
		HasTransport: true,
		Transport: TransportEvent{
			Flags:        TransportHasTempo | TransportIsPlaying,
			Tempo:        128.5,
			SongPosBeats: 16,
			TimeSigNum:   4,
			TimeSigDenom: 4,
		},
	}

	data, err := wire.EncodePayload(in)
	require.NoError(t, err)

	var out UpdateTransportRequest
	require.NoError(t, wire.DecodePayload(data, &out))
	assert.Equal(t, in, out)
	assert.True(t, out.Transport.IsPlaying())
}

func TestEmptyPayloadKinds(t *testing.T) {
	// Empty-struct messages encode to a tiny fixed payload and decode
	// from it again; the wire also accepts a genuinely empty payload.
	data, err := wire.EncodePayload(ShowRequest{})
	require.NoError(t, err)

	var out ShowRequest
	require.NoError(t, wire.DecodePayload(data, &out))
	require.NoError(t, wire.DecodePayload(nil, &out))
}
