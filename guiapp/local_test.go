package guiapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machinefabric/guibridge-go/messages"
)

type localAdjusts struct {
	calls []messages.AdjustRequest
}

func (l *localAdjusts) GuiAdjust(paramID uint32, value float64, flags messages.AdjustFlags) {
	l.calls = append(l.calls, messages.AdjustRequest{ParamID: paramID, Value: value, Flags: flags})
}

func TestLocalGuiParameterFlow(t *testing.T) {
	rec := &localAdjusts{}
	lg := NewLocalGui(rec, NewHeadlessRenderer())

	lg.DefineParameter(messages.ParamInfo{ID: 7, Name: "gain"})
	lg.UpdateParameter(7, 0.5, 0.1)

	p := lg.Model().Param(7)
	require.NotNil(t, p)
	assert.Equal(t, 0.5, p.Value())
	assert.Equal(t, 0.1, p.Modulation())
	assert.Empty(t, rec.calls, "plugin-driven updates must not echo")

	// A user gesture lands directly on the plugin callbacks.
	p.BeginAdjust(-6)
	p.EndAdjust(-3)
	require.Len(t, rec.calls, 2)
	assert.Equal(t, messages.AdjustRequest{ParamID: 7, Value: -6, Flags: messages.AdjustBegin}, rec.calls[0])
	assert.Equal(t, messages.AdjustRequest{ParamID: 7, Value: -3, Flags: messages.AdjustEnd}, rec.calls[1])
}

func TestLocalGuiWindowSurface(t *testing.T) {
	renderer := NewHeadlessRenderer()
	lg := NewLocalGui(&localAdjusts{}, renderer)

	width, height, ok := lg.Size()
	require.True(t, ok)
	assert.Equal(t, DefaultWidth, width)
	assert.Equal(t, DefaultHeight, height)

	renderer.SetRootSize(800, 600)
	width, height, _ = lg.Size()
	assert.Equal(t, uint32(800), width)
	assert.Equal(t, uint32(600), height)

	assert.True(t, lg.AttachWin32(0xbeef))
	assert.True(t, lg.Show())
	assert.True(t, renderer.Visible)
	assert.True(t, lg.Hide())
	assert.False(t, renderer.Visible)

	lg.Destroy()
	assert.False(t, lg.Show(), "a destroyed gui stays down")
	lg.Destroy()
}

func TestLocalGuiTransport(t *testing.T) {
	lg := NewLocalGui(&localAdjusts{}, NewHeadlessRenderer())

	lg.UpdateTransport(messages.TransportEvent{Tempo: 174, Flags: messages.TransportHasTempo})
	ev, ok := lg.Model().Transport()
	require.True(t, ok)
	assert.Equal(t, 174.0, ev.Tempo)

	lg.ClearTransport()
	_, ok = lg.Model().Transport()
	assert.False(t, ok)
}
