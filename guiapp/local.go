package guiapp

import (
	guibridge "github.com/machinefabric/guibridge-go"
	"github.com/machinefabric/guibridge-go/messages"
)

// LocalGui exposes an in-process model and renderer through the same Gui
// surface the remote controller implements, with no channel or child
// process involved. User adjustments from the model land directly on the
// plugin callbacks.
type LocalGui struct {
	model     *Model
	renderer  Renderer
	callbacks guibridge.PluginCallbacks
	destroyed bool
}

var _ guibridge.Gui = (*LocalGui)(nil)

// NewLocalGui builds an in-process Gui over the given renderer.
func NewLocalGui(callbacks guibridge.PluginCallbacks, renderer Renderer) *LocalGui {
	lg := &LocalGui{renderer: renderer, callbacks: callbacks}
	lg.model = NewModel(lg.deliver)
	return lg
}

// Model returns the in-process model, the hook for whatever drives the
// local interface.
func (lg *LocalGui) Model() *Model { return lg.model }

// deliver interprets model-originated requests locally instead of
// framing them.
func (lg *LocalGui) deliver(rq messages.Request) bool {
	switch rq := rq.(type) {
	case messages.AdjustRequest:
		lg.callbacks.GuiAdjust(rq.ParamID, rq.Value, rq.Flags)
		return true
	case messages.SubscribeToTransportRequest:
		return true
	default:
		return false
	}
}

// DefineParameter implements guibridge.Gui.
func (lg *LocalGui) DefineParameter(info messages.ParamInfo) {
	lg.model.DefineParameter(info)
}

// UpdateParameter implements guibridge.Gui.
func (lg *LocalGui) UpdateParameter(paramID uint32, value, modAmount float64) {
	if p := lg.model.Param(paramID); p != nil {
		p.SetValueFromPlugin(value)
		p.SetModulationFromPlugin(modAmount)
	}
}

// UpdateTransport implements guibridge.Gui.
func (lg *LocalGui) UpdateTransport(ev messages.TransportEvent) {
	lg.model.UpdateTransport(true, ev)
}

// ClearTransport implements guibridge.Gui.
func (lg *LocalGui) ClearTransport() {
	lg.model.UpdateTransport(false, messages.TransportEvent{})
}

// AttachX11 implements guibridge.Gui.
func (lg *LocalGui) AttachX11(display string, window uint64) bool {
	return lg.renderer.AttachX11(display, window)
}

// AttachWin32 implements guibridge.Gui.
func (lg *LocalGui) AttachWin32(hwnd uint64) bool {
	return lg.renderer.AttachWin32(hwnd)
}

// AttachCocoa implements guibridge.Gui.
func (lg *LocalGui) AttachCocoa(nsView uint64) bool {
	return lg.renderer.AttachCocoa(nsView)
}

// Size implements guibridge.Gui.
func (lg *LocalGui) Size() (uint32, uint32, bool) {
	width, height, ok := lg.renderer.RootSize()
	if !ok {
		width, height = DefaultWidth, DefaultHeight
	}
	return width, height, true
}

// SetScale implements guibridge.Gui.
func (lg *LocalGui) SetScale(scale float64) bool {
	return lg.renderer.SetScale(scale)
}

// Show implements guibridge.Gui.
func (lg *LocalGui) Show() bool {
	if lg.destroyed {
		return false
	}
	lg.renderer.Show()
	return true
}

// Hide implements guibridge.Gui.
func (lg *LocalGui) Hide() bool {
	if lg.destroyed {
		return false
	}
	lg.renderer.Hide()
	return true
}

// Destroy implements guibridge.Gui.
func (lg *LocalGui) Destroy() {
	if lg.destroyed {
		return
	}
	lg.destroyed = true
	lg.renderer.Hide()
}
