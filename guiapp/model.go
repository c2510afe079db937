// Package guiapp is the GUI-process side of the bridge: it owns the
// channel back to the plugin, mirrors parameters and transport state into
// a model the rendering layer binds to, and reports user adjustments.
package guiapp

import (
	"github.com/machinefabric/guibridge-go/messages"
)

// sendFunc delivers a request toward the plugin core. The remote
// application wires it to the channel; the local in-process variant
// short-circuits it.
type sendFunc func(rq messages.Request) bool

// Param is one parameter as the GUI sees it: the descriptor from the
// plugin plus the live value and modulation amount. Value changes flow in
// two directions and must not echo: plugin-driven setters update silently,
// user-driven setters emit adjust traffic.
type Param struct {
	info       messages.ParamInfo
	value      float64
	modulation float64
	adjusting  bool

	send sendFunc
}

// Info returns the parameter descriptor.
func (p *Param) Info() messages.ParamInfo { return p.info }

// Value returns the current value.
func (p *Param) Value() float64 { return p.value }

// Modulation returns the current modulation amount.
func (p *Param) Modulation() float64 { return p.modulation }

// IsAdjusting reports whether a user gesture is in flight.
func (p *Param) IsAdjusting() bool { return p.adjusting }

// SetValueFromPlugin applies a plugin-driven value update. No adjust
// traffic is emitted.
func (p *Param) SetValueFromPlugin(v float64) { p.value = v }

// SetModulationFromPlugin applies a plugin-driven modulation update.
func (p *Param) SetModulationFromPlugin(m float64) { p.modulation = m }

// BeginAdjust starts a user gesture at value v.
func (p *Param) BeginAdjust(v float64) {
	p.adjusting = true
	p.value = v
	p.send(messages.AdjustRequest{ParamID: p.info.ID, Value: v, Flags: messages.AdjustBegin})
}

// Adjust moves a gesture already in flight to value v. Outside a gesture
// it is a single unqualified adjustment.
func (p *Param) Adjust(v float64) {
	p.value = v
	p.send(messages.AdjustRequest{ParamID: p.info.ID, Value: v})
}

// EndAdjust finishes the gesture at value v.
func (p *Param) EndAdjust(v float64) {
	p.adjusting = false
	p.value = v
	p.send(messages.AdjustRequest{ParamID: p.info.ID, Value: v, Flags: messages.AdjustEnd})
}

// Model is the GUI-side mirror of the plugin's visible state.
type Model struct {
	params map[uint32]*Param
	order  []uint32

	subscribed   bool
	hasTransport bool
	transport    messages.TransportEvent

	send sendFunc
}

// NewModel creates an empty model that reports user actions through send.
func NewModel(send sendFunc) *Model {
	return &Model{
		params: make(map[uint32]*Param),
		send:   send,
	}
}

// DefineParameter installs or redefines a parameter. A redefinition keeps
// the current value if the parameter already exists.
func (m *Model) DefineParameter(info messages.ParamInfo) *Param {
	if p, ok := m.params[info.ID]; ok {
		p.info = info
		return p
	}
	p := &Param{info: info, value: info.DefaultValue, send: m.send}
	m.params[info.ID] = p
	m.order = append(m.order, info.ID)
	return p
}

// Param returns the parameter with the given id, or nil.
func (m *Model) Param(id uint32) *Param { return m.params[id] }

// ParamIDs returns all parameter ids in definition order.
func (m *Model) ParamIDs() []uint32 {
	ids := make([]uint32, len(m.order))
	copy(ids, m.order)
	return ids
}

// SetTransportSubscribed asks the plugin to start or stop the transport
// stream.
func (m *Model) SetTransportSubscribed(subscribed bool) {
	if m.subscribed == subscribed {
		return
	}
	m.subscribed = subscribed
	m.send(messages.SubscribeToTransportRequest{IsSubscribed: subscribed})
}

// IsTransportSubscribed reports the GUI's current subscription wish.
func (m *Model) IsTransportSubscribed() bool { return m.subscribed }

// UpdateTransport applies a transport push from the plugin.
func (m *Model) UpdateTransport(hasTransport bool, ev messages.TransportEvent) {
	m.hasTransport = hasTransport
	if hasTransport {
		m.transport = ev
	} else {
		m.transport = messages.TransportEvent{}
	}
}

// Transport returns the current transport state and whether one exists.
func (m *Model) Transport() (messages.TransportEvent, bool) {
	return m.transport, m.hasTransport
}
