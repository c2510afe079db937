// Package guibridge connects an audio-plugin core to a GUI living in a
// separately spawned process. The plugin side spawns the GUI executable,
// hands it one end of a duplex byte transport, and drives a cookie-routed
// request/response channel over it; the GUI side mirrors parameters and
// transport state and reports user adjustments back.
package guibridge

import (
	"time"

	"github.com/machinefabric/guibridge-go/channel"
	"github.com/machinefabric/guibridge-go/messages"
)

// Gui is the capability surface a plugin core uses to talk to its
// interface, whether that interface lives in-process or behind a channel.
type Gui interface {
	// DefineParameter registers a parameter in the GUI's model.
	DefineParameter(info messages.ParamInfo)
	// UpdateParameter pushes the current value and modulation amount of
	// one parameter.
	UpdateParameter(paramID uint32, value, modAmount float64)

	// UpdateTransport pushes the musical transport state.
	UpdateTransport(ev messages.TransportEvent)
	// ClearTransport tells the GUI no transport is available.
	ClearTransport()

	// AttachX11 embeds the GUI window into a host X11 window.
	AttachX11(display string, window uint64) bool
	// AttachWin32 embeds the GUI window into a host HWND.
	AttachWin32(hwnd uint64) bool
	// AttachCocoa embeds the GUI window into a host NSView.
	AttachCocoa(nsView uint64) bool

	// Size queries the preferred window size.
	Size() (width, height uint32, ok bool)
	// SetScale applies a DPI scale factor.
	SetScale(scale float64) bool

	// Show makes the window visible.
	Show() bool
	// Hide hides the window without destroying it.
	Hide() bool

	// Destroy tears the GUI down. Safe to call more than once.
	Destroy()
}

// PluginCallbacks is what the bridge needs from the plugin core: the
// landing point for user-driven parameter adjustments arriving from the
// GUI. Invocations happen on the host's main/event-loop thread, never on
// the audio thread.
type PluginCallbacks interface {
	GuiAdjust(paramID uint32, value float64, flags messages.AdjustFlags)
}

// TimerID identifies one registered host timer.
type TimerID uint64

// InvalidTimerID is the all-ones value no registration ever returns.
const InvalidTimerID TimerID = ^TimerID(0)

// HostServices is the slice of the host the bridge depends on: periodic
// timers and descriptor-readiness callbacks. Spawn refuses to run when
// either capability is missing.
//
// The host must call RemoteGui.OnFd whenever a registered descriptor
// becomes ready and RemoteGui.OnTimer on every timer tick.
type HostServices interface {
	CanUseTimer() bool
	CanUsePollFd() bool

	RegisterTimer(period time.Duration) (TimerID, error)
	UnregisterTimer(id TimerID) error

	RegisterPollFd(fd int, flags channel.IOFlags) error
	ModifyPollFd(fd int, flags channel.IOFlags) error
	UnregisterPollFd(fd int) error
}
