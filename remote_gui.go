package guibridge

import (
	"github.com/rs/zerolog"

	"github.com/machinefabric/guibridge-go/channel"
	"github.com/machinefabric/guibridge-go/logx"
	"github.com/machinefabric/guibridge-go/messages"
	"github.com/machinefabric/guibridge-go/wire"
)

// RemoteGui is the plugin-side controller for an out-of-process GUI. It
// spawns the GUI executable, owns the channel to it, and exposes the Gui
// surface to the plugin core. It also serves as the channel's event
// control adapter, relaying interest changes to the host's descriptor
// services.
//
// All methods run on the host's main/event-loop thread. The audio thread
// must never touch a RemoteGui.
type RemoteGui struct {
	host      HostServices
	callbacks PluginCallbacks
	cfg       Config
	log       zerolog.Logger

	ch    *RemoteChannel
	child *childHandle

	timerID       TimerID
	timerActive   bool
	registeredFd  int
	fdRegistered  bool
	subscribed    bool
	lastTransport messages.TransportEvent
	haveTransport bool
}

var _ Gui = (*RemoteGui)(nil)
var _ channel.EventControl = (*RemoteGui)(nil)

// NewRemoteGui creates a controller that will spawn and drive the GUI
// described by cfg. Nothing happens until Spawn.
func NewRemoteGui(host HostServices, callbacks PluginCallbacks, cfg Config) *RemoteGui {
	return &RemoteGui{
		host:      host,
		callbacks: callbacks,
		cfg:       cfg,
		log:       logx.Log.With().Str("component", "remote-gui").Logger(),
		timerID:   InvalidTimerID,
	}
}

// Spawn brings the GUI process up: transport endpoints, child process,
// channel, host descriptor registration and the periodic timer. On any
// failure every resource acquired by an earlier step is released again, in
// reverse order, and false is returned.
func (rg *RemoteGui) Spawn() bool {
	if rg.ch != nil {
		rg.log.Error().Msg("spawn called twice")
		return false
	}
	if !rg.host.CanUseTimer() || !rg.host.CanUsePollFd() {
		rg.log.Warn().Msg("host lacks timer or fd support")
		return false
	}

	child, ep, err := spawnChild(&rg.cfg)
	if err != nil {
		rg.log.Error().Err(err).Str("executable", rg.cfg.GuiExecutable).Msg("spawn failed")
		return false
	}

	rg.ch = channel.New(rg.onMessage, true, rg, ep)
	rg.child = child

	if fd := ep.Fd(); fd >= 0 {
		if err := rg.host.RegisterPollFd(fd, channel.IORead|channel.IOError); err != nil {
			rg.log.Error().Err(err).Msg("fd registration failed")
			rg.abortSpawn()
			return false
		}
		rg.registeredFd = fd
		rg.fdRegistered = true
	}

	id, err := rg.host.RegisterTimer(rg.cfg.TimerPeriod())
	if err != nil {
		rg.log.Error().Err(err).Msg("timer registration failed")
		rg.abortSpawn()
		return false
	}
	rg.timerID = id
	rg.timerActive = true

	rg.log.Info().Str("executable", rg.cfg.GuiExecutable).Msg("gui process started")
	return true
}

// abortSpawn unwinds a partially completed Spawn. Closing the channel
// releases the endpoint and, through RemoveFd, whatever host registrations
// already exist; the child is then killed and reaped.
func (rg *RemoteGui) abortSpawn() {
	if rg.ch != nil {
		rg.ch.Close()
		rg.ch = nil
	}
	if rg.child != nil {
		rg.child.kill()
		rg.child.wait()
		rg.child = nil
	}
}

// TimerID returns the identifier of the registered periodic timer.
func (rg *RemoteGui) TimerID() TimerID { return rg.timerID }

// Fd returns the descriptor registered with the host, or -1.
func (rg *RemoteGui) Fd() int {
	if rg.ch == nil {
		return -1
	}
	return rg.ch.Fd()
}

// IsTransportSubscribed reports whether the GUI asked for the transport
// stream.
func (rg *RemoteGui) IsTransportSubscribed() bool { return rg.subscribed }

// OnFd is the host's readiness callback for the registered descriptor.
func (rg *RemoteGui) OnFd(flags channel.IOFlags) {
	if rg.ch == nil {
		return
	}
	if flags&channel.IORead != 0 {
		rg.ch.TryReceive()
	}
	if rg.ch != nil && flags&channel.IOWrite != 0 {
		rg.ch.TrySend()
	}
	if rg.ch != nil && flags&channel.IOError != 0 {
		rg.ch.OnError()
	}
}

// OnTimer is the host's periodic tick. It retries queued output; for
// endpoints without descriptor readiness (the named-pipe transports) it
// also polls for inbound traffic.
func (rg *RemoteGui) OnTimer() {
	if rg.ch == nil {
		return
	}
	rg.ch.TrySend()
	if rg.ch != nil && rg.ch.Fd() < 0 {
		rg.ch.TryReceive()
	}
}

// ModifyFd implements channel.EventControl.
func (rg *RemoteGui) ModifyFd(flags channel.IOFlags) {
	if rg.fdRegistered {
		if err := rg.host.ModifyPollFd(rg.registeredFd, flags); err != nil {
			rg.log.Warn().Err(err).Msg("fd interest change failed")
		}
	}
}

// RemoveFd implements channel.EventControl: the channel has died or was
// closed, so the host registrations go away.
func (rg *RemoteGui) RemoveFd() {
	if rg.fdRegistered {
		rg.fdRegistered = false
		if err := rg.host.UnregisterPollFd(rg.registeredFd); err != nil {
			rg.log.Warn().Err(err).Msg("fd unregister failed")
		}
	}
	if rg.timerActive {
		rg.timerActive = false
		if err := rg.host.UnregisterTimer(rg.timerID); err != nil {
			rg.log.Warn().Err(err).Msg("timer unregister failed")
		}
		rg.timerID = InvalidTimerID
	}
}

// onMessage handles unsolicited traffic from the GUI process.
func (rg *RemoteGui) onMessage(msg wire.Message) {
	switch msg.Kind {
	case messages.KindAdjustRequest:
		var rq messages.AdjustRequest
		if err := msg.Get(&rq); err != nil {
			rg.log.Error().Err(err).Msg("bad adjust payload")
			return
		}
		rg.callbacks.GuiAdjust(rq.ParamID, rq.Value, rq.Flags)

	case messages.KindSubscribeToTransportRequest:
		var rq messages.SubscribeToTransportRequest
		if err := msg.Get(&rq); err != nil {
			rg.log.Error().Err(err).Msg("bad subscribe payload")
			return
		}
		rg.subscribed = rq.IsSubscribed
		if rg.subscribed && rg.haveTransport {
			rg.ch.SendRequestAsync(messages.UpdateTransportRequest{
				HasTransport: true,
				Transport:    rg.lastTransport,
			})
		}

	default:
		rg.log.Warn().Str("kind", messages.KindName(msg.Kind)).Msg("unexpected message from gui")
	}
}

// DefineParameter implements Gui.
func (rg *RemoteGui) DefineParameter(info messages.ParamInfo) {
	if rg.ch == nil {
		return
	}
	rg.ch.SendRequestAsync(messages.DefineParameterRequest{Info: info})
}

// UpdateParameter implements Gui.
func (rg *RemoteGui) UpdateParameter(paramID uint32, value, modAmount float64) {
	if rg.ch == nil {
		return
	}
	rg.ch.SendRequestAsync(messages.ParameterValueRequest{
		ParamID:    paramID,
		Value:      value,
		Modulation: modAmount,
	})
}

// UpdateTransport implements Gui. The update is pushed only while the GUI
// holds a subscription; the latest state is kept so a fresh subscriber
// catches up immediately.
func (rg *RemoteGui) UpdateTransport(ev messages.TransportEvent) {
	rg.lastTransport = ev
	rg.haveTransport = true
	if rg.ch == nil || !rg.subscribed {
		return
	}
	rg.ch.SendRequestAsync(messages.UpdateTransportRequest{HasTransport: true, Transport: ev})
}

// ClearTransport implements Gui.
func (rg *RemoteGui) ClearTransport() {
	rg.haveTransport = false
	if rg.ch == nil || !rg.subscribed {
		return
	}
	rg.ch.SendRequestAsync(messages.UpdateTransportRequest{HasTransport: false})
}

// Size implements Gui.
func (rg *RemoteGui) Size() (uint32, uint32, bool) {
	if rg.ch == nil {
		return 0, 0, false
	}
	var resp messages.SizeResponse
	if !rg.ch.SendRequestSync(messages.SizeRequest{}, &resp) {
		return 0, 0, false
	}
	return resp.Width, resp.Height, true
}

// SetScale implements Gui.
func (rg *RemoteGui) SetScale(scale float64) bool {
	if rg.ch == nil {
		return false
	}
	var resp messages.SetScaleResponse
	if !rg.ch.SendRequestSync(messages.SetScaleRequest{Scale: scale}, &resp) {
		return false
	}
	return resp.Succeed
}

// AttachX11 implements Gui.
func (rg *RemoteGui) AttachX11(display string, window uint64) bool {
	if rg.ch == nil {
		return false
	}
	var resp messages.AttachResponse
	if !rg.ch.SendRequestSync(messages.AttachX11Request{Display: display, Window: window}, &resp) {
		return false
	}
	return resp.Succeed
}

// AttachWin32 implements Gui.
func (rg *RemoteGui) AttachWin32(hwnd uint64) bool {
	if rg.ch == nil {
		return false
	}
	var resp messages.AttachResponse
	if !rg.ch.SendRequestSync(messages.AttachWin32Request{HWnd: hwnd}, &resp) {
		return false
	}
	return resp.Succeed
}

// AttachCocoa implements Gui.
func (rg *RemoteGui) AttachCocoa(nsView uint64) bool {
	if rg.ch == nil {
		return false
	}
	var resp messages.AttachResponse
	if !rg.ch.SendRequestSync(messages.AttachCocoaRequest{NSView: nsView}, &resp) {
		return false
	}
	return resp.Succeed
}

// Show implements Gui.
func (rg *RemoteGui) Show() bool {
	if rg.ch == nil {
		return false
	}
	return rg.ch.SendRequestSync(messages.ShowRequest{}, &messages.ShowResponse{})
}

// Hide implements Gui.
func (rg *RemoteGui) Hide() bool {
	if rg.ch == nil {
		return false
	}
	return rg.ch.SendRequestSync(messages.HideRequest{}, &messages.HideResponse{})
}

// Destroy implements Gui: a fire-and-forget destroy request, channel
// close (which cancels anything still pending and releases the descriptor
// registration), a blocking wait for the child to exit, then release of
// the upkeep timer. The wait may block; never call Destroy from the audio
// thread.
func (rg *RemoteGui) Destroy() {
	if rg.ch == nil {
		return
	}
	// Keep RemoveFd from dropping the timer; it goes after the wait.
	timerActive := rg.timerActive
	rg.timerActive = false
	rg.ch.SendRequestAsync(messages.DestroyRequest{})
	rg.ch.Close()
	rg.ch = nil

	if rg.child != nil {
		rg.child.wait()
		rg.child = nil
	}
	if timerActive {
		if err := rg.host.UnregisterTimer(rg.timerID); err != nil {
			rg.log.Warn().Err(err).Msg("timer unregister failed")
		}
		rg.timerID = InvalidTimerID
	}
	rg.log.Info().Msg("gui process destroyed")
}
