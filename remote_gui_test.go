package guibridge

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machinefabric/guibridge-go/channel"
	"github.com/machinefabric/guibridge-go/messages"
	"github.com/machinefabric/guibridge-go/wire"
)

type fakeHost struct {
	timerSupport bool
	fdSupport    bool

	timers map[TimerID]time.Duration
	nextID TimerID
	fds    map[int]channel.IOFlags
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		timerSupport: true,
		fdSupport:    true,
		timers:       make(map[TimerID]time.Duration),
		nextID:       1,
		fds:          make(map[int]channel.IOFlags),
	}
}

func (h *fakeHost) CanUseTimer() bool  { return h.timerSupport }
func (h *fakeHost) CanUsePollFd() bool { return h.fdSupport }

func (h *fakeHost) RegisterTimer(period time.Duration) (TimerID, error) {
	id := h.nextID
	h.nextID++
	h.timers[id] = period
	return id, nil
}

func (h *fakeHost) UnregisterTimer(id TimerID) error {
	if _, ok := h.timers[id]; !ok {
		return fmt.Errorf("unknown timer %d", id)
	}
	delete(h.timers, id)
	return nil
}

func (h *fakeHost) RegisterPollFd(fd int, flags channel.IOFlags) error {
	h.fds[fd] = flags
	return nil
}

func (h *fakeHost) ModifyPollFd(fd int, flags channel.IOFlags) error {
	if _, ok := h.fds[fd]; !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	h.fds[fd] = flags
	return nil
}

func (h *fakeHost) UnregisterPollFd(fd int) error {
	if _, ok := h.fds[fd]; !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	delete(h.fds, fd)
	return nil
}

type adjustCall struct {
	paramID uint32
	value   float64
	flags   messages.AdjustFlags
}

type adjustRecorder struct {
	calls []adjustCall
}

func (r *adjustRecorder) GuiAdjust(paramID uint32, value float64, flags messages.AdjustFlags) {
	r.calls = append(r.calls, adjustCall{paramID, value, flags})
}

// guiSim is a scripted GUI peer: it answers lifecycle requests the way
// the real application would and records what it saw.
type guiSim struct {
	ep  *channel.PipeEndpoint
	ch  *channel.RemoteChannel
	got []wire.Message
}

func (g *guiSim) ModifyFd(channel.IOFlags) {}
func (g *guiSim) RemoveFd()                {}

func (g *guiSim) handle(msg wire.Message) {
	g.got = append(g.got, msg)
	switch msg.Kind {
	case messages.KindSizeRequest:
		g.ch.SendResponseAsync(messages.SizeResponse{Width: 500, Height: 300}, msg.Cookie)
	case messages.KindSetScaleRequest:
		var rq messages.SetScaleRequest
		_ = msg.Get(&rq)
		g.ch.SendResponseAsync(messages.SetScaleResponse{Succeed: rq.Scale > 0}, msg.Cookie)
	case messages.KindAttachX11Request, messages.KindAttachWin32Request, messages.KindAttachCocoaRequest:
		g.ch.SendResponseAsync(messages.AttachResponse{Succeed: true}, msg.Cookie)
	case messages.KindShowRequest:
		g.ch.SendResponseAsync(messages.ShowResponse{}, msg.Cookie)
	case messages.KindHideRequest:
		g.ch.SendResponseAsync(messages.HideResponse{}, msg.Cookie)
	}
}

// serveSim drives the simulated GUI from its own goroutine, like the real
// child process would.
func serveSim(g *guiSim, stop <-chan struct{}) {
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			ready, err := g.ep.Wait(channel.IORead|channel.IOWrite, 2*time.Millisecond)
			if err != nil {
				return
			}
			if ready&channel.IORead != 0 {
				g.ch.TryReceive()
			}
			g.ch.TrySend()
			if !g.ch.IsOpen() {
				return
			}
		}
	}()
}

// newRemoteGuiUnderTest wires a RemoteGui over an in-memory transport, as
// if Spawn had already brought a child up.
func newRemoteGuiUnderTest(t *testing.T) (*RemoteGui, *fakeHost, *adjustRecorder, *guiSim) {
	t.Helper()
	host := newFakeHost()
	rec := &adjustRecorder{}
	rg := NewRemoteGui(host, rec, DefaultConfig())

	epPlugin, epGui := channel.Pipe(0)
	rg.ch = channel.New(rg.onMessage, true, rg, epPlugin)
	id, err := host.RegisterTimer(rg.cfg.TimerPeriod())
	require.NoError(t, err)
	rg.timerID = id
	rg.timerActive = true

	sim := &guiSim{ep: epGui}
	sim.ch = channel.New(sim.handle, false, sim, epGui)
	return rg, host, rec, sim
}

// pump moves queued bytes both ways without goroutines.
func pump(rg *RemoteGui, sim *guiSim) {
	for i := 0; i < 8; i++ {
		if rg.ch != nil {
			rg.ch.TrySend()
		}
		sim.ch.TryReceive()
		sim.ch.TrySend()
		if rg.ch != nil {
			rg.ch.TryReceive()
		}
	}
}

func TestRemoteGuiSizeHandshake(t *testing.T) {
	rg, _, _, sim := newRemoteGuiUnderTest(t)
	stop := make(chan struct{})
	defer close(stop)
	serveSim(sim, stop)

	width, height, ok := rg.Size()
	require.True(t, ok)
	assert.Equal(t, uint32(500), width)
	assert.Equal(t, uint32(300), height)
}

func TestRemoteGuiWindowLifecycle(t *testing.T) {
	rg, _, _, sim := newRemoteGuiUnderTest(t)
	stop := make(chan struct{})
	defer close(stop)
	serveSim(sim, stop)

	assert.True(t, rg.AttachX11(":0", 0x7b))
	assert.True(t, rg.SetScale(1.5))
	assert.False(t, rg.SetScale(-1), "the gui rejects a negative scale")
	assert.True(t, rg.Show())
	assert.True(t, rg.Hide())
}

func TestRemoteGuiAdjustDispatch(t *testing.T) {
	rg, _, rec, sim := newRemoteGuiUnderTest(t)

	require.True(t, sim.ch.SendRequestAsync(messages.AdjustRequest{
		ParamID: 3, Value: -6.0, Flags: messages.AdjustBegin,
	}))
	pump(rg, sim)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, adjustCall{paramID: 3, value: -6.0, flags: messages.AdjustBegin}, rec.calls[0])
}

func TestRemoteGuiTransportSubscription(t *testing.T) {
	rg, _, _, sim := newRemoteGuiUnderTest(t)

	ev := messages.TransportEvent{Flags: messages.TransportHasTempo, Tempo: 120}

	// Unsubscribed: updates stay home.
	rg.UpdateTransport(ev)
	pump(rg, sim)
	assert.Empty(t, sim.got)

	// Subscribing replays the latest state.
	require.True(t, sim.ch.SendRequestAsync(messages.SubscribeToTransportRequest{IsSubscribed: true}))
	pump(rg, sim)
	require.True(t, rg.IsTransportSubscribed())
	require.Len(t, sim.got, 1)

	var update messages.UpdateTransportRequest
	require.NoError(t, sim.got[0].Get(&update))
	assert.True(t, update.HasTransport)
	assert.Equal(t, ev, update.Transport)

	// Further updates flow; clearing flows too.
	rg.UpdateTransport(messages.TransportEvent{Tempo: 90})
	rg.ClearTransport()
	pump(rg, sim)
	require.Len(t, sim.got, 3)
	require.NoError(t, sim.got[2].Get(&update))
	assert.False(t, update.HasTransport)

	// Unsubscribing stops the stream.
	require.True(t, sim.ch.SendRequestAsync(messages.SubscribeToTransportRequest{IsSubscribed: false}))
	pump(rg, sim)
	rg.UpdateTransport(ev)
	pump(rg, sim)
	assert.Len(t, sim.got, 3)
}

func TestRemoteGuiParameterTraffic(t *testing.T) {
	rg, _, _, sim := newRemoteGuiUnderTest(t)

	rg.DefineParameter(messages.ParamInfo{ID: 7, Name: "gain"})
	rg.UpdateParameter(7, 0.5, 0.0)
	pump(rg, sim)

	require.Len(t, sim.got, 2)
	var def messages.DefineParameterRequest
	require.NoError(t, sim.got[0].Get(&def))
	assert.Equal(t, "gain", def.Info.Name)

	var val messages.ParameterValueRequest
	require.NoError(t, sim.got[1].Get(&val))
	assert.Equal(t, uint32(7), val.ParamID)
	assert.Equal(t, 0.5, val.Value)
}

func TestRemoteGuiDestroySequence(t *testing.T) {
	rg, host, _, sim := newRemoteGuiUnderTest(t)
	require.NotEmpty(t, host.timers)

	rg.Destroy()
	rg.Destroy() // idempotent

	assert.Nil(t, rg.ch)
	assert.Empty(t, host.timers, "destroy releases the upkeep timer")

	// The destroy request was flushed before the close.
	sim.ch.TryReceive()
	require.NotEmpty(t, sim.got)
	assert.Equal(t, messages.KindDestroyRequest, sim.got[0].Kind)

	// The surface stays callable after teardown.
	_, _, ok := rg.Size()
	assert.False(t, ok)
	assert.False(t, rg.Show())
	rg.DefineParameter(messages.ParamInfo{ID: 1})
}

func TestRemoteGuiSyncFailsAfterPeerDeath(t *testing.T) {
	rg, _, _, sim := newRemoteGuiUnderTest(t)

	sim.ch.Close()

	ok := rg.Show()
	assert.False(t, ok)
	_, _, sizeOK := rg.Size()
	assert.False(t, sizeOK)
}

func TestSpawnRequiresHostCapabilities(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GuiExecutable = "/nonexistent/gui"

	host := newFakeHost()
	host.timerSupport = false
	rg := NewRemoteGui(host, &adjustRecorder{}, cfg)
	assert.False(t, rg.Spawn())

	host = newFakeHost()
	host.fdSupport = false
	rg = NewRemoteGui(host, &adjustRecorder{}, cfg)
	assert.False(t, rg.Spawn())
}

func TestSpawnRollsBackOnExecFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GuiExecutable = filepath.Join(t.TempDir(), "no-such-binary")
	cfg.SkinDir = t.TempDir()

	host := newFakeHost()
	rg := NewRemoteGui(host, &adjustRecorder{}, cfg)

	require.False(t, rg.Spawn())
	assert.Empty(t, host.fds, "no descriptor registration may survive")
	assert.Empty(t, host.timers, "no timer registration may survive")
	assert.Nil(t, rg.ch)
	assert.Equal(t, -1, rg.Fd())
}
