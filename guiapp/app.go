package guiapp

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	guibridge "github.com/machinefabric/guibridge-go"
	"github.com/machinefabric/guibridge-go/channel"
	"github.com/machinefabric/guibridge-go/logx"
	"github.com/machinefabric/guibridge-go/messages"
	"github.com/machinefabric/guibridge-go/wire"
)

// Default window size reported while the skin has no root item yet.
const (
	DefaultWidth  uint32 = 500
	DefaultHeight uint32 = 300
)

// loopWait bounds one idle iteration of the application loop.
const loopWait = 50 * time.Millisecond

// Options is the GUI process configuration recovered from its command
// line.
type Options struct {
	SkinDir    string
	QMLImports []string

	// SocketFd is the inherited endpoint descriptor, or -1.
	SocketFd int

	// PipeIn and PipeOut are the named-pipe endpoints on platforms
	// without descriptor inheritance. In/out are named from the plugin's
	// point of view: the GUI reads PipeIn and writes PipeOut.
	PipeIn  string
	PipeOut string

	LogLevel string
}

// App drives the GUI process: one cooperative loop over the channel to
// the plugin, a model the renderer binds to, and the skin being shown.
type App struct {
	opts     Options
	renderer Renderer
	model    *Model
	skin     *guibridge.SkinManifest
	log      zerolog.Logger

	ch *channel.RemoteChannel
	ep channel.Endpoint

	interest  channel.IOFlags
	quit      bool
	destroyed bool
}

// New builds the application: validates and loads the skin manifest,
// opens the transport endpoint named by opts, and connects the channel.
func New(opts Options, renderer Renderer) (*App, error) {
	if opts.LogLevel != "" {
		logx.Configure(opts.LogLevel)
	}
	if opts.SkinDir == "" {
		return nil, fmt.Errorf("skin directory is required")
	}

	skin, err := guibridge.LoadSkinManifest(opts.SkinDir)
	if err != nil {
		return nil, err
	}

	imports := append(append([]string{}, opts.QMLImports...), skin.ImportPaths(opts.SkinDir)...)
	if err := renderer.Load(skin.MainScenePath(opts.SkinDir), imports); err != nil {
		return nil, fmt.Errorf("load skin: %w", err)
	}

	ep, err := openEndpoint(opts)
	if err != nil {
		return nil, err
	}

	a := &App{
		opts:     opts,
		renderer: renderer,
		skin:     skin,
		log:      logx.Log.With().Str("component", "gui-app").Logger(),
		ep:       ep,
		interest: channel.IORead | channel.IOError,
	}
	a.model = NewModel(a.send)
	a.ch = channel.New(a.onMessage, false, a, ep)
	return a, nil
}

// newOverEndpoint wires an App over an already-open endpoint, without a
// skin on disk. The tests use it.
func newOverEndpoint(ep channel.Endpoint, renderer Renderer) *App {
	a := &App{
		renderer: renderer,
		log:      logx.Log.With().Str("component", "gui-app").Logger(),
		ep:       ep,
		interest: channel.IORead | channel.IOError,
	}
	a.model = NewModel(a.send)
	a.ch = channel.New(a.onMessage, false, a, ep)
	return a
}

// Model returns the parameter/transport model.
func (a *App) Model() *Model { return a.model }

// Skin returns the loaded skin manifest, if any.
func (a *App) Skin() *guibridge.SkinManifest { return a.skin }

// send forwards a model-originated request to the plugin.
func (a *App) send(rq messages.Request) bool {
	if a.ch == nil {
		return false
	}
	return a.ch.SendRequestAsync(rq)
}

// ModifyFd implements channel.EventControl: the loop's interest set
// follows the channel's.
func (a *App) ModifyFd(flags channel.IOFlags) { a.interest = flags }

// RemoveFd implements channel.EventControl: the channel died, the
// process winds down.
func (a *App) RemoveFd() { a.quit = true }

// Run drives the application until the plugin destroys it or the channel
// dies. The exit code is 0 after a clean destroy, non-zero otherwise.
func (a *App) Run() int {
	for !a.quit {
		ready, err := a.ep.Wait(a.interest, loopWait)
		if err != nil {
			a.ch.OnError()
			break
		}
		if ready&channel.IOError != 0 {
			a.ch.OnError()
			break
		}
		if ready&channel.IORead != 0 {
			a.ch.TryReceive()
		}
		if !a.quit && ready&channel.IOWrite != 0 {
			a.ch.TrySend()
		}
	}
	if a.ch != nil {
		a.ch.Close()
	}
	if a.destroyed {
		a.log.Info().Msg("destroyed by plugin, exiting")
		return 0
	}
	a.log.Warn().Msg("channel lost, exiting")
	return 1
}

// onMessage dispatches one inbound message from the plugin.
func (a *App) onMessage(msg wire.Message) {
	switch msg.Kind {
	case messages.KindDestroyRequest:
		a.ch.SendResponseAsync(messages.DestroyResponse{}, msg.Cookie)
		a.destroyed = true
		a.ch.Close()

	case messages.KindDefineParameterRequest:
		var rq messages.DefineParameterRequest
		if err := msg.Get(&rq); err != nil {
			a.log.Error().Err(err).Msg("bad define-parameter payload")
			return
		}
		a.model.DefineParameter(rq.Info)

	case messages.KindParameterValueRequest:
		var rq messages.ParameterValueRequest
		if err := msg.Get(&rq); err != nil {
			a.log.Error().Err(err).Msg("bad parameter-value payload")
			return
		}
		p := a.model.Param(rq.ParamID)
		if p == nil {
			a.log.Warn().Uint32("param", rq.ParamID).Msg("value for unknown parameter")
			return
		}
		p.SetValueFromPlugin(rq.Value)
		p.SetModulationFromPlugin(rq.Modulation)

	case messages.KindUpdateTransportRequest:
		var rq messages.UpdateTransportRequest
		if err := msg.Get(&rq); err != nil {
			a.log.Error().Err(err).Msg("bad transport payload")
			return
		}
		a.model.UpdateTransport(rq.HasTransport, rq.Transport)

	case messages.KindSizeRequest:
		width, height, ok := a.renderer.RootSize()
		if !ok {
			width, height = DefaultWidth, DefaultHeight
		}
		a.ch.SendResponseAsync(messages.SizeResponse{Width: width, Height: height}, msg.Cookie)

	case messages.KindSetScaleRequest:
		var rq messages.SetScaleRequest
		if err := msg.Get(&rq); err != nil {
			a.log.Error().Err(err).Msg("bad set-scale payload")
			return
		}
		ok := a.renderer.SetScale(rq.Scale)
		a.ch.SendResponseAsync(messages.SetScaleResponse{Succeed: ok}, msg.Cookie)

	case messages.KindAttachX11Request:
		var rq messages.AttachX11Request
		if err := msg.Get(&rq); err != nil {
			a.log.Error().Err(err).Msg("bad attach payload")
			return
		}
		ok := a.renderer.AttachX11(rq.Display, rq.Window)
		a.ch.SendResponseAsync(messages.AttachResponse{Succeed: ok}, msg.Cookie)

	case messages.KindAttachWin32Request:
		var rq messages.AttachWin32Request
		if err := msg.Get(&rq); err != nil {
			a.log.Error().Err(err).Msg("bad attach payload")
			return
		}
		ok := a.renderer.AttachWin32(rq.HWnd)
		a.ch.SendResponseAsync(messages.AttachResponse{Succeed: ok}, msg.Cookie)

	case messages.KindAttachCocoaRequest:
		var rq messages.AttachCocoaRequest
		if err := msg.Get(&rq); err != nil {
			a.log.Error().Err(err).Msg("bad attach payload")
			return
		}
		ok := a.renderer.AttachCocoa(rq.NSView)
		a.ch.SendResponseAsync(messages.AttachResponse{Succeed: ok}, msg.Cookie)

	case messages.KindShowRequest:
		a.renderer.Show()
		a.ch.SendResponseAsync(messages.ShowResponse{}, msg.Cookie)

	case messages.KindHideRequest:
		a.renderer.Hide()
		a.ch.SendResponseAsync(messages.HideResponse{}, msg.Cookie)

	default:
		a.log.Warn().Str("kind", messages.KindName(msg.Kind)).Msg("unexpected message from plugin")
	}
}
