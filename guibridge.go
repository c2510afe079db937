// Flat re-exports of the wire, messages and channel subpackages, so most
// embedders only import the root package.
package guibridge

import (
	"github.com/machinefabric/guibridge-go/channel"
	"github.com/machinefabric/guibridge-go/messages"
	"github.com/machinefabric/guibridge-go/wire"
)

// Wire types
type Message = wire.Message
type Kind = wire.Kind

// Channel types
type RemoteChannel = channel.RemoteChannel
type Endpoint = channel.Endpoint
type EventControl = channel.EventControl
type Handler = channel.Handler
type ResponseFunc = channel.ResponseFunc
type IOFlags = channel.IOFlags

var NewChannel = channel.New
var NewConnEndpoint = channel.NewConnEndpoint
var Pipe = channel.Pipe

const (
	IORead  = channel.IORead
	IOWrite = channel.IOWrite
	IOError = channel.IOError
)

// Catalogue types
type ParamInfo = messages.ParamInfo
type TransportEvent = messages.TransportEvent
type AdjustFlags = messages.AdjustFlags

// Protocol constants
const MaxFrameSize = wire.MaxFrameSize
const FrameMagic = wire.FrameMagic
