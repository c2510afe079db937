// Package messages declares the catalogue of typed requests and responses
// carried over the bridge channel, together with the request→response kind
// mapping used for reply routing.
//
// Kind values begin at KindBase and are append-only: a kind is never
// renumbered once shipped, new kinds extend the end of the space.
package messages

import (
	"github.com/machinefabric/guibridge-go/wire"
)

// KindBase is the first value of the reserved kind space. Zero stays free
// to mark an unused slot.
const KindBase wire.Kind = 100

// Catalogue kinds. Direction is noted per kind: P→G originates on the
// plugin side, G→P on the GUI side.
const (
	KindDefineParameterRequest     wire.Kind = KindBase + iota // P→G async
	KindParameterValueRequest                                  // P→G async
	KindUpdateTransportRequest                                 // P→G async
	KindSubscribeToTransportRequest                            // G→P async
	KindAdjustRequest                                          // G→P async
	KindSizeRequest                                            // P→G sync
	KindSizeResponse
	KindSetScaleRequest // P→G sync
	KindSetScaleResponse
	KindAttachX11Request   // P→G sync
	KindAttachWin32Request // P→G sync
	KindAttachCocoaRequest // P→G sync
	KindAttachResponse
	KindShowRequest // P→G sync
	KindShowResponse
	KindHideRequest // P→G sync
	KindHideResponse
	KindDestroyRequest // P→G sync
	KindDestroyResponse
	kindEnd
)

// KindName returns a short name for logging.
func KindName(k wire.Kind) string {
	switch k {
	case KindDefineParameterRequest:
		return "DefineParameterRequest"
	case KindParameterValueRequest:
		return "ParameterValueRequest"
	case KindUpdateTransportRequest:
		return "UpdateTransportRequest"
	case KindSubscribeToTransportRequest:
		return "SubscribeToTransportRequest"
	case KindAdjustRequest:
		return "AdjustRequest"
	case KindSizeRequest:
		return "SizeRequest"
	case KindSizeResponse:
		return "SizeResponse"
	case KindSetScaleRequest:
		return "SetScaleRequest"
	case KindSetScaleResponse:
		return "SetScaleResponse"
	case KindAttachX11Request:
		return "AttachX11Request"
	case KindAttachWin32Request:
		return "AttachWin32Request"
	case KindAttachCocoaRequest:
		return "AttachCocoaRequest"
	case KindAttachResponse:
		return "AttachResponse"
	case KindShowRequest:
		return "ShowRequest"
	case KindShowResponse:
		return "ShowResponse"
	case KindHideRequest:
		return "HideRequest"
	case KindHideResponse:
		return "HideResponse"
	case KindDestroyRequest:
		return "DestroyRequest"
	case KindDestroyResponse:
		return "DestroyResponse"
	default:
		return "Unknown"
	}
}

// IsKnownKind reports whether k belongs to the catalogue.
func IsKnownKind(k wire.Kind) bool {
	return k >= KindBase && k < kindEnd
}

// IsResponseKind classifies a kind as a reply carrier. Replies route by
// cookie to a pending request; everything else is dispatched to the
// unsolicited-message handler.
func IsResponseKind(k wire.Kind) bool {
	switch k {
	case KindSizeResponse, KindSetScaleResponse, KindAttachResponse,
		KindShowResponse, KindHideResponse, KindDestroyResponse:
		return true
	default:
		return false
	}
}

// ResponseKindFor returns the kind a peer answers request kind k with. The
// three attach requests share a single response kind. Async-only kinds have
// no reply and return false.
func ResponseKindFor(k wire.Kind) (wire.Kind, bool) {
	switch k {
	case KindSizeRequest:
		return KindSizeResponse, true
	case KindSetScaleRequest:
		return KindSetScaleResponse, true
	case KindAttachX11Request, KindAttachWin32Request, KindAttachCocoaRequest:
		return KindAttachResponse, true
	case KindShowRequest:
		return KindShowResponse, true
	case KindHideRequest:
		return KindHideResponse, true
	case KindDestroyRequest:
		return KindDestroyResponse, true
	default:
		return 0, false
	}
}

// Request is implemented by every message that can be sent as a request.
type Request interface {
	Kind() wire.Kind
}

// Response is implemented by every message that carries a reply.
type Response interface {
	Kind() wire.Kind
}

// DefineParameterRequest registers a parameter in the GUI's model.
type DefineParameterRequest struct {
	Info ParamInfo `cbor:"info"`
}

func (DefineParameterRequest) Kind() wire.Kind { return KindDefineParameterRequest }

// ParameterValueRequest pushes the current value and modulation of one
// parameter to the GUI.
type ParameterValueRequest struct {
	ParamID    uint32  `cbor:"param_id"`
	Value      float64 `cbor:"value"`
	Modulation float64 `cbor:"modulation"`
}

func (ParameterValueRequest) Kind() wire.Kind { return KindParameterValueRequest }

// UpdateTransportRequest pushes the musical transport state to the GUI.
// HasTransport false clears the display.
type UpdateTransportRequest struct {
	HasTransport bool           `cbor:"has_transport"`
	Transport    TransportEvent `cbor:"transport,omitempty"`
}

func (UpdateTransportRequest) Kind() wire.Kind { return KindUpdateTransportRequest }

// SubscribeToTransportRequest starts or stops the transport stream for the
// GUI.
type SubscribeToTransportRequest struct {
	IsSubscribed bool `cbor:"is_subscribed"`
}

func (SubscribeToTransportRequest) Kind() wire.Kind { return KindSubscribeToTransportRequest }

// AdjustRequest is a user-driven parameter change from the GUI.
type AdjustRequest struct {
	ParamID uint32      `cbor:"param_id"`
	Value   float64     `cbor:"value"`
	Flags   AdjustFlags `cbor:"flags"`
}

func (AdjustRequest) Kind() wire.Kind { return KindAdjustRequest }

// SizeRequest asks the GUI for its preferred window size. Empty payload.
type SizeRequest struct{}

func (SizeRequest) Kind() wire.Kind { return KindSizeRequest }

// SizeResponse answers SizeRequest.
type SizeResponse struct {
	Width  uint32 `cbor:"width"`
	Height uint32 `cbor:"height"`
}

func (SizeResponse) Kind() wire.Kind { return KindSizeResponse }

// SetScaleRequest asks the GUI to apply a DPI scale factor.
type SetScaleRequest struct {
	Scale float64 `cbor:"scale"`
}

func (SetScaleRequest) Kind() wire.Kind { return KindSetScaleRequest }

// SetScaleResponse answers SetScaleRequest.
type SetScaleResponse struct {
	Succeed bool `cbor:"succeed"`
}

func (SetScaleResponse) Kind() wire.Kind { return KindSetScaleResponse }

// AttachX11Request embeds the GUI window into a host X11 window.
type AttachX11Request struct {
	Display string `cbor:"display"`
	Window  uint64 `cbor:"window"`
}

func (AttachX11Request) Kind() wire.Kind { return KindAttachX11Request }

// AttachWin32Request embeds the GUI window into a host HWND.
type AttachWin32Request struct {
	HWnd uint64 `cbor:"hwnd"`
}

func (AttachWin32Request) Kind() wire.Kind { return KindAttachWin32Request }

// AttachCocoaRequest embeds the GUI window into a host NSView.
type AttachCocoaRequest struct {
	NSView uint64 `cbor:"ns_view"`
}

func (AttachCocoaRequest) Kind() wire.Kind { return KindAttachCocoaRequest }

// AttachResponse answers any of the attach requests.
type AttachResponse struct {
	Succeed bool `cbor:"succeed"`
}

func (AttachResponse) Kind() wire.Kind { return KindAttachResponse }

// ShowRequest makes the GUI window visible. Empty payload.
type ShowRequest struct{}

func (ShowRequest) Kind() wire.Kind { return KindShowRequest }

// ShowResponse answers ShowRequest. Empty payload.
type ShowResponse struct{}

func (ShowResponse) Kind() wire.Kind { return KindShowResponse }

// HideRequest hides the GUI window. Empty payload.
type HideRequest struct{}

func (HideRequest) Kind() wire.Kind { return KindHideRequest }

// HideResponse answers HideRequest. Empty payload.
type HideResponse struct{}

func (HideResponse) Kind() wire.Kind { return KindHideResponse }

// DestroyRequest shuts the GUI process down. Empty payload.
type DestroyRequest struct{}

func (DestroyRequest) Kind() wire.Kind { return KindDestroyRequest }

// DestroyResponse answers DestroyRequest. Empty payload.
type DestroyResponse struct{}

func (DestroyResponse) Kind() wire.Kind { return KindDestroyResponse }
