package messages

// ParamInfo describes one automatable parameter as the plugin core exposes
// it. The bridge treats it as an opaque descriptor: it is defined once on
// the plugin side and mirrored into the GUI's model.
type ParamInfo struct {
	ID           uint32  `cbor:"id"`
	Name         string  `cbor:"name"`
	Module       string  `cbor:"module,omitempty"`
	MinValue     float64 `cbor:"min_value"`
	MaxValue     float64 `cbor:"max_value"`
	DefaultValue float64 `cbor:"default_value"`
	Flags        uint32  `cbor:"flags"`
}

// Parameter flags.
const (
	ParamCanAutomate uint32 = 1 << 0
	ParamIsReadOnly  uint32 = 1 << 1
	ParamIsHidden    uint32 = 1 << 2
	ParamIsBypass    uint32 = 1 << 3
	ParamIsStepped   uint32 = 1 << 4
	ParamIsModulable uint32 = 1 << 5
)

// AdjustFlags qualifies a user-driven parameter change. Begin and End mark
// the edges of a drag gesture so the plugin can group host automation
// events.
type AdjustFlags uint32

const (
	// AdjustBegin marks the first change of a gesture.
	AdjustBegin AdjustFlags = 1 << 0
	// AdjustEnd marks the last change of a gesture.
	AdjustEnd AdjustFlags = 1 << 1
)
