package messages

// TransportEvent is the musical-timeline state pushed to the GUI: tempo,
// playhead and loop positions. It is distinct from the byte transport the
// channel runs on. Fields are valid only when the matching Has* flag is
// set.
type TransportEvent struct {
	Flags          uint32  `cbor:"flags"`
	SongPosBeats   float64 `cbor:"song_pos_beats"`
	SongPosSeconds float64 `cbor:"song_pos_seconds"`
	Tempo          float64 `cbor:"tempo"`
	TempoInc       float64 `cbor:"tempo_inc"`
	LoopStartBeats float64 `cbor:"loop_start_beats"`
	LoopEndBeats   float64 `cbor:"loop_end_beats"`
	BarStart       float64 `cbor:"bar_start"`
	BarNumber      int32   `cbor:"bar_number"`
	TimeSigNum     uint16  `cbor:"tsig_num"`
	TimeSigDenom   uint16  `cbor:"tsig_denom"`
}

// Transport flags.
const (
	TransportHasTempo           uint32 = 1 << 0
	TransportHasBeatsTimeline   uint32 = 1 << 1
	TransportHasSecondsTimeline uint32 = 1 << 2
	TransportHasTimeSignature   uint32 = 1 << 3
	TransportIsPlaying          uint32 = 1 << 4
	TransportIsRecording        uint32 = 1 << 5
	TransportIsLoopActive       uint32 = 1 << 6
	TransportIsWithinPreRoll    uint32 = 1 << 7
)

// IsPlaying reports whether the playhead is running.
func (t *TransportEvent) IsPlaying() bool {
	return t.Flags&TransportIsPlaying != 0
}
