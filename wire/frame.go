// Package wire implements the framed byte protocol spoken between the
// plugin side and the GUI side of the bridge. A frame is a fixed 16-byte
// little-endian header followed by an opaque payload:
//
//	[ u32 magic | u32 size | u32 kind | u32 cookie | payload[size] ]
//
// Payloads are self-describing CBOR; their schema is fixed per kind by the
// messages package.
package wire

import (
	"encoding/binary"
	"fmt"
)

// FrameMagic is the sentinel that starts every frame on the wire.
const FrameMagic uint32 = 0x67756249

// HeaderSize is the fixed size of a frame header in octets.
const HeaderSize = 16

// MaxFrameSize is the channel-wide cap on a single frame, header included.
// A size field above this is treated as stream corruption.
const MaxFrameSize = 64 * 1024 * 1024

// Kind identifies the schema of a frame's payload. Kind values live in a
// reserved numeric space starting at a non-zero base; zero marks an unused
// slot and never appears on the wire.
type Kind uint32

// Cookie binds a response frame to the request that caused it. Cookie zero
// is reserved for unsolicited messages and never matches a pending request.
type Cookie = uint32

// Message is a single decoded frame: kind, cookie and the raw payload.
type Message struct {
	Kind    Kind
	Cookie  uint32
	Payload []byte
}

// Get decodes the message payload into v.
func (m *Message) Get(v interface{}) error {
	return DecodePayload(m.Payload, v)
}

// CorruptionError reports unrecoverable framing damage: a bad magic value
// or a size field that makes the frame larger than MaxFrameSize. The
// stream cannot be resynchronized
// after one of these.
type CorruptionError struct {
	Reason string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("frame corruption: %s", e.Reason)
}

// AppendFrame encodes one complete frame onto dst and returns the extended
// buffer. The frame is appended atomically: dst never ends with a partial
// header between calls.
func AppendFrame(dst []byte, kind Kind, cookie uint32, payload []byte) []byte {
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], FrameMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(kind))
	binary.LittleEndian.PutUint32(hdr[12:16], cookie)
	dst = append(dst, hdr[:]...)
	return append(dst, payload...)
}

// ParseFrame decodes the first complete frame at the head of buf. It
// returns the decoded message and the number of bytes consumed. When buf
// does not yet hold a complete frame, it returns n == 0 and a nil error;
// the caller retries once more bytes arrive. A *CorruptionError means the
// stream is beyond recovery.
//
// The returned payload aliases buf; callers that retain the message past
// the next buffer compaction must copy it.
func ParseFrame(buf []byte) (Message, int, error) {
	if len(buf) < HeaderSize {
		return Message{}, 0, nil
	}

	magic := binary.LittleEndian.Uint32(buf[0:4])
	if magic != FrameMagic {
		return Message{}, 0, &CorruptionError{Reason: fmt.Sprintf("bad magic 0x%08x", magic)}
	}

	size := binary.LittleEndian.Uint32(buf[4:8])
	if uint64(size) > MaxFrameSize-HeaderSize {
		return Message{}, 0, &CorruptionError{Reason: fmt.Sprintf("frame size %d exceeds limit %d", size, MaxFrameSize)}
	}

	total := HeaderSize + int(size)
	if len(buf) < total {
		return Message{}, 0, nil
	}

	msg := Message{
		Kind:    Kind(binary.LittleEndian.Uint32(buf[8:12])),
		Cookie:  binary.LittleEndian.Uint32(buf[12:16]),
		Payload: buf[HeaderSize:total],
	}
	return msg, total, nil
}
