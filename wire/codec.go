package wire

import (
	"github.com/fxamacker/cbor/v2"
)

// Payload codec. Encoding uses Core Deterministic options so both peers
// produce identical bytes for identical values; decoding rejects unknown
// wild growth via the default safety limits of the library.

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// EncodePayload encodes v to CBOR payload bytes. A nil v yields an empty
// payload.
func EncodePayload(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return encMode.Marshal(v)
}

// DecodePayload decodes CBOR payload bytes into v. An empty payload leaves
// v untouched, matching the kinds whose payload is empty on the wire.
func DecodePayload(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return decMode.Unmarshal(data, v)
}
