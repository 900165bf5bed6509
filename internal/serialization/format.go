package serialization

import (
	"encoding/binary"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// Format constants.
const (
	ElementSize     = 4 // Bytes per float32 on the wire
	MagicBytes      = "CSTW"
	EnvelopeVersion = 1
	EnvelopeSize    = 4 + 2 + 1 + 1 + 8 // magic + version + element type + flags + count
	ChecksumSize    = 32                // SHA-256 checksum size
)

// Flags for the envelope.
const (
	FlagChecksum uint8 = 1 << 0 // bit 0: SHA-256 of the payload follows it
	FlagCounter  uint8 = 1 << 1 // bit 1: first element is a Form A counter, stored as float32
)

// ByteOrder is the byte order of every value on the wire.
var ByteOrder = binary.LittleEndian

// elementTypeCode maps a tensor.DataType to its envelope code.
func elementTypeCode(dt tensor.DataType) (uint8, bool) {
	switch dt {
	case tensor.Float32:
		return 0, true
	case tensor.Float16:
		return 1, true
	default:
		return 0, false
	}
}

// codeToElementType is the inverse of elementTypeCode.
func codeToElementType(code uint8) (tensor.DataType, bool) {
	switch code {
	case 0:
		return tensor.Float32, true
	case 1:
		return tensor.Float16, true
	default:
		return 0, false
	}
}
