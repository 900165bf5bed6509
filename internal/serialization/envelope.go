package serialization

import (
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// WrapOptions configures the envelope written by Wrap.
type WrapOptions struct {
	ElementType tensor.DataType // Payload element type; Float16 halves the size at a precision cost
	Checksum    bool            // Append a SHA-256 of the payload
	Counter     bool            // buf is Form A: its counter is kept as float32 whatever ElementType is
}

// payloadSize returns the payload bytes of count elements. With a counter, the first
// element always takes ElementSize bytes.
func payloadSize(count int, dtype tensor.DataType, counter bool) int {
	if counter && count > 0 {
		return ElementSize + (count-1)*dtype.Size()
	}
	return count * dtype.Size()
}

// IsWrapped reports whether buf starts with the envelope magic bytes.
func IsWrapped(buf []byte) bool {
	return len(buf) >= EnvelopeSize && string(buf[:len(MagicBytes)]) == MagicBytes
}

// Wrap puts a header-less float32 buffer (Form A or Form B) inside a versioned envelope.
// Absent input yields nil.
func Wrap(buf []byte, opts WrapOptions) ([]byte, error) {
	values, err := BytesToFloat32s(buf)
	if err != nil || values == nil {
		return nil, err
	}
	code, ok := elementTypeCode(opts.ElementType)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedDType, "%s", opts.ElementType)
	}

	var flags uint8
	if opts.Checksum {
		flags |= FlagChecksum
	}
	if opts.Counter {
		flags |= FlagCounter
	}
	size := payloadSize(len(values), opts.ElementType, opts.Counter)
	out := make([]byte, EnvelopeSize, EnvelopeSize+size+ChecksumSize)
	copy(out, MagicBytes)
	ByteOrder.PutUint16(out[4:], EnvelopeVersion)
	out[6] = code
	out[7] = flags
	ByteOrder.PutUint64(out[8:], uint64(len(values)))

	switch opts.ElementType {
	case tensor.Float16:
		payload := make([]byte, size)
		off := 0
		if opts.Counter {
			ByteOrder.PutUint32(payload, math.Float32bits(values[0]))
			values, off = values[1:], ElementSize
		}
		for i, v := range values {
			ByteOrder.PutUint16(payload[off+i*2:], float16.Fromfloat32(v).Bits())
		}
		out = append(out, payload...)
	default:
		out = append(out, buf...)
	}

	if opts.Checksum {
		sum := ComputeChecksum(out[EnvelopeSize:])
		out = append(out, sum[:]...)
	}
	return out, nil
}

// Unwrap validates an envelope and returns its content as a header-less float32 buffer.
// Absent input yields nil.
func Unwrap(buf []byte) ([]byte, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf) < EnvelopeSize {
		return nil, errors.Wrapf(ErrTruncatedBuffer, "envelope needs %d bytes, got %d", EnvelopeSize, len(buf))
	}
	if string(buf[:len(MagicBytes)]) != MagicBytes {
		return nil, errors.Wrapf(ErrInvalidMagic, "got %q", buf[:len(MagicBytes)])
	}
	if version := ByteOrder.Uint16(buf[4:]); version != EnvelopeVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", version)
	}
	dtype, ok := codeToElementType(buf[6])
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedDType, "code %d", buf[6])
	}
	flags := buf[7]
	count := ByteOrder.Uint64(buf[8:])
	if err := checkCount(count); err != nil {
		return nil, err
	}

	counter := flags&FlagCounter != 0
	size := payloadSize(int(count), dtype, counter)
	want := EnvelopeSize + size
	if flags&FlagChecksum != 0 {
		want += ChecksumSize
	}
	if len(buf) != want {
		return nil, errors.Wrapf(ErrTruncatedBuffer, "envelope of %d %s values needs %d bytes, got %d",
			count, dtype, want, len(buf))
	}
	payload := buf[EnvelopeSize : EnvelopeSize+size]

	if flags&FlagChecksum != 0 {
		var stored [ChecksumSize]byte
		copy(stored[:], buf[EnvelopeSize+size:])
		if err := ValidateChecksum(ComputeChecksum(payload), stored); err != nil {
			return nil, err
		}
	}

	if dtype == tensor.Float32 {
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}
	out := make([]byte, int(count)*ElementSize)
	start := 0
	if counter && count > 0 {
		copy(out, payload[:ElementSize])
		payload, start = payload[ElementSize:], 1
	}
	for i := start; i < int(count); i++ {
		v := float16.Frombits(ByteOrder.Uint16(payload[(i-start)*2:])).Float32()
		ByteOrder.PutUint32(out[i*ElementSize:], math.Float32bits(v))
	}
	return out, nil
}

// Framing selects how buffers travel between stages: header-less (the zero value) or
// inside an envelope.
type Framing struct {
	Enveloped bool
	Options   WrapOptions
}

// Seal prepares a header-less buffer for transport.
func (f Framing) Seal(buf []byte) ([]byte, error) {
	if !f.Enveloped {
		return buf, nil
	}
	return Wrap(buf, f.Options)
}

// SealState is Seal for Form A buffers: the counter never loses precision.
func (f Framing) SealState(buf []byte) ([]byte, error) {
	if !f.Enveloped {
		return buf, nil
	}
	opts := f.Options
	opts.Counter = true
	return Wrap(buf, opts)
}

// Open returns the header-less content of a buffer produced by Seal or SealState.
func (f Framing) Open(buf []byte) ([]byte, error) {
	if !f.Enveloped {
		return buf, nil
	}
	return Unwrap(buf)
}
