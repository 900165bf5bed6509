// Package serialization implements the weight state wire format exchanged between the
// fit-transition, fit-merge and fit-final stages of the training aggregate.
//
// Every buffer is a header-less sequence of little-endian IEEE-754 float32 values:
//
//	Form A (state):        [counter, w0, w1, ..., wN-1]
//	Form B (flat weights): [w0, w1, ..., wN-1]
//
// Shapes are never embedded. Decoding nd weights requires the ordered list of layer shapes,
// and the total element count implied by those shapes must equal the number of floats in
// the buffer; a mismatch is reported as ErrShapeMismatch and must abort the stage.
//
// A nil or empty input means "no state yet" and decodes to nil without an error.
//
// Optionally, a buffer can be wrapped in a small versioned envelope (see Wrap) carrying
// the element type, element count and a SHA-256 checksum:
//
//	[4 bytes: Magic "CSTW"]
//	[2 bytes: Version (uint16 LE)]
//	[1 byte:  Element type (0 = float32, 1 = float16)]
//	[1 byte:  Flags (bit 0 checksum, bit 1 counter)]
//	[8 bytes: Element count (uint64 LE)]
//	[payload; with the counter flag, the first element is float32 whatever the type]
//	[32 bytes: SHA-256 of payload, if FlagChecksum]
//
// Example usage:
//
//	buf := serialization.EncodeND(model.Weights())
//	weights, err := serialization.DecodeND(buf, shapes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	state := serialization.Combine(imageCount, weights.Flatten())
//	s, err := serialization.Split(state)
package serialization
