// Copyright 2025 The Cerebro Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package weights serializes model weights for the stages of an aggregate training
// pipeline and reads the model architectures they belong to.
//
// # Wire format
//
// Buffers are little-endian float32 sequences with no header:
//
//	Form A (state):   [count, w0, w1, ..., wN-1]
//	Form B (weights): [w0, w1, ..., wN-1]
//
// Shapes are never stored in the buffer; decoding needs the ordered shapes of the model,
// usually held by a Registry. Absent input (nil) is never an error and yields nil.
//
// # Basic Usage
//
//	import (
//	    "github.com/TrellixVulnTeam/cerebro-ds-KPGI/tensor"
//	    "github.com/TrellixVulnTeam/cerebro-ds-KPGI/weights"
//	)
//
//	func main() {
//	    a, _ := weights.ParseArchitectureFile("model.json")
//	    reg, _ := weights.RegistryFromArchitecture(a)
//
//	    buf := weights.Combine(128, flat)     // state after 128 items
//	    st, _ := weights.Split(buf)           // st.Count == 128
//	    ws, _ := reg.Unflatten(st.Weights)    // one tensor.Array per layer weight
//	}
//
// # Envelope
//
// Wrap puts a buffer inside an optional versioned envelope carrying the element count,
// the element type (float32 or float16) and a SHA-256 of the payload. Unwrap always gives
// back the header-less float32 form.
package weights
