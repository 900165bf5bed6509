// Copyright 2025 The Cerebro Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the float32 arrays model weights are made of.
//
// # Overview
//
// A model's weights are a WeightSet: one Array per trainable weight, in the order the
// model reports them. Arrays are row-major and carry their Shape; the serialized forms
// produced by package weights do not.
//
// # Basic Usage
//
//	import "github.com/TrellixVulnTeam/cerebro-ds-KPGI/tensor"
//
//	func main() {
//	    kernel, _ := tensor.Zeros(tensor.Shape{784, 128})
//	    bias, _ := tensor.Zeros(tensor.Shape{128})
//	    ws := tensor.WeightSet{kernel, bias}
//
//	    fmt.Println(ws.Shapes())      // [(784, 128) (128,)]
//	    fmt.Println(ws.NumElements()) // 100480
//	}
//
// # Supported Data Types
//
// Arrays always hold float32. FromValues converts from any Go number type. Float16 is
// only used as a compact transport encoding, see package weights.
package tensor
