// Package aggregate implements the stages of the training aggregate over serialized
// states: Transition folds one batch into a worker's state, Merge combines two workers'
// states, Final closes an iteration, and ModelWeights extracts the weights that seed the
// next one.
//
// Every state crossing a stage boundary is a Form A buffer (see package serialization),
// optionally enveloped according to the configured Framing. A nil state means no batch
// has been processed yet and is accepted by every stage.
//
// Merging is a weighted average of the flat weights, weighted by the number of items each
// side has processed; the merged count is the sum of both counts. The operation is
// commutative and, up to float32 rounding, associative, so partial states can be merged
// in any tree shape.
package aggregate
