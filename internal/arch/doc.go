// Package arch reads Keras-style JSON model architecture descriptions without building
// the model.
//
// Two document forms are recognized and classified up front by Parse:
//   - SequentialForm: a top-level list of layers, or {"config": [layers...]}
//   - FunctionalForm: {"config": {"layers": [layers...]}} (or {"layers": [...]})
//
// Anything else fails with ErrMalformedArchitecture. Each layer is an object with a
// "class_name" string and a "config" object.
//
// Key operations:
//   - InputShape: the first layer's batch_input_shape without the batch dimension
//   - NumClasses: the last "units" value found scanning layers bottom-up
//   - Describe: a human-readable top-to-bottom rendering of the layers
//   - WeightShapes: the ordered weight shapes, as the model's get_weights() would return them
//
// Example usage:
//
//	a, err := arch.Parse(modelJSON)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	input, _ := a.InputShape()
//	classes, _ := a.NumClasses()
//	fmt.Print(a.Describe())
package arch
