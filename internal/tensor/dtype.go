// Package tensor provides the array types exchanged between training stages:
// shapes, element types and dense row-major float32 arrays.
package tensor

// Number is a constraint for the element types a weight array can be built from.
// Values are always stored as float32.
type Number interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// DataType represents the element type used on the wire.
type DataType int

// Supported wire element types.
const (
	Float32 DataType = iota
	Float16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float16:
		return 2
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	default:
		return "unknown"
	}
}

// ParseDataType is the inverse of DataType.String.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32", "":
		return Float32, true
	case "float16":
		return Float16, true
	default:
		return 0, false
	}
}
