package arch

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Typed accessors over a layer's raw config. Every accessor reports ok=false when the key is
// absent or explicitly null, and an ErrMalformedArchitecture when the value has the wrong type.

func (l Layer) raw(key string) (json.RawMessage, bool) {
	raw, ok := l.Config[key]
	if !ok || strings.TrimSpace(string(raw)) == "null" {
		return nil, false
	}
	return raw, true
}

func (l Layer) intParam(key string) (int, bool, error) {
	raw, ok := l.raw(key)
	if !ok {
		return 0, false, nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false, errors.Wrapf(ErrMalformedArchitecture, "%s.%s: %v", l.ClassName, key, err)
	}
	return v, true, nil
}

func (l Layer) stringParam(key string) (string, bool, error) {
	raw, ok := l.raw(key)
	if !ok {
		return "", false, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false, errors.Wrapf(ErrMalformedArchitecture, "%s.%s: %v", l.ClassName, key, err)
	}
	return v, true, nil
}

func (l Layer) boolParam(key string, def bool) (bool, error) {
	raw, ok := l.raw(key)
	if !ok {
		return def, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return def, errors.Wrapf(ErrMalformedArchitecture, "%s.%s: %v", l.ClassName, key, err)
	}
	return v, nil
}

// pairParam reads window sizes such as kernel_size or strides, given either as [h, w] or
// as a single integer applying to both dimensions. Both values must be positive.
func (l Layer) pairParam(key string) ([2]int, bool, error) {
	raw, ok := l.raw(key)
	if !ok {
		return [2]int{}, false, nil
	}
	var out [2]int
	var single int
	if err := json.Unmarshal(raw, &single); err == nil {
		out = [2]int{single, single}
	} else {
		var pair []int
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return [2]int{}, false, errors.Wrapf(ErrMalformedArchitecture, "%s.%s: want an int or a pair, got %s",
				l.ClassName, key, raw)
		}
		out = [2]int{pair[0], pair[1]}
	}
	if out[0] <= 0 || out[1] <= 0 {
		return [2]int{}, false, errors.Wrapf(ErrMalformedArchitecture, "%s.%s: must be positive, got %s",
			l.ClassName, key, raw)
	}
	return out, true, nil
}

func (l Layer) intsParam(key string) ([]int, bool, error) {
	raw, ok := l.raw(key)
	if !ok {
		return nil, false, nil
	}
	var v []int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, errors.Wrapf(ErrMalformedArchitecture, "%s.%s: %v", l.ClassName, key, err)
	}
	return v, true, nil
}
