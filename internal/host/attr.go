package host

import (
	"errors"
	"fmt"

	"github.com/Faultbox/seedexport/pkg/math"
)

// Float reads a numeric attribute.
func Float(s Scene, node, attr string) (float64, error) {
	v, err := s.Attribute(node, attr)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, mismatch(node, attr, "number", v)
}

// Int reads an integer attribute. Floats are truncated.
func Int(s Scene, node, attr string) (int, error) {
	f, err := Float(s, node, attr)
	return int(f), err
}

// Bool reads a boolean attribute. Numbers are true when non-zero.
func Bool(s Scene, node, attr string) (bool, error) {
	v, err := s.Attribute(node, attr)
	if err != nil {
		return false, err
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case int:
		return x != 0, nil
	case float64:
		return x != 0, nil
	}
	return false, mismatch(node, attr, "bool", v)
}

// String reads a string attribute. Numbers and booleans are formatted.
func String(s Scene, node, attr string) (string, error) {
	v, err := s.Attribute(node, attr)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case int, float64, bool:
		return fmt.Sprint(x), nil
	}
	return "", mismatch(node, attr, "string", v)
}

// Color reads a three-channel attribute. A scalar is returned as gray.
func Color(s Scene, node, attr string) (math.Vec3, error) {
	v, err := s.Attribute(node, attr)
	if err != nil {
		return math.Vec3{}, err
	}
	switch x := v.(type) {
	case math.Vec3:
		return x, nil
	case [3]float64:
		return math.Vec3{X: x[0], Y: x[1], Z: x[2]}, nil
	case []float64:
		if len(x) == 3 {
			return math.Vec3{X: x[0], Y: x[1], Z: x[2]}, nil
		}
	case float64:
		return math.Vec3{X: x, Y: x, Z: x}, nil
	case int:
		f := float64(x)
		return math.Vec3{X: f, Y: f, Z: f}, nil
	}
	return math.Vec3{}, mismatch(node, attr, "color", v)
}

// FloatOr reads a numeric attribute, returning def when the node has no
// such attribute. Other failures are returned.
func FloatOr(s Scene, node, attr string, def float64) (float64, error) {
	v, err := Float(s, node, attr)
	if errors.Is(err, ErrMissingAttribute) {
		return def, nil
	}
	return v, err
}

// BoolOr is the Bool counterpart of FloatOr.
func BoolOr(s Scene, node, attr string, def bool) (bool, error) {
	v, err := Bool(s, node, attr)
	if errors.Is(err, ErrMissingAttribute) {
		return def, nil
	}
	return v, err
}

// StringOr is the String counterpart of FloatOr.
func StringOr(s Scene, node, attr string, def string) (string, error) {
	v, err := String(s, node, attr)
	if errors.Is(err, ErrMissingAttribute) {
		return def, nil
	}
	return v, err
}

func mismatch(node, attr, want string, got any) error {
	return NewQueryError(node, attr, fmt.Errorf("%w: want %s, got %T", ErrTypeMismatch, want, got))
}

// Visible reports whether a DAG node is drawn on its own: visibility is on,
// it is not an intermediate object, and no display override hides it.
// Ancestors are not consulted; callers walking the hierarchy combine the
// result with the parent's.
func Visible(s Scene, node string) (bool, error) {
	visible, err := BoolOr(s, node, "visibility", true)
	if err != nil || !visible {
		return false, err
	}
	intermediate, err := BoolOr(s, node, "intermediateObject", false)
	if err != nil || intermediate {
		return false, err
	}
	override, err := BoolOr(s, node, "overrideEnabled", false)
	if err != nil || !override {
		return err == nil, err
	}
	return BoolOr(s, node, "overrideVisibility", true)
}
