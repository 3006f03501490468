// Package value provides the typed value cell used by preference settings.
//
// A Value is a closed tagged variant: every supported kind is a member of the
// Kind enumeration and every operation over values (assignment, equality,
// persistence encoding) switches exhaustively over it. Adding a new kind is a
// compiler-checked change rather than a runtime type-inspection hazard.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Kind identifies the data type held by a Value.
type Kind uint8

const (
	// KindBool holds a boolean toggle.
	KindBool Kind = iota
	// KindInt holds an integer.
	KindInt
	// KindFloat holds a double-precision number.
	KindFloat
	// KindString holds free-form text.
	KindString
	// KindStringList holds an ordered list of strings.
	KindStringList
	// KindSelection holds one choice out of a fixed item list.
	KindSelection
	// KindMultiSelection holds any number of choices out of a fixed item list.
	KindMultiSelection
	// KindColor holds a color, persisted as a hex string.
	KindColor
	// KindFile holds a filesystem path.
	KindFile
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindStringList:
		return "stringList"
	case KindSelection:
		return "selection"
	case KindMultiSelection:
		return "multiSelection"
	case KindColor:
		return "color"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// IsList reports whether the kind persists as an ordered sequence rather
// than a scalar. Storage handlers must route list kinds through their
// list operations so round-trips preserve order and element count.
func (k Kind) IsList() bool {
	return k == KindStringList || k == KindMultiSelection
}

// Value is a mutable typed cell. The zero Value is not usable; construct
// values with the Of* constructors.
type Value struct {
	kind Kind

	b bool
	i int
	f float64
	s string // KindString text, KindSelection choice, KindColor hex, KindFile path

	items []string // candidate items for selection kinds
	list  []string // KindStringList elements, KindMultiSelection choices
}

// OfBool constructs a boolean value.
func OfBool(v bool) *Value {
	return &Value{kind: KindBool, b: v}
}

// OfInt constructs an integer value.
func OfInt(v int) *Value {
	return &Value{kind: KindInt, i: v}
}

// OfFloat constructs a floating-point value.
func OfFloat(v float64) *Value {
	return &Value{kind: KindFloat, f: v}
}

// OfString constructs a text value.
func OfString(v string) *Value {
	return &Value{kind: KindString, s: v}
}

// OfStringList constructs an ordered list value. The slice is copied.
func OfStringList(v []string) *Value {
	return &Value{kind: KindStringList, list: cloneStrings(v)}
}

// OfSelection constructs a single-selection value over the given items.
// An empty selected string means no current choice.
func OfSelection(items []string, selected string) *Value {
	return &Value{kind: KindSelection, items: cloneStrings(items), s: selected}
}

// OfMultiSelection constructs a multi-selection value over the given items.
func OfMultiSelection(items, selected []string) *Value {
	return &Value{
		kind:  KindMultiSelection,
		items: cloneStrings(items),
		list:  cloneStrings(selected),
	}
}

// OfColor constructs a color value from a parsed color.
func OfColor(c colorful.Color) *Value {
	return &Value{kind: KindColor, s: c.Hex()}
}

// OfColorHex constructs a color value from a hex string such as "#1e90ff".
func OfColorHex(hex string) (*Value, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("parse color %q: %w", hex, err)
	}
	return &Value{kind: KindColor, s: c.Hex()}, nil
}

// OfFile constructs a file path value.
func OfFile(path string) *Value {
	return &Value{kind: KindFile, s: path}
}

// Kind returns the value's kind.
func (v *Value) Kind() Kind {
	return v.kind
}

// Bool returns the boolean payload. Valid only for KindBool.
func (v *Value) Bool() bool {
	return v.b
}

// Int returns the integer payload. Valid only for KindInt.
func (v *Value) Int() int {
	return v.i
}

// Float returns the floating-point payload. Valid only for KindFloat.
func (v *Value) Float() float64 {
	return v.f
}

// Text returns the string payload for KindString, the current choice for
// KindSelection, the hex string for KindColor, and the path for KindFile.
func (v *Value) Text() string {
	return v.s
}

// Elements returns a copy of the list payload for KindStringList and the
// current choices for KindMultiSelection.
func (v *Value) Elements() []string {
	return cloneStrings(v.list)
}

// Items returns a copy of the candidate items for selection kinds.
func (v *Value) Items() []string {
	return cloneStrings(v.items)
}

// Color returns the parsed color payload. Valid only for KindColor.
func (v *Value) Color() (colorful.Color, error) {
	if v.kind != KindColor {
		return colorful.Color{}, fmt.Errorf("value is %s, not color", v.kind)
	}
	return colorful.Hex(v.s)
}

// Clone returns a deep copy of the value.
func (v *Value) Clone() *Value {
	c := &Value{
		kind: v.kind,
		b:    v.b,
		i:    v.i,
		f:    v.f,
		s:    v.s,
	}
	c.items = cloneStrings(v.items)
	c.list = cloneStrings(v.list)
	return c
}

// Equal reports whether two values have the same kind and payload.
// Candidate items of selection kinds participate in equality: two
// selections over different item sets are distinct values.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString, KindColor, KindFile:
		return v.s == other.s
	case KindStringList:
		return equalStrings(v.list, other.list)
	case KindSelection:
		return v.s == other.s && equalStrings(v.items, other.items)
	case KindMultiSelection:
		return equalStrings(v.list, other.list) && equalStrings(v.items, other.items)
	default:
		return false
	}
}

// Assign copies the payload of other into v. The kinds must match; for
// selection kinds the chosen item(s) must be members of v's item list.
func (v *Value) Assign(other *Value) error {
	if other == nil {
		return fmt.Errorf("assign nil value")
	}
	if v.kind != other.kind {
		return fmt.Errorf("assign %s value to %s cell", other.kind, v.kind)
	}
	switch v.kind {
	case KindBool:
		v.b = other.b
	case KindInt:
		v.i = other.i
	case KindFloat:
		v.f = other.f
	case KindString, KindColor, KindFile:
		v.s = other.s
	case KindStringList:
		v.list = cloneStrings(other.list)
	case KindSelection:
		if other.s != "" && !containsString(v.items, other.s) {
			return fmt.Errorf("selection %q is not an item", other.s)
		}
		v.s = other.s
	case KindMultiSelection:
		for _, sel := range other.list {
			if !containsString(v.items, sel) {
				return fmt.Errorf("selection %q is not an item", sel)
			}
		}
		v.list = cloneStrings(other.list)
	default:
		return fmt.Errorf("assign to unknown kind %d", v.kind)
	}
	return nil
}

// Candidate builds a Value of v's kind from a plain Go value, suitable for
// validation and assignment. Accepted inputs per kind:
//
//	KindBool            bool
//	KindInt             int, int64, float64 (integral)
//	KindFloat           float64, float32, int
//	KindString          string
//	KindStringList      []string
//	KindSelection       string (must be an item or empty)
//	KindMultiSelection  []string (each must be an item)
//	KindColor           string hex, colorful.Color
//	KindFile            string
func (v *Value) Candidate(raw any) (*Value, error) {
	switch v.kind {
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return OfBool(b), nil
	case KindInt:
		switch n := raw.(type) {
		case int:
			return OfInt(n), nil
		case int64:
			return OfInt(int(n)), nil
		case float64:
			if n != float64(int(n)) {
				return nil, fmt.Errorf("expected integer, got %v", n)
			}
			return OfInt(int(n)), nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", raw)
		}
	case KindFloat:
		switch n := raw.(type) {
		case float64:
			return OfFloat(n), nil
		case float32:
			return OfFloat(float64(n)), nil
		case int:
			return OfFloat(float64(n)), nil
		default:
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return OfString(s), nil
	case KindStringList:
		l, err := asStringSlice(raw)
		if err != nil {
			return nil, err
		}
		return OfStringList(l), nil
	case KindSelection:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string selection, got %T", raw)
		}
		return OfSelection(v.items, s), nil
	case KindMultiSelection:
		l, err := asStringSlice(raw)
		if err != nil {
			return nil, err
		}
		return OfMultiSelection(v.items, l), nil
	case KindColor:
		switch c := raw.(type) {
		case string:
			return OfColorHex(c)
		case colorful.Color:
			return OfColor(c), nil
		default:
			return nil, fmt.Errorf("expected color, got %T", raw)
		}
	case KindFile:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected path string, got %T", raw)
		}
		return OfFile(s), nil
	default:
		return nil, fmt.Errorf("unknown kind %d", v.kind)
	}
}

// Scalar returns the persistence representation of a non-list value:
// bool, int, float64, or string. List kinds persist through Elements.
func (v *Value) Scalar() (any, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindInt:
		return v.i, nil
	case KindFloat:
		return v.f, nil
	case KindString, KindSelection, KindColor, KindFile:
		return v.s, nil
	case KindStringList, KindMultiSelection:
		return nil, fmt.Errorf("%s persists as a list, not a scalar", v.kind)
	default:
		return nil, fmt.Errorf("unknown kind %d", v.kind)
	}
}

// ApplyScalar sets the payload from a persistence representation,
// coercing the loose numeric types produced by JSON decoding.
func (v *Value) ApplyScalar(raw any) error {
	switch v.kind {
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("stored value for bool cell is %T", raw)
		}
		v.b = b
	case KindInt:
		switch n := raw.(type) {
		case int:
			v.i = n
		case int64:
			v.i = int(n)
		case float64:
			v.i = int(n)
		default:
			return fmt.Errorf("stored value for int cell is %T", raw)
		}
	case KindFloat:
		switch n := raw.(type) {
		case float64:
			v.f = n
		case int:
			v.f = float64(n)
		case int64:
			v.f = float64(n)
		default:
			return fmt.Errorf("stored value for float cell is %T", raw)
		}
	case KindString, KindFile:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("stored value for %s cell is %T", v.kind, raw)
		}
		v.s = s
	case KindSelection:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("stored value for selection cell is %T", raw)
		}
		// A stored choice that is no longer an item is dropped rather than
		// resurrected, so stale persisted selections cannot escape the item set.
		if s != "" && !containsString(v.items, s) {
			return nil
		}
		v.s = s
	case KindColor:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("stored value for color cell is %T", raw)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return fmt.Errorf("stored color %q: %w", s, err)
		}
		v.s = c.Hex()
	case KindStringList, KindMultiSelection:
		return fmt.Errorf("%s loads as a list, not a scalar", v.kind)
	default:
		return fmt.Errorf("unknown kind %d", v.kind)
	}
	return nil
}

// ApplyElements sets the payload of a list kind from its persistence
// representation. Multi-selection choices outside the item set are dropped.
func (v *Value) ApplyElements(elems []string) error {
	switch v.kind {
	case KindStringList:
		v.list = cloneStrings(elems)
	case KindMultiSelection:
		kept := make([]string, 0, len(elems))
		for _, e := range elems {
			if containsString(v.items, e) {
				kept = append(kept, e)
			}
		}
		v.list = kept
	default:
		return fmt.Errorf("%s does not load as a list", v.kind)
	}
	return nil
}

// String renders the payload for display and debugging.
func (v *Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.Itoa(v.i)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString, KindSelection, KindColor, KindFile:
		return v.s
	case KindStringList, KindMultiSelection:
		return "[" + strings.Join(v.list, ", ") + "]"
	default:
		return "<unknown>"
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsString(s []string, target string) bool {
	for _, v := range s {
		if v == target {
			return true
		}
	}
	return false
}

func asStringSlice(raw any) ([]string, error) {
	switch l := raw.(type) {
	case []string:
		return l, nil
	case []any:
		out := make([]string, len(l))
		for i, e := range l {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("list element %d is %T, not string", i, e)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string list, got %T", raw)
	}
}
