// Package consoletypes defines the shared types of the gonsole command interpreter.
// This file contains the value kinds understood by the coercion engine and the
// composite numeric types (vectors and colours) that commands may accept.
package consoletypes

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ValueKind classifies a parameter or member type for coercion and completion.
type ValueKind int

const (
	// KindOther is converted through the generic string-to-type conversion.
	KindOther ValueKind = iota
	// KindBool accepts true/false and, when enabled, numeric booleans.
	KindBool
	// KindChar takes the first character of a token.
	KindChar
	// KindString is a free-text value; the last string parameter absorbs trailing tokens.
	KindString
	// KindInt covers signed integers of any width.
	KindInt
	// KindUint covers unsigned integers of any width.
	KindUint
	// KindFloat accepts both '.' and ',' as decimal separator.
	KindFloat
	// KindEnum matches member names, then ordinal values.
	KindEnum
	// KindVector2 is a two-component float vector.
	KindVector2
	// KindVector3 is a three-component float vector.
	KindVector3
	// KindVector4 is a four-component float vector.
	KindVector4
	// KindColor is an RGBA colour with float components.
	KindColor
	// KindColor32 is an RGBA colour with byte components.
	KindColor32
)

// String returns the lower-case name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindVector2:
		return "vector2"
	case KindVector3:
		return "vector3"
	case KindVector4:
		return "vector4"
	case KindColor:
		return "color"
	case KindColor32:
		return "color32"
	default:
		return "other"
	}
}

// Arity returns how many tokens a value of this kind may consume.
func (k ValueKind) Arity() int {
	switch k {
	case KindVector2:
		return 2
	case KindVector3:
		return 3
	case KindVector4, KindColor, KindColor32:
		return 4
	default:
		return 1
	}
}

// IsComposite reports whether the kind spans several tokens.
func (k ValueKind) IsComposite() bool {
	return k.Arity() > 1
}

// ComponentNames returns the short component labels used in hints (x, y, z... or r, g, b, a).
func (k ValueKind) ComponentNames() []string {
	switch k {
	case KindVector2:
		return []string{"x", "y"}
	case KindVector3:
		return []string{"x", "y", "z"}
	case KindVector4:
		return []string{"x", "y", "z", "w"}
	case KindColor, KindColor32:
		return []string{"r", "g", "b", "a"}
	default:
		return nil
	}
}

// Char is a single character parameter. It is distinct from rune so that the
// coercion engine can tell characters apart from 32-bit integers.
type Char rune

// String returns the character as a one-rune string.
func (c Char) String() string {
	return string(rune(c))
}

// Vector2 is a two-component vector.
type Vector2 struct {
	X, Y float64
}

// Vector3 is a three-component vector.
type Vector3 struct {
	X, Y, Z float64
}

// Vector4 is a four-component vector.
type Vector4 struct {
	X, Y, Z, W float64
}

// Color is an RGBA colour with float components, usually in the 0..1 range.
type Color struct {
	R, G, B, A float64
}

// Color32 is an RGBA colour with 0..255 byte components.
type Color32 struct {
	R, G, B, A uint8
}

func (v Vector2) String() string { return formatComponents(v.X, v.Y) }
func (v Vector3) String() string { return formatComponents(v.X, v.Y, v.Z) }
func (v Vector4) String() string { return formatComponents(v.X, v.Y, v.Z, v.W) }
func (c Color) String() string   { return formatComponents(c.R, c.G, c.B, c.A) }

func (c Color32) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

func formatComponents(values ...float64) string {
	s := "("
	for i, v := range values {
		if i > 0 {
			s += ", "
		}
		s += strconv.FormatFloat(v, 'g', -1, 64)
	}
	return s + ")"
}

var (
	charType    = reflect.TypeOf(Char(0))
	vector2Type = reflect.TypeOf(Vector2{})
	vector3Type = reflect.TypeOf(Vector3{})
	vector4Type = reflect.TypeOf(Vector4{})
	colorType   = reflect.TypeOf(Color{})
	color32Type = reflect.TypeOf(Color32{})

	durationType = reflect.TypeOf(time.Duration(0))
)

// KindOf classifies a Go type. Enumerations cannot be recognised from the type
// alone; see Parameter.Kind.
func KindOf(t reflect.Type) ValueKind {
	if t == nil {
		return KindOther
	}
	switch t {
	case charType:
		return KindChar
	case vector2Type:
		return KindVector2
	case vector3Type:
		return KindVector3
	case vector4Type:
		return KindVector4
	case colorType:
		return KindColor
	case color32Type:
		return KindColor32
	case durationType:
		return KindOther
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	default:
		return KindOther
	}
}
