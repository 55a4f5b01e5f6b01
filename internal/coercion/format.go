package coercion

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"gonsole/internal/parser"
	"gonsole/pkg/consoletypes"
)

// TypeName returns the display name of a parameter type used in hints and usage lines.
func TypeName(param consoletypes.Parameter) string {
	t := param.Type
	switch kind := param.Kind(); kind {
	case consoletypes.KindEnum:
		if t != nil && t.Name() != "" {
			return t.Name()
		}
		return "enum"
	case consoletypes.KindChar:
		return "char"
	case consoletypes.KindVector2:
		return "Vector2"
	case consoletypes.KindVector3:
		return "Vector3"
	case consoletypes.KindVector4:
		return "Vector4"
	case consoletypes.KindColor:
		return "Color"
	case consoletypes.KindColor32:
		return "Color32"
	default:
		if t == nil {
			return "string"
		}
		if t.Name() != "" && t.PkgPath() == "" {
			return t.Name()
		}
		return t.String()
	}
}

// Literal renders value the way a user would type it for param: enum members by
// name, vectors and colours as space-separated components, strings quoted only
// when they contain spaces.
func Literal(param consoletypes.Parameter, value any) string {
	if value == nil {
		return ""
	}

	if param.Kind() == consoletypes.KindEnum {
		if n, ok := integerOf(value); ok {
			for _, ev := range param.Enum {
				if ev.Value == n {
					return ev.Name
				}
			}
		}
		if s, ok := value.(string); ok {
			return s
		}
	}

	if components := Components(value); components != nil {
		parts := make([]string, len(components))
		for i, c := range components {
			parts[i] = strconv.FormatFloat(c, 'g', -1, 64)
		}
		return strings.Join(parts, " ")
	}

	switch v := value.(type) {
	case string:
		if strings.Contains(v, " ") {
			return parser.Quote(v)
		}
		return v
	case consoletypes.Char:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(value)
	}
}

// DefaultValue returns the default of an optional parameter converted to its type,
// or the zero value when the descriptor gives none.
func DefaultValue(param consoletypes.Parameter) (reflect.Value, error) {
	t := param.Type
	if t == nil {
		t = stringType
	}
	if param.Default == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(param.Default)
	switch {
	case v.Type() == t:
		return v, nil
	case v.Type().AssignableTo(t):
		out := reflect.New(t).Elem()
		out.Set(v)
		return out, nil
	case v.Type().ConvertibleTo(t) && !isLossyConversion(v.Type(), t):
		return v.Convert(t), nil
	}

	if s, ok := param.Default.(string); ok {
		res, err := Coerce([]string{s}, 0, Target{Param: param})
		if err == nil {
			return res.Value, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("default %v (%T) is not assignable to %s", param.Default, param.Default, t)
}

// isLossyConversion rejects Go conversions that are legal but meaningless for
// defaults, such as int to string.
func isLossyConversion(from, to reflect.Type) bool {
	return to.Kind() == reflect.String && from.Kind() != reflect.String
}

func integerOf(value any) (int64, bool) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint()), true
	default:
		return 0, false
	}
}
