// Package coercion converts argument tokens into typed values.
//
// Every conversion reports how many tokens it consumed so that the dispatcher and
// the autocomplete engine can advance a shared cursor: one token for scalar types,
// up to the arity for vectors and colours, and every remaining token for a trailing
// string parameter. A failed conversion returns an error wrapping ErrCoercion and
// never panics.
package coercion

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"gonsole/internal/parser"
	"gonsole/pkg/consoletypes"
)

// ErrCoercion is wrapped by every conversion failure.
var ErrCoercion = errors.New("coercion failed")

var stringType = reflect.TypeOf("")

// Target describes the parameter a run of tokens is coerced into.
type Target struct {
	Param consoletypes.Parameter
	// Last is set for the final declared parameter of a signature; a string
	// parameter in that position absorbs all remaining tokens.
	Last bool
	// NumericBool enables 0/non-zero integers as booleans.
	NumericBool bool
}

// Result is a successfully coerced value.
type Result struct {
	Value    reflect.Value
	Consumed int
}

// Interface returns the coerced value as an interface.
func (r Result) Interface() any {
	if !r.Value.IsValid() {
		return nil
	}
	return r.Value.Interface()
}

// Coerce converts tokens starting at start into a value for target.
func Coerce(tokens []string, start int, target Target) (Result, error) {
	if start < 0 || start >= len(tokens) {
		return Result{}, fmt.Errorf("%w: no token for %s", ErrCoercion, describe(target.Param))
	}

	param := target.Param
	t := param.Type
	if t == nil {
		t = stringType
	}
	token := tokens[start]
	kind := param.Kind()

	switch kind {
	case consoletypes.KindBool:
		b, ok := ParseBool(token, target.NumericBool)
		if !ok {
			return Result{}, failure(token, param)
		}
		return scalar(reflect.ValueOf(b).Convert(t)), nil

	case consoletypes.KindEnum:
		v, ok := enumValue(token, param.Enum, t)
		if !ok {
			return Result{}, failure(token, param)
		}
		return scalar(v), nil

	case consoletypes.KindFloat:
		f, err := ParseFloat(token, t.Bits())
		if err != nil {
			return Result{}, failure(token, param)
		}
		v := reflect.New(t).Elem()
		v.SetFloat(f)
		return scalar(v), nil

	case consoletypes.KindChar:
		r, size := utf8.DecodeRuneInString(token)
		if size == 0 || r == utf8.RuneError {
			return Result{}, failure(token, param)
		}
		return scalar(reflect.ValueOf(consoletypes.Char(r)).Convert(t)), nil

	case consoletypes.KindString:
		consumed := 1
		text := parser.Unquote(token)
		if target.Last && start+1 < len(tokens) {
			parts := make([]string, 0, len(tokens)-start)
			for _, tok := range tokens[start:] {
				parts = append(parts, parser.Unquote(tok))
			}
			text = strings.Join(parts, " ")
			consumed = len(tokens) - start
		}
		return Result{Value: reflect.ValueOf(text).Convert(t), Consumed: consumed}, nil

	case consoletypes.KindInt:
		n, err := strconv.ParseInt(token, 10, t.Bits())
		if err != nil {
			return Result{}, failure(token, param)
		}
		v := reflect.New(t).Elem()
		v.SetInt(n)
		return scalar(v), nil

	case consoletypes.KindUint:
		n, err := strconv.ParseUint(token, 10, t.Bits())
		if err != nil {
			return Result{}, failure(token, param)
		}
		v := reflect.New(t).Elem()
		v.SetUint(n)
		return scalar(v), nil

	case consoletypes.KindVector2, consoletypes.KindVector3, consoletypes.KindVector4,
		consoletypes.KindColor, consoletypes.KindColor32:
		return coerceComposite(tokens, start, kind, param)

	default:
		v, err := convertGeneric(token, t)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %q is not a valid %s: %v", ErrCoercion, token, TypeName(param), err)
		}
		return scalar(v), nil
	}
}

// ParseBool accepts true/false case-insensitively and, when numeric is set, any
// integer where zero is false.
func ParseBool(token string, numeric bool) (bool, bool) {
	if numeric {
		if n, err := strconv.ParseInt(token, 10, 64); err == nil {
			return n != 0, true
		}
	}
	switch {
	case strings.EqualFold(token, "true"):
		return true, true
	case strings.EqualFold(token, "false"):
		return false, true
	default:
		return false, false
	}
}

// ParseFloat parses a float accepting ',' as decimal separator.
func ParseFloat(token string, bits int) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), bits)
}

// EnumMatch returns the enum member named token (case-insensitive) or, failing
// that, the member whose ordinal equals token parsed as an integer.
func EnumMatch(token string, values []consoletypes.EnumValue) (consoletypes.EnumValue, bool) {
	for _, ev := range values {
		if strings.EqualFold(ev.Name, token) {
			return ev, true
		}
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return consoletypes.EnumValue{}, false
	}
	for _, ev := range values {
		if ev.Value == n {
			return ev, true
		}
	}
	return consoletypes.EnumValue{}, false
}

func enumValue(token string, values []consoletypes.EnumValue, t reflect.Type) (reflect.Value, bool) {
	ev, ok := EnumMatch(token, values)
	if !ok {
		return reflect.Value{}, false
	}
	return enumToValue(ev, t)
}

func enumToValue(ev consoletypes.EnumValue, t reflect.Type) (reflect.Value, bool) {
	v := reflect.New(t).Elem()
	switch consoletypes.KindOf(t) {
	case consoletypes.KindInt:
		if v.OverflowInt(ev.Value) {
			return reflect.Value{}, false
		}
		v.SetInt(ev.Value)
	case consoletypes.KindUint:
		if ev.Value < 0 || v.OverflowUint(uint64(ev.Value)) {
			return reflect.Value{}, false
		}
		v.SetUint(uint64(ev.Value))
	case consoletypes.KindString:
		v.SetString(ev.Name)
	default:
		return reflect.Value{}, false
	}
	return v, true
}

func scalar(v reflect.Value) Result {
	return Result{Value: v, Consumed: 1}
}

func failure(token string, param consoletypes.Parameter) error {
	return fmt.Errorf("%w: %q is not a valid %s", ErrCoercion, token, TypeName(param))
}

func describe(param consoletypes.Parameter) string {
	if param.Name == "" {
		return TypeName(param)
	}
	return fmt.Sprintf("%s %s", TypeName(param), param.Name)
}
