package commands

import (
	"fmt"
	"reflect"
	"strings"

	"gonsole/internal/coercion"
	"gonsole/pkg/consoletypes"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Signature is one overload of a command. It is immutable once registered.
type Signature struct {
	Key            string
	Parameters     []consoletypes.Parameter
	Priority       int
	HiddenPriority int
	Description    string
	Native         bool

	DisableNumericBoolProcessing bool
	DisableListing               bool
	DisableAutoCompletion        bool

	handler reflect.Value
	order   int
}

// Order is the registration sequence number of the signature within its snapshot.
func (s *Signature) Order() int {
	return s.order
}

// Required returns the number of leading parameters that must be supplied.
func (s *Signature) Required() int {
	n := 0
	for _, p := range s.Parameters {
		if !p.Optional {
			n++
		}
	}
	return n
}

// NumericBool reports whether integer tokens may stand for booleans in this signature.
func (s *Signature) NumericBool(settings consoletypes.Settings) bool {
	return settings.NumericBoolProcessing && !s.DisableNumericBoolProcessing
}

// Invoke calls the handler with positional arguments. Trailing error returns are
// split off into err; a handler panic is recovered into err.
func (s *Signature) Invoke(args []reflect.Value) (results []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("command %q panicked: %v", s.Key, r)
		}
	}()

	out := s.handler.Call(args)
	for i, v := range out {
		if i == len(out)-1 && v.Type().Implements(errorType) {
			if !isNilValue(v) {
				err = v.Interface().(error)
			}
			continue
		}
		results = append(results, v.Interface())
	}
	return results, err
}

// Usage renders the signature as "key <int a> [bool b = false]".
func (s *Signature) Usage() string {
	var sb strings.Builder
	sb.WriteString(s.Key)
	for _, p := range s.Parameters {
		sb.WriteByte(' ')
		sb.WriteString(ParameterUsage(p))
	}
	return sb.String()
}

// ParameterUsage renders one parameter as "<type name>" or "[type name = default]".
func ParameterUsage(p consoletypes.Parameter) string {
	text := coercion.TypeName(p)
	if p.Name != "" {
		text += " " + p.Name
	}
	if !p.Optional {
		return "<" + text + ">"
	}
	if v, err := coercion.DefaultValue(p); err == nil {
		if lit := coercion.Literal(p, v.Interface()); lit != "" {
			text += " = " + lit
		}
	}
	return "[" + text + "]"
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}
