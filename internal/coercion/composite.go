package coercion

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"gonsole/pkg/consoletypes"
)

// CleanComponent strips the structural punctuation a user may type around vector
// and colour components, e.g. "(1," or "3)". Commas inside the token are kept so
// that "1,5" still reads as a decimal.
func CleanComponent(token string) string {
	return strings.Trim(token, "(),")
}

// coerceComposite consumes up to the kind's arity of tokens. Missing trailing
// components are zero.
func coerceComposite(tokens []string, start int, kind consoletypes.ValueKind, param consoletypes.Parameter) (Result, error) {
	arity := kind.Arity()
	n := min(arity, len(tokens)-start)
	components := make([]float64, arity)

	for i := 0; i < n; i++ {
		text := CleanComponent(tokens[start+i])
		if kind == consoletypes.KindColor32 {
			b, err := strconv.ParseUint(text, 10, 8)
			if err != nil {
				return Result{}, fmt.Errorf("%w: component %d %q of %s is not a byte",
					ErrCoercion, i+1, tokens[start+i], TypeName(param))
			}
			components[i] = float64(b)
			continue
		}
		f, err := ParseFloat(text, 64)
		if err != nil {
			return Result{}, fmt.Errorf("%w: component %d %q of %s is not a number",
				ErrCoercion, i+1, tokens[start+i], TypeName(param))
		}
		components[i] = f
	}

	return Result{Value: reflect.ValueOf(buildComposite(kind, components)), Consumed: n}, nil
}

func buildComposite(kind consoletypes.ValueKind, c []float64) any {
	switch kind {
	case consoletypes.KindVector2:
		return consoletypes.Vector2{X: c[0], Y: c[1]}
	case consoletypes.KindVector3:
		return consoletypes.Vector3{X: c[0], Y: c[1], Z: c[2]}
	case consoletypes.KindVector4:
		return consoletypes.Vector4{X: c[0], Y: c[1], Z: c[2], W: c[3]}
	case consoletypes.KindColor:
		return consoletypes.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
	default:
		return consoletypes.Color32{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: uint8(c[3])}
	}
}

// Components returns the numeric components of a composite value in order, or
// nil when v is not a vector or colour.
func Components(v any) []float64 {
	switch c := v.(type) {
	case consoletypes.Vector2:
		return []float64{c.X, c.Y}
	case consoletypes.Vector3:
		return []float64{c.X, c.Y, c.Z}
	case consoletypes.Vector4:
		return []float64{c.X, c.Y, c.Z, c.W}
	case consoletypes.Color:
		return []float64{c.R, c.G, c.B, c.A}
	case consoletypes.Color32:
		return []float64{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
	default:
		return nil
	}
}

var ordinals = []string{"first", "second", "third", "fourth"}

// ComponentLabel names the i-th (zero-based) component of kind for hints,
// e.g. "second component (y)".
func ComponentLabel(kind consoletypes.ValueKind, i int) string {
	names := kind.ComponentNames()
	if i < 0 || i >= len(names) || i >= len(ordinals) {
		return ""
	}
	return fmt.Sprintf("%s component (%s)", ordinals[i], names[i])
}
