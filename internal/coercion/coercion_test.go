package coercion

import (
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonsole/pkg/consoletypes"
)

type spawnTarget int

const (
	targetNone spawnTarget = iota
	targetPlayer
	targetObject
)

var spawnTargets = []consoletypes.EnumValue{
	{Name: "None", Value: int64(targetNone)},
	{Name: "Player", Value: int64(targetPlayer)},
	{Name: "Object", Value: int64(targetObject)},
}

func param[T any](name string) consoletypes.Parameter {
	return consoletypes.Parameter{Name: name, Type: reflect.TypeOf(*new(T))}
}

func TestCoerce_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		param    consoletypes.Parameter
		numeric  bool
		expected any
	}{
		{name: "bool word", token: "TRUE", param: param[bool]("b"), expected: true},
		{name: "bool false word", token: "false", param: param[bool]("b"), expected: false},
		{name: "numeric bool zero", token: "0", param: param[bool]("b"), numeric: true, expected: false},
		{name: "numeric bool non-zero", token: "42", param: param[bool]("b"), numeric: true, expected: true},
		{name: "numeric bool still accepts words", token: "true", param: param[bool]("b"), numeric: true, expected: true},
		{name: "int", token: "-12", param: param[int]("n"), expected: -12},
		{name: "int8", token: "127", param: param[int8]("n"), expected: int8(127)},
		{name: "uint16", token: "65535", param: param[uint16]("n"), expected: uint16(65535)},
		{name: "float with dot", token: "1.5", param: param[float64]("f"), expected: 1.5},
		{name: "float with comma", token: "1,5", param: param[float64]("f"), expected: 1.5},
		{name: "float32", token: "0,25", param: param[float32]("f"), expected: float32(0.25)},
		{name: "char", token: "xyz", param: param[consoletypes.Char]("c"), expected: consoletypes.Char('x')},
		{name: "string strips quotes", token: `"hi"`, param: param[string]("s"), expected: "hi"},
		{name: "duration via generic conversion", token: "1m30s", param: param[time.Duration]("d"), expected: 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Coerce([]string{tt.token}, 0, Target{Param: tt.param, NumericBool: tt.numeric})
			require.NoError(t, err)
			assert.Equal(t, 1, res.Consumed)
			assert.Equal(t, tt.expected, res.Interface())
		})
	}
}

func TestCoerce_Failures(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		param   consoletypes.Parameter
		numeric bool
	}{
		{name: "numeric bool disabled", token: "1", param: param[bool]("b")},
		{name: "bool garbage", token: "yes", param: param[bool]("b"), numeric: true},
		{name: "int garbage", token: "abc", param: param[int]("n")},
		{name: "int8 overflow", token: "300", param: param[int8]("n")},
		{name: "uint negative", token: "-1", param: param[uint]("n")},
		{name: "float garbage", token: "1.2.3", param: param[float64]("f")},
		{name: "empty char", token: "", param: param[consoletypes.Char]("c")},
		{name: "enum unknown name", token: "Monster", param: consoletypes.Parameter{Type: reflect.TypeOf(targetNone), Enum: spawnTargets}},
		{name: "enum unknown ordinal", token: "7", param: consoletypes.Parameter{Type: reflect.TypeOf(targetNone), Enum: spawnTargets}},
		{name: "generic failure", token: "soon", param: param[time.Duration]("d")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce([]string{tt.token}, 0, Target{Param: tt.param, NumericBool: tt.numeric})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCoercion))
		})
	}
}

func TestCoerce_NoToken(t *testing.T) {
	_, err := Coerce([]string{"a"}, 1, Target{Param: param[int]("n")})
	assert.ErrorIs(t, err, ErrCoercion)

	_, err = Coerce(nil, 0, Target{Param: param[int]("n")})
	assert.ErrorIs(t, err, ErrCoercion)
}

func TestCoerce_Enum(t *testing.T) {
	p := consoletypes.Parameter{Name: "target", Type: reflect.TypeOf(targetNone), Enum: spawnTargets}

	res, err := Coerce([]string{"player"}, 0, Target{Param: p})
	require.NoError(t, err)
	assert.Equal(t, targetPlayer, res.Interface())

	res, err = Coerce([]string{"2"}, 0, Target{Param: p})
	require.NoError(t, err)
	assert.Equal(t, targetObject, res.Interface())
}

func TestCoerce_TrailingString(t *testing.T) {
	tokens := []string{"5", "hello", "big", "world"}
	p := param[string]("message")

	res, err := Coerce(tokens, 1, Target{Param: p, Last: true})
	require.NoError(t, err)
	assert.Equal(t, "hello big world", res.Interface())
	assert.Equal(t, 3, res.Consumed)

	res, err = Coerce(tokens, 1, Target{Param: p, Last: false})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Interface())
	assert.Equal(t, 1, res.Consumed)
}

func TestCoerce_Composite(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		start    int
		param    consoletypes.Parameter
		expected any
		consumed int
	}{
		{
			name:     "vector3 with comma decimal",
			tokens:   []string{"1,5", "2", "3"},
			param:    param[consoletypes.Vector3]("pos"),
			expected: consoletypes.Vector3{X: 1.5, Y: 2, Z: 3},
			consumed: 3,
		},
		{
			name:     "vector3 with parentheses and separators",
			tokens:   []string{"(1,", "2,", "3)"},
			param:    param[consoletypes.Vector3]("pos"),
			expected: consoletypes.Vector3{X: 1, Y: 2, Z: 3},
			consumed: 3,
		},
		{
			name:     "short stream defaults trailing components",
			tokens:   []string{"cmd", "4"},
			start:    1,
			param:    param[consoletypes.Vector3]("pos"),
			expected: consoletypes.Vector3{X: 4},
			consumed: 1,
		},
		{
			name:     "vector2 leaves following tokens",
			tokens:   []string{"1", "2", "3"},
			param:    param[consoletypes.Vector2]("pos"),
			expected: consoletypes.Vector2{X: 1, Y: 2},
			consumed: 2,
		},
		{
			name:     "vector4",
			tokens:   []string{"1", "2", "3", "4"},
			param:    param[consoletypes.Vector4]("v"),
			expected: consoletypes.Vector4{X: 1, Y: 2, Z: 3, W: 4},
			consumed: 4,
		},
		{
			name:     "float colour",
			tokens:   []string{"0.5", "0,25", "1"},
			param:    param[consoletypes.Color]("tint"),
			expected: consoletypes.Color{R: 0.5, G: 0.25, B: 1},
			consumed: 3,
		},
		{
			name:     "byte colour",
			tokens:   []string{"255", "128", "0", "255"},
			param:    param[consoletypes.Color32]("tint"),
			expected: consoletypes.Color32{R: 255, G: 128, B: 0, A: 255},
			consumed: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Coerce(tt.tokens, tt.start, Target{Param: tt.param})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Interface())
			assert.Equal(t, tt.consumed, res.Consumed)
		})
	}
}

func TestCoerce_CompositeFailures(t *testing.T) {
	_, err := Coerce([]string{"1", "x", "3"}, 0, Target{Param: param[consoletypes.Vector3]("pos")})
	assert.ErrorIs(t, err, ErrCoercion)

	_, err = Coerce([]string{"256", "0", "0"}, 0, Target{Param: param[consoletypes.Color32]("tint")})
	assert.ErrorIs(t, err, ErrCoercion)
}

func TestCoerce_Deterministic(t *testing.T) {
	tokens := []string{"1,5", "2", "3", "tail"}
	target := Target{Param: param[consoletypes.Vector3]("pos"), Last: true}

	first, err1 := Coerce(tokens, 0, target)
	second, err2 := Coerce(tokens, 0, target)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first.Interface(), second.Interface())
	assert.Equal(t, first.Consumed, second.Consumed)
	assert.Equal(t, []string{"1,5", "2", "3", "tail"}, tokens)
}

func TestCoerce_GenericTextUnmarshaler(t *testing.T) {
	p := consoletypes.Parameter{Name: "addr", Type: reflect.TypeOf(net.IP{})}
	// net.IP is a byte slice and takes the TextUnmarshaler hook.
	res, err := Coerce([]string{"10.0.0.1"}, 0, Target{Param: p})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", res.Interface().(net.IP).String())
}

func TestTypeNameAndLiteral(t *testing.T) {
	enum := consoletypes.Parameter{Type: reflect.TypeOf(targetNone), Enum: spawnTargets}

	assert.Equal(t, "int", TypeName(param[int]("n")))
	assert.Equal(t, "Vector3", TypeName(param[consoletypes.Vector3]("v")))
	assert.Equal(t, "spawnTarget", TypeName(enum))
	assert.Equal(t, "time.Duration", TypeName(param[time.Duration]("d")))

	assert.Equal(t, "Player", Literal(enum, targetPlayer))
	assert.Equal(t, "1 2 3", Literal(param[consoletypes.Vector3]("v"), consoletypes.Vector3{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, "255 0 0 255", Literal(param[consoletypes.Color32]("c"), consoletypes.Color32{R: 255, A: 255}))
	assert.Equal(t, `"two words"`, Literal(param[string]("s"), "two words"))
	assert.Equal(t, "false", Literal(param[bool]("b"), false))
	assert.Equal(t, "0", Literal(param[int]("n"), 0))
	assert.Equal(t, "", Literal(param[int]("n"), nil))
}

func TestDefaultValue(t *testing.T) {
	v, err := DefaultValue(consoletypes.Parameter{Type: reflect.TypeOf(int64(0)), Optional: true, Default: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Interface())

	v, err = DefaultValue(consoletypes.Parameter{Type: reflect.TypeOf(0), Optional: true})
	require.NoError(t, err)
	assert.Equal(t, 0, v.Interface())

	v, err = DefaultValue(consoletypes.Parameter{Type: reflect.TypeOf(time.Duration(0)), Optional: true, Default: "2s"})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, v.Interface())

	_, err = DefaultValue(consoletypes.Parameter{Type: reflect.TypeOf(""), Optional: true, Default: 3})
	assert.Error(t, err)
}

func TestComponentLabel(t *testing.T) {
	assert.Equal(t, "first component (x)", ComponentLabel(consoletypes.KindVector3, 0))
	assert.Equal(t, "fourth component (a)", ComponentLabel(consoletypes.KindColor, 3))
	assert.Equal(t, "", ComponentLabel(consoletypes.KindVector2, 2))
}
