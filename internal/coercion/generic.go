package coercion

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// genericHook turns strings into durations, TextUnmarshaler implementations and
// comma-separated slices before weak decoding takes over.
var genericHook = mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.TextUnmarshallerHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
)

// convertGeneric converts token into t for types without a dedicated rule.
func convertGeneric(token string, t reflect.Type) (reflect.Value, error) {
	converted, err := mapstructure.DecodeHookExec(genericHook, reflect.ValueOf(token), reflect.New(t).Elem())
	if err != nil {
		return reflect.Value{}, err
	}

	cv := reflect.ValueOf(converted)
	switch {
	case !cv.IsValid():
		return reflect.Value{}, fmt.Errorf("no value for %s", t)
	case cv.Type() == t:
		return cv, nil
	case cv.Kind() == reflect.Ptr && cv.Type().Elem() == t:
		return cv.Elem(), nil
	}

	out := reflect.New(t)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out.Interface(),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := decoder.Decode(converted); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}
