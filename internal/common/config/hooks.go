package config

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		LogFormatHookFunc(),
	)),
}

// LogFormatHookFunc lower-cases log formats so that "JSON" and "json" are accepted alike.
func LogFormatHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		// check that src and target types are valid
		if f.Kind() != reflect.String || t != reflect.TypeOf(logging.FormatText) {
			return data, nil
		}
		return logging.LogFormat(strings.ToLower(data.(string))), nil
	}
}
