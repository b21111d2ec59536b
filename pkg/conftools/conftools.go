package conftools

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "PTAH"

// Source holds every configuration value as a string, keyed by flag name.
type Source map[string]string

// Input looks up an input by its camelCase name, e.g. apiKey is read from the api-key setting.
func (s Source) Input(name string) string {
	return s[Key(name)]
}

// Key converts a camelCase input name to its kebab-case flag name.
func Key(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Initialize makes every flag configurable through the environment and an optional config file.
// A flag such as --api-key is then also read from PTAH_API_KEY.
func Initialize(name string) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(name)
	viper.AddConfigPath(".")
}

func stringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch value := data.(type) {
	case time.Duration:
		return value.String(), nil
	case []string:
		return strings.Join(value, "\n"), nil
	case []interface{}:
		lines := make([]string, len(value))
		for i := range value {
			lines[i] = fmt.Sprint(value[i])
		}
		return strings.Join(lines, "\n"), nil
	}
	return data, nil
}

func decoderHook(dc *mapstructure.DecoderConfig) {
	dc.WeaklyTypedInput = true
	if dc.DecodeHook == nil {
		dc.DecodeHook = stringHook
		return
	}
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		dc.DecodeHook,
		stringHook,
	)
}

// Load parses the command line, binds the flags and returns the merged configuration.
// Command line flags take precedence over environment variables, which take precedence over the config file.
func Load(fs *flag.FlagSet, args []string) (Source, error) {
	var err error

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = fs.Parse(args)
	if err != nil {
		return nil, err
	}

	err = viper.BindPFlags(fs)
	if err != nil {
		return nil, err
	}

	source := make(Source)
	err = viper.Unmarshal(&source, decoderHook)
	if err != nil {
		return nil, err
	}

	return source, nil
}

// Return a human-readable printout of all configuration options, except secret stuff.
func Format(disallowedKeys []string) []string {
	ok := func(key string) bool {
		for _, forbiddenKey := range disallowedKeys {
			if forbiddenKey == key {
				return false
			}
		}
		return true
	}

	var keys sort.StringSlice = viper.AllKeys()

	printed := make([]string, 0)

	keys.Sort()
	for _, key := range keys {
		if ok(key) {
			printed = append(printed, fmt.Sprintf("%s: %v", key, viper.Get(key)))
		} else {
			printed = append(printed, fmt.Sprintf("%s: ***REDACTED***", key))
		}
	}

	return printed
}
