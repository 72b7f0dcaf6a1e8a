package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitranim/querystr"
	"github.com/spf13/viper"
)

// Settings of the qsecho development server.
type Config struct {
	Addr     string `mapstructure:"addr"`
	MaxLimit int    `mapstructure:"max_limit"`
	Log      Log    `mapstructure:"log"`
	Gin      Gin    `mapstructure:"gin"`
}

// Logrus settings.
type Log struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

type Gin struct {
	Mode string `mapstructure:"mode"` // debug, release, test
}

// Configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:     `:8080`,
		MaxLimit: querystr.DefaultLimit,
		Log:      Log{Level: `info`, Format: `text`},
		Gin:      Gin{Mode: `release`},
	}
}

/*
Loads configuration into the target, on top of whatever it already holds.
Sources, from lowest to highest precedence:

  - The config file, if `file` is non-empty. Yaml, json or toml, by extension.
  - Environment variables starting with `prefix`, such as "QSECHO_".

Environment names map to keys by `envKey`: "QSECHO_LOG_LEVEL" is "log.level",
"QSECHO_MAX_LIMIT" is "max_limit".
*/
func Load(prefix, file string, target interface{}) error {
	conf := viper.New()

	if file != `` {
		conf.SetConfigFile(file)
		err := conf.ReadInConfig()
		if err != nil {
			return fmt.Errorf(`failed to read config %q: %w`, file, err)
		}
	}

	prefix = strings.ToUpper(prefix)
	for _, env := range os.Environ() {
		key, val, ok := strings.Cut(env, `=`)
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		conf.Set(envKey(strings.TrimPrefix(key, prefix)), val)
	}

	err := conf.Unmarshal(target)
	if err != nil {
		return fmt.Errorf(`failed to decode config: %w`, err)
	}
	return nil
}

// Sections whose keys are nested. Elsewhere, underscores are part of the name.
var sections = []string{`log`, `gin`}

func envKey(name string) string {
	key := strings.TrimPrefix(strings.ToLower(name), `_`)
	for _, section := range sections {
		rest, ok := strings.CutPrefix(key, section+`_`)
		if ok {
			return section + `.` + rest
		}
	}
	return key
}
