// Package cliconfig assembles the concerto CLI's configuration the same
// way [github.com/concerto-project/concerto-go/log].Config does: a Flags
// struct naming pflag flag names, a Config struct of parsed values, and a
// NewConfig constructor with sensible defaults. It adds one layer that
// single-purpose config does not need: a file-backed overlay via
// [github.com/spf13/viper] (grounded on the madstone-tech-loko pack
// repo's cmd/root.go initConfig), so a checked-in concerto.yaml/
// concerto.toml can set the same values flags do, with flags always
// winning.
package cliconfig

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/concerto-project/concerto-go/log"
)

// Flags holds CLI flag names for the concerto CLI's own settings,
// independent of subsystem flag sets such as [log.Flags].
type Flags struct {
	ConfigFile      string
	UTCOffset       string
	IncludeOptional string
	LockFile        string
}

// RuntimeOptions is the fully-resolved configuration consumed by
// cmd/concerto's subcommands, decoded from viper's merged view of flags,
// environment variables, and config file via [go-viper/mapstructure/v2].
type RuntimeOptions struct {
	Log             LogOptions `mapstructure:"log"`
	UTCOffsetHours  float64    `mapstructure:"utc_offset_hours"`
	IncludeOptional bool       `mapstructure:"include_optional"`
	LockFile        string     `mapstructure:"lock_file"`
}

// LogOptions mirrors [log.Config]'s two settings for file/env
// decoding; the CLI still registers [log.Config.RegisterFlags]
// directly for flag parsing.
type LogOptions struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config holds CLI flag values plus the [Flags] naming them. Create
// with [NewConfig], register with [Config.RegisterFlags], then call
// [Config.Load] once flags are parsed to produce a [RuntimeOptions].
type Config struct {
	Flags    Flags
	v        *viper.Viper
	logCfg   *log.Config
	File     string
	LockFile string
}

// NewConfig returns a new [Config] with default flag names, wired to
// logCfg so [Config.Load] can merge file/env values into the same
// [log.Config] the CLI's RunE closures already hold a pointer to.
func NewConfig(logCfg *log.Config) *Config {
	f := Flags{
		ConfigFile:      "config",
		UTCOffset:       "utc-offset",
		IncludeOptional: "include-optional",
		LockFile:        "lock-file",
	}

	return &Config{Flags: f, v: viper.New(), logCfg: logCfg, LockFile: "concerto-lock.yaml"}
}

// RegisterFlags adds concerto's own CLI flags to flags, in addition to
// whatever subsystem flags (log, serializer options) the caller
// registers separately.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.File, c.Flags.ConfigFile, "",
		"path to concerto.yaml/concerto.toml config file")
	flags.StringVar(&c.LockFile, c.Flags.LockFile, c.LockFile,
		"path to the external-model lock file")
}

// Load reads the config file (if set or discoverable) plus CONCERTO_*
// environment variables into v, binds already-parsed pflag values so
// flags take precedence, and decodes the merged view into a
// [RuntimeOptions] via mapstructure.
func (c *Config) Load(flags *pflag.FlagSet) (*RuntimeOptions, error) {
	c.v.SetConfigType("yaml")
	c.v.SetEnvPrefix("CONCERTO")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()

	c.v.SetDefault("log.level", "info")
	c.v.SetDefault("log.format", "text")
	c.v.SetDefault("utc_offset_hours", 0.0)
	c.v.SetDefault("include_optional", false)
	c.v.SetDefault("lock_file", c.LockFile)

	if c.File != "" {
		c.v.SetConfigFile(c.File)

		if err := c.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", c.File, err)
		}
	} else {
		c.v.SetConfigName("concerto")
		c.v.AddConfigPath(".")

		if err := c.v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading concerto.yaml: %w", err)
			}
		}
	}

	if err := bindFlags(c.v, flags); err != nil {
		return nil, err
	}

	var opts RuntimeOptions

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &opts,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("building config decoder: %w", err)
	}

	if err := decoder.Decode(c.v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &opts, nil
}

// flagConfigKeys maps the handful of flag names that feed [RuntimeOptions]
// to the viper key carrying the same value, mirroring that struct's
// mapstructure tags. Flags outside this set (--file, --fqn, --validate,
// and similar per-subcommand options) are read directly by their own
// command and never touch viper.
var flagConfigKeys = map[string]string{
	"log-level":        "log.level",
	"log-format":       "log.format",
	"utc-offset":       "utc_offset_hours",
	"include-optional": "include_optional",
	"lock-file":        "lock_file",
}

// bindFlags binds the flags named in flagConfigKeys to their viper key so
// that a flag explicitly set on the command line always wins over a
// config-file or environment value, per spec §10.3's "flags always win"
// rule.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error

	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}

		key, ok := flagConfigKeys[f.Name]
		if !ok {
			return
		}

		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("binding flag %s: %w", f.Name, err)
		}
	})

	return bindErr
}
