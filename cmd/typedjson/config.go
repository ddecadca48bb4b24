package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/typedjson"
	"github.com/reoring/typedjson/avroschema"
	"github.com/reoring/typedjson/i18n"
	gojsonsrc "github.com/reoring/typedjson/source/gojson"
)

// Config is the merged view of flags, TYPEDJSON_* environment variables and
// the optional config file.
type Config struct {
	Schema          string `mapstructure:"schema"`
	WrapUnions      bool   `mapstructure:"wrap-unions"`
	Driver          string `mapstructure:"driver"`
	Lang            string `mapstructure:"lang"`
	Verbose         bool   `mapstructure:"verbose"`
	AllowUndeclared bool   `mapstructure:"allow-undeclared"`
	OmitDefaults    bool   `mapstructure:"omit-defaults"`
	Duplicates      string `mapstructure:"duplicates"`
	MaxDepth        int    `mapstructure:"max-depth"`
	MaxBytes        int64  `mapstructure:"max-bytes"`

	log *zap.Logger
}

func (c *Config) load(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("TYPEDJSON")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file [%s]: %w", file, err)
		}
	}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	log, err := newLogger(c.Verbose)
	if err != nil {
		return err
	}
	c.log = log

	switch c.Driver {
	case "", "go-json":
		typedjson.SetJSONDriver(gojsonsrc.Driver())
	case "encoding/json":
		typedjson.UseDefaultJSONDriver()
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	i18n.SetLanguage(c.Lang)
	c.log.Debug("configuration loaded",
		zap.String("driver", typedjson.CurrentJSONDriver().Name()),
		zap.String("lang", c.Lang),
		zap.Bool("wrapUnions", c.WrapUnions))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

func (c *Config) loadSchema() (typedjson.Type, error) {
	if c.Schema == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	data, err := os.ReadFile(c.Schema)
	if err != nil {
		return nil, err
	}
	t, err := avroschema.Parse(string(data), avroschema.Config{WrapUnions: c.WrapUnions})
	if err != nil {
		return nil, err
	}
	c.log.Debug("schema loaded",
		zap.String("file", c.Schema),
		zap.String("name", t.Name()),
		zap.Stringer("category", t.Category()))
	return t, nil
}

func (c *Config) options() (typedjson.Options, error) {
	opt := typedjson.Options{
		AllowUndeclaredFields: c.AllowUndeclared,
		OmitDefaultValues:     c.OmitDefaults,
		Parse:                 typedjson.ParseOpt{MaxDepth: c.MaxDepth, MaxBytes: c.MaxBytes},
	}
	switch c.Duplicates {
	case "", "ignore":
		opt.Parse.Strictness.OnDuplicateKey = typedjson.Ignore
	case "warn":
		opt.Parse.Strictness.OnDuplicateKey = typedjson.Warn
	case "error":
		opt.Parse.Strictness.OnDuplicateKey = typedjson.Error
	default:
		return opt, fmt.Errorf("unknown duplicates policy %q", c.Duplicates)
	}
	return opt, nil
}
