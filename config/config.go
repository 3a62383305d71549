// Package config holds the YAML configuration of the mpt command line tool.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/veritas-L2/mpt/storage"
)

// Config top level struct representing the config of the tool.
type Config struct {
	Logger  Logger                  `yaml:"Logger"`
	Storage storage.DBConfiguration `yaml:"Storage"`
}

// Logger configures the zap logger.
type Logger struct {
	// Level is any level zapcore.ParseLevel accepts.
	Level string `yaml:"Level"`
	// Encoding is either "console" or "json".
	Encoding string `yaml:"Encoding"`
}

// Default returns the configuration used when no file is given: an
// in-memory store and console logging at info level.
func Default() Config {
	return Config{
		Logger: Logger{
			Level:    "info",
			Encoding: "console",
		},
		Storage: storage.DBConfiguration{
			Type: storage.InMemoryDB,
		},
	}
}

// Load reads the configuration at path on top of Default.
func Load(path string) (Config, error) {
	configData, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	cfg := Default()
	err = yaml.Unmarshal(configData, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the tool can not work with.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid Logger.Level: %w", err)
	}
	switch c.Logger.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("invalid Logger.Encoding %q", c.Logger.Encoding)
	}

	switch c.Storage.Type {
	case storage.InMemoryDB, "":
	case storage.LevelDB:
		if c.Storage.LevelDBOptions.DataDirectoryPath == "" {
			return fmt.Errorf("missing Storage.LevelDBOptions.DataDirectoryPath for %s", storage.LevelDB)
		}
	case storage.BoltDB:
		if c.Storage.BoltDBOptions.FilePath == "" {
			return fmt.Errorf("missing Storage.BoltDBOptions.FilePath for %s", storage.BoltDB)
		}
	default:
		return fmt.Errorf("unknown Storage.Type %q", c.Storage.Type)
	}
	if c.Storage.CacheSize < 0 {
		return fmt.Errorf("negative Storage.CacheSize %d", c.Storage.CacheSize)
	}
	return nil
}

// BuildLogger creates the zap logger described by the Logger section.
func (c Logger) BuildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log setting: %w", err)
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = c.Encoding
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil
	cc.OutputPaths = []string{"stderr"}

	return cc.Build()
}
