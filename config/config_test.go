package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veritas-L2/mpt/storage"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "mpt.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "Logger:\n  Level: debug\n"))
		require.NoError(t, err)
		require.Equal(t, "debug", cfg.Logger.Level)
		require.Equal(t, "console", cfg.Logger.Encoding)
		require.Equal(t, storage.InMemoryDB, cfg.Storage.Type)
	})

	t.Run("should read storage options", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
Logger:
  Encoding: json
Storage:
  Type: leveldb
  CacheSize: 1024
  Metrics: true
  LevelDBOptions:
    DataDirectoryPath: ./chains/mpt
    ReadOnly: true
`))
		require.NoError(t, err)
		require.Equal(t, "json", cfg.Logger.Encoding)
		require.Equal(t, storage.DBConfiguration{
			Type:      storage.LevelDB,
			CacheSize: 1024,
			Metrics:   true,
			LevelDBOptions: storage.LevelDBOptions{
				DataDirectoryPath: "./chains/mpt",
				ReadOnly:          true,
			},
		}, cfg.Storage)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
	})

	t.Run("should fail on malformed YAML", func(t *testing.T) {
		_, err := Load(writeConfig(t, "Logger: [\n"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cases := map[string]func(c *Config){
		"bad level":        func(c *Config) { c.Logger.Level = "loud" },
		"bad encoding":     func(c *Config) { c.Logger.Encoding = "xml" },
		"unknown storage":  func(c *Config) { c.Storage.Type = "redis" },
		"leveldb w/o path": func(c *Config) { c.Storage.Type = storage.LevelDB },
		"boltdb w/o path":  func(c *Config) { c.Storage.Type = storage.BoltDB },
		"negative cache":   func(c *Config) { c.Storage.CacheSize = -1 },
	}
	for name, mutate := range cases {
		t.Run("should reject "+name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestBuildLogger(t *testing.T) {
	log, err := Default().Logger.BuildLogger()
	require.NoError(t, err)
	require.NotNil(t, log)

	_, err = Logger{Level: "loud", Encoding: "console"}.BuildLogger()
	require.Error(t, err)
}
