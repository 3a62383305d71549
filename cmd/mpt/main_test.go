package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/veritas-L2/mpt"
	"github.com/veritas-L2/mpt/config"
	"github.com/veritas-L2/mpt/storage"
)

const puppyRoot = "0x5991bb8c6514148a29db676a14ac506cd2cd5775ace63c30a4fe457715e9ac84"

type executor struct {
	t      *testing.T
	config string
}

func newExecutor(t *testing.T, dbType string) *executor {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Logger.Level = "error"
	cfg.Storage.Type = dbType
	cfg.Storage.CacheSize = 16
	cfg.Storage.LevelDBOptions.DataDirectoryPath = filepath.Join(dir, "leveldb")
	cfg.Storage.BoltDBOptions.FilePath = filepath.Join(dir, "bolt.db")

	raw, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "mpt.yml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return &executor{t: t, config: path}
}

// run executes the tool with the given arguments and returns its output lines.
func (e *executor) run(args ...string) ([]string, error) {
	var out bytes.Buffer
	ctl := newApp()
	ctl.Writer = &out
	ctl.ErrWriter = &out
	ctl.ExitErrHandler = func(*cli.Context, error) {}

	err := ctl.Run(append([]string{"mpt", "--config", e.config}, args...))
	text := strings.TrimSpace(out.String())
	if text == "" {
		return nil, err
	}
	return strings.Split(text, "\n"), err
}

func (e *executor) mustRun(args ...string) []string {
	lines, err := e.run(args...)
	require.NoError(e.t, err, args)
	return lines
}

func TestCommands(t *testing.T) {
	for _, dbType := range []string{storage.BoltDB, storage.LevelDB} {
		t.Run(dbType, func(t *testing.T) {
			e := newExecutor(t, dbType)

			require.Equal(t, []string{mpt.EmptyRootHash.Hex()}, e.mustRun("root"))

			e.mustRun("put", "do", "verb")
			e.mustRun("put", "dog", "puppy")
			e.mustRun("put", "doge", "coin")
			require.Equal(t, []string{puppyRoot}, e.mustRun("put", "horse", "stallion"))
			require.Equal(t, []string{puppyRoot}, e.mustRun("root"))

			require.Equal(t, []string{"puppy"}, e.mustRun("get", "dog"))
			_, err := e.run("get", "cat")
			require.Error(t, err)

			require.Equal(t, []string{
				"do=verb",
				"dog=puppy",
				"doge=coin",
				"horse=stallion",
			}, e.mustRun("dump"))

			t.Run("should keep named tries apart", func(t *testing.T) {
				require.Equal(t, []string{mpt.EmptyRootHash.Hex()}, e.mustRun("--name", "other", "root"))
				e.mustRun("--name", "other", "put", "cat", "kitten")
				require.Equal(t, []string{puppyRoot}, e.mustRun("root"))
			})

			t.Run("should prove and verify", func(t *testing.T) {
				proof := e.mustRun("prove", "doge")
				require.NotEmpty(t, proof)

				args := append([]string{"verify", puppyRoot, "doge"}, proof...)
				require.Equal(t, []string{"coin"}, e.mustRun(args...))

				args = append([]string{"verify", mpt.EmptyRootHash.Hex(), "doge"}, proof...)
				_, err := e.run(args...)
				require.Error(t, err)

				absence := e.mustRun("prove", "dogs")
				args = append([]string{"verify", puppyRoot, "dogs"}, absence...)
				require.Equal(t, []string{"absent"}, e.mustRun(args...))
			})

			t.Run("should accept hex arguments", func(t *testing.T) {
				require.Equal(t, []string{"0x7075707079"}, e.mustRun("--hex", "get", "0x646f67"))
				require.Equal(t, []string{"0x7075707079"}, e.mustRun("--hex", "get", "646f67"))
				_, err := e.run("--hex", "get", "0xzz")
				require.Error(t, err)
			})

			t.Run("should delete", func(t *testing.T) {
				e.mustRun("delete", "horse")
				_, err := e.run("delete", "horse")
				require.Error(t, err)
				_, err = e.run("get", "horse")
				require.Error(t, err)

				e.mustRun("put", "horse", "stallion")
				require.Equal(t, []string{puppyRoot}, e.mustRun("root"))
			})
		})
	}
}

func TestArguments(t *testing.T) {
	e := newExecutor(t, storage.BoltDB)

	for _, args := range [][]string{
		{"get"},
		{"get", "a", "b"},
		{"put", "a"},
		{"delete"},
		{"prove"},
		{"verify", puppyRoot, "doge"},
		{"verify", "0x1234", "doge", "0x80"},
		{"root", "extra"},
	} {
		_, err := e.run(args...)
		require.Error(t, err, args)
	}

	t.Run("should fail on a broken config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yml")
		require.NoError(t, os.WriteFile(path, []byte("Storage:\n  Type: unknown\n"), 0o644))
		e := &executor{t: t, config: path}
		_, err := e.run("root")
		require.Error(t, err)
	})
}
