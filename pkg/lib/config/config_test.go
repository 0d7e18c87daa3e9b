package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tide.toml", `
root_dir = "src"

[command]
dev = ["go run ./cmd/app", "npm run watch"]
prod = []

[exclude]
dir = ["node_modules", ".git"]
file = ["README.md"]
ext = ["log"]

[control]
address = "127.0.0.1:7777"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "src", cfg.RootDir)
	require.Equal(t, []string{"go run ./cmd/app", "npm run watch"}, cfg.Commands["dev"])
	require.Equal(t, []string{"node_modules", ".git"}, cfg.Exclude.Dir)
	require.Equal(t, []string{"README.md"}, cfg.Exclude.File)
	require.Equal(t, []string{"log"}, cfg.Exclude.Ext)
	require.Equal(t, "127.0.0.1:7777", cfg.Control.Address)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tide.yaml", `
command:
  test:
    - go test ./...
exclude:
  dir: [vendor]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ".", cfg.RootDir)
	require.Equal(t, []string{"go test ./..."}, cfg.Commands["test"])
	require.Equal(t, []string{"vendor"}, cfg.Exclude.Dir)
}

func TestLoadAcceptsCommandsSpelling(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"tide.toml": "[commands]\ndev = [\"go run .\"]\n",
		"tide.yaml": "commands:\n  dev:\n    - go run .\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, dir, name, content))
			require.NoError(t, err)
			commands, err := cfg.Select("dev")
			require.NoError(t, err)
			require.Equal(t, []string{"go run ."}, commands)
		})
	}
}

func TestLoadMergesBothSpellings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tide.toml", `
[command]
dev = ["go run ."]

[commands]
test = ["go test ./..."]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"dev", "test"}, cfg.Names())
}

func TestLoadRejectsSetDefinedTwice(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tide.yaml", `
command:
  dev: [make]
commands:
  dev: [go run .]
`)

	_, err := Load(path)
	require.ErrorContains(t, err, `"dev"`)
}

func TestLoadRejectsUnknownTOMLFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tide.toml", "root_dirr = \".\"\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSelect(t *testing.T) {
	cfg := &Config{Commands: map[string][]string{
		"dev":  {"echo dev"},
		"prod": {},
		"test": {"echo a", "echo b"},
	}}

	commands, err := cfg.Select("test")
	require.NoError(t, err)
	require.Equal(t, []string{"echo a", "echo b"}, commands)

	// The returned slice is a copy.
	commands[0] = "mutated"
	require.Equal(t, "echo a", cfg.Commands["test"][0])

	for _, name := range []string{"prod", "staging", ""} {
		_, err := cfg.Select(name)
		var selErr *SelectionError
		require.True(t, errors.As(err, &selErr), "name %q", name)
		require.Equal(t, name, selErr.Name)
		require.Equal(t, []string{"dev", "test"}, selErr.Known)
	}
}

func TestInitWritesLoadableDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	require.NoError(t, Init(path))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ".", cfg.RootDir)
	require.Contains(t, cfg.Commands, "dev")
	require.Empty(t, cfg.Names())

	require.ErrorIs(t, Init(path), ErrExists)
}

func TestResolveFallsBackToYAML(t *testing.T) {
	dir := t.TempDir()
	yml := writeFile(t, dir, "tide.yml", "root_dir: .\n")

	got, err := Resolve(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	require.Equal(t, yml, got)

	_, err = Resolve(filepath.Join(dir, "custom.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
