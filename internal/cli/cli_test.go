package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullishamy/dakko/internal/cli"
	"github.com/nullishamy/dakko/internal/config"
)

const fixedRowsTrace = "../simulate/testdata/fixed-rows.yaml"

// setupCLITest isolates the command from the user's configuration and
// returns the temporary dakko home.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvLogFormat, "")
	t.Setenv(config.EnvLogFile, "")
	t.Setenv(config.EnvKeeps, "")
	t.Setenv(config.EnvBuffer, "")
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd(t *testing.T) {
	cmd := cli.NewRootCmd("1.2.3")

	assert.Equal(t, "dakko", cmd.Use)
	assert.Equal(t, "1.2.3", cmd.Version)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"simulate", "tui", "config", "cache"})
}

func TestRootCmd_BadConfigFile(t *testing.T) {
	home := setupCLITest(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("engine: [\n"), 0o600))

	_, err := execute(t, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}

func TestSimulate_Table(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "simulate", fixedRowsTrace)
	require.NoError(t, err)

	assert.Contains(t, out, "TRACE fixed-rows (10 items, mode fixed, estimate 20.0)")
	assert.Contains(t, out, "PAD BEHIND")
	assert.Contains(t, out, "init")
	assert.Contains(t, out, "scroll 45")
	assert.Contains(t, out, "behind")
}

func TestSimulate_Summary(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "simulate", "--summary", fixedRowsTrace, "../simulate/testdata/header.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "TRACE fixed-rows")
	assert.Contains(t, out, "TRACE header")
	assert.Contains(t, out, "final")
	assert.NotContains(t, out, "scroll 45")
}

func TestSimulate_JSON(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "simulate", "--output", "json", "--parallel", "2",
		fixedRowsTrace, "../simulate/testdata/header.yaml")
	require.NoError(t, err)

	var results []struct {
		Name   string `json:"name"`
		Items  int    `json:"items"`
		Mode   string `json:"mode"`
		Frames []struct {
			Event     string `json:"event"`
			Direction string `json:"direction"`
		} `json:"frames"`
		Final struct {
			Start     int     `json:"start"`
			End       int     `json:"end"`
			PadFront  float64 `json:"pad_front"`
			PadBehind float64 `json:"pad_behind"`
		} `json:"final"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	assert.Equal(t, "fixed-rows", results[0].Name)
	assert.Equal(t, 10, results[0].Items)
	assert.Equal(t, "fixed", results[0].Mode)
	assert.Equal(t, 2, results[0].Final.Start)
	assert.Equal(t, 4, results[0].Final.End)
	assert.InDelta(t, 40.0, results[0].Final.PadFront, 0)
	assert.InDelta(t, 100.0, results[0].Final.PadBehind, 0)
	require.Len(t, results[0].Frames, 2)
	assert.Equal(t, "scroll 45", results[0].Frames[1].Event)
	assert.Equal(t, "behind", results[0].Frames[1].Direction)

	assert.Equal(t, "header", results[1].Name)
	require.Len(t, results[1].Frames, 3)
}

func TestSimulate_TraceByName(t *testing.T) {
	home := setupCLITest(t)

	data, err := os.ReadFile(fixedRowsTrace)
	require.NoError(t, err)
	traceDir := filepath.Join(home, "traces")
	require.NoError(t, os.MkdirAll(traceDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(traceDir, "mine.yaml"), data, 0o600))

	out, err := execute(t, "simulate", "mine")
	require.NoError(t, err)
	assert.Contains(t, out, "TRACE fixed-rows")
}

func TestSimulate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no traces",
			args:    []string{"simulate"},
			wantErr: "requires at least 1 arg",
		},
		{
			name:    "unknown output",
			args:    []string{"simulate", "--output", "xml", fixedRowsTrace},
			wantErr: `unsupported output format "xml"`,
		},
		{
			name:    "negative parallel",
			args:    []string{"simulate", "--parallel", "-1", fixedRowsTrace},
			wantErr: "parallel must be >= 0",
		},
		{
			name:    "unknown trace name",
			args:    []string{"simulate", "nope"},
			wantErr: `trace "nope" not found`,
		},
		{
			name:    "bad cache ttl",
			args:    []string{"simulate", "--cache-ttl", "5s", fixedRowsTrace},
			wantErr: "invalid --cache-ttl",
		},
		{
			name:    "missing trace path",
			args:    []string{"simulate", "testdata/nope.yaml"},
			wantErr: "reading trace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t)

			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSimulate_Cache(t *testing.T) {
	home := setupCLITest(t)
	cacheDir := filepath.Join(home, "cache")

	first, err := execute(t, "simulate", "--cache", fixedRowsTrace)
	require.NoError(t, err)

	entries, err := filepath.Glob(filepath.Join(cacheDir, "*.json"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	second, err := execute(t, "simulate", "--cache", fixedRowsTrace)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// a rewritten entry proves the second replay was served from disk
	data, err := os.ReadFile(entries[0])
	require.NoError(t, err)
	data = bytes.Replace(data, []byte(`"name":"fixed-rows"`), []byte(`"name":"from-cache"`), 1)
	require.NoError(t, os.WriteFile(entries[0], data, 0o600))

	out, err := execute(t, "simulate", "--cache", fixedRowsTrace)
	require.NoError(t, err)
	assert.Contains(t, out, "TRACE from-cache")

	out, err = execute(t, "simulate", fixedRowsTrace)
	require.NoError(t, err)
	assert.Contains(t, out, "TRACE fixed-rows", "cache is off by default")

	// an unreadable entry is dropped and replaced by a fresh replay
	require.NoError(t, os.WriteFile(entries[0], []byte("{"), 0o600))
	out, err = execute(t, "simulate", "--cache", fixedRowsTrace)
	require.NoError(t, err)
	assert.Contains(t, out, "TRACE fixed-rows")
	data, err = os.ReadFile(entries[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"fixed-rows"`)

	out, err = execute(t, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, cacheDir)
	assert.Contains(t, out, "Entries: 1")
	assert.Contains(t, out, "Default lifetime: 1d")

	out, err = execute(t, "cache", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 cache entries")

	out, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 cache entries")
}

func TestTUI_RequiresTerminal(t *testing.T) {
	setupCLITest(t)

	// test binaries write to a pipe, never a terminal
	_, err := execute(t, "tui", "--items", "10")
	require.ErrorIs(t, err, cli.ErrNotTerminal)
}

func TestTUI_InvalidConfig(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "tui", "--items", "-1")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestConfigInit(t *testing.T) {
	home := setupCLITest(t)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")

	configPath := filepath.Join(home, "config.yaml")
	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultKeeps, cfg.Engine.Keeps)

	_, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigInit_WritesDefaultsNotEnv(t *testing.T) {
	home := setupCLITest(t)
	t.Setenv(config.EnvKeeps, "7")

	_, err := execute(t, "config", "init")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "keeps: 30")
}

func TestConfigInit_ExplicitPath(t *testing.T) {
	setupCLITest(t)
	path := filepath.Join(t.TempDir(), "project", config.ProjectFileName)

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}

func TestConfigShow(t *testing.T) {
	setupCLITest(t)
	t.Setenv(config.EnvKeeps, "7")

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "keeps: 7")
	assert.Contains(t, out, "min_height: 1")

	out, err = execute(t, "config", "show", "--output", "json")
	require.NoError(t, err)
	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.InDelta(t, 7.0, decoded["engine"]["keeps"], 0)

	_, err = execute(t, "config", "show", "--output", "toml")
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	home := setupCLITest(t)

	out, err := execute(t, "config", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Engine keeps: 30")

	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("engine:\n  keeps: 0\n  estimate_size: 3\n"), 0o600))

	_, err = execute(t, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keeps must be >= 1")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
