package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssfdust/burst-elastic/internal/burst/configuration"
	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

// execute runs the root command with args against an empty home directory and returns the config it would have run.
func execute(t *testing.T, args ...string) (configuration.Config, error) {
	t.Setenv("HOME", t.TempDir())
	homedir.DisableCache = true
	t.Cleanup(func() {
		homedir.DisableCache = false
		logging.ConfigureCliLogging()
	})

	var captured configuration.Config
	cmd := rootCmd(func(_ context.Context, config configuration.Config, _ *prometheus.Registry) error {
		captured = config
		return nil
	})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return captured, err
}

func TestRootCmd_Defaults(t *testing.T) {
	config, err := execute(t, "localhost:9200")
	require.NoError(t, err)

	expected := configuration.Default()
	expected.Url = "localhost:9200"
	assert.Equal(t, expected, config)
}

func TestRootCmd_ShortFlags(t *testing.T) {
	config, err := execute(t, "-t", "4", "-c", "2", "-s", "500", "http://es:9200")
	require.NoError(t, err)

	assert.Equal(t, 4, config.ThreadNum)
	assert.Equal(t, 2, config.CoresNum)
	assert.Equal(t, 500, config.ChunkSize)
	assert.Equal(t, "http://es:9200", config.Url)
}

func TestRootCmd_LongFlags(t *testing.T) {
	config, err := execute(t,
		"--thread-num", "3",
		"--cores-num", "2",
		"--chunk-size", "10",
		"--index", "bench",
		"--bootstrap=false",
		"--request-timeout", "2s",
		"--report-interval", "1m",
		"--metrics-port", "9090",
		"--log-level", "debug",
		"--log-format", "JSON",
		"es:9200",
	)
	require.NoError(t, err)

	assert.Equal(t, 3, config.ThreadNum)
	assert.Equal(t, 2, config.CoresNum)
	assert.Equal(t, 10, config.ChunkSize)
	assert.Equal(t, "bench", config.Index.Name)
	assert.False(t, config.Index.Bootstrap)
	assert.Equal(t, 2*time.Second, config.RequestTimeout)
	assert.Equal(t, time.Minute, config.Report.Interval)
	assert.Equal(t, uint16(9090), config.Metrics.Port)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, logging.FormatJson, config.Logging.Format)
}

func TestRootCmd_Environment(t *testing.T) {
	t.Setenv("BURST_CHUNKSIZE", "7")
	t.Setenv("BURST_INDEX_NAME", "fromenv")

	config, err := execute(t, "localhost:9200")
	require.NoError(t, err)

	assert.Equal(t, 7, config.ChunkSize)
	assert.Equal(t, "fromenv", config.Index.Name)
}

func TestRootCmd_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("BURST_CHUNKSIZE", "7")

	config, err := execute(t, "-s", "9", "localhost:9200")
	require.NoError(t, err)

	assert.Equal(t, 9, config.ChunkSize)
}

func TestRootCmd_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burst.yaml")
	contents := `
url: es.internal:9200
threadNum: 2
index:
  name: fromfile
  shards: 5
report:
  sampleModulus: 1s
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	config, err := execute(t, "--config", path, "-c", "1")
	require.NoError(t, err)

	assert.Equal(t, "es.internal:9200", config.Url)
	assert.Equal(t, 2, config.ThreadNum)
	assert.Equal(t, "fromfile", config.Index.Name)
	assert.Equal(t, 5, config.Index.Shards)
	assert.Equal(t, time.Second, config.Report.SampleModulus)
	assert.Equal(t, configuration.DefaultChunkSize, config.ChunkSize)
}

func TestRootCmd_MissingExplicitConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "localhost:9200")
	assert.Error(t, err)
}

func TestRootCmd_InvalidArguments(t *testing.T) {
	tests := map[string][]string{
		"missing url":        {},
		"zero cores":         {"-c", "0", "localhost:9200"},
		"negative threads":   {"-t", "-1", "localhost:9200"},
		"zero chunk size":    {"-s", "0", "localhost:9200"},
		"uppercase index":    {"--index", "Test", "localhost:9200"},
		"unknown log format": {"--log-format", "xml", "localhost:9200"},
		"unknown log level":  {"--log-level", "chatty", "localhost:9200"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			assert.Equal(t, bursterrors.ExitCodeInvalidArgument, bursterrors.ExitCodeFromError(err))
		})
	}
}

func TestRootCmd_TooManyArgs(t *testing.T) {
	_, err := execute(t, "a:9200", "b:9200")
	assert.Error(t, err)
}
