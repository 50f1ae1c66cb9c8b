package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	"allmerge.dev/pkg/allmerge/internal/domain"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "allmerge", configBaseName)
	assert.Equal(t, "allmerge.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "input", inputFlagName)
	assert.Equal(t, "parallel", runParallelFlagName)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "run.counting", countingConfigKey)
	assert.Equal(t, "layout.plugin", pluginConfigKey)
	assert.Equal(t, "layout.run_prefix", runPrefixConfigKey)
	assert.Equal(t, "archive.enabled", archiveConfigKey)
	assert.Equal(t, 1, defaultRunParallel)
	assert.Equal(t, "ALLMERGE", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, adapter.DefaultPlugin, viper.GetString(pluginConfigKey))
	assert.Equal(t, adapter.DefaultRunPrefix, viper.GetString(runPrefixConfigKey))
	assert.Equal(t, string(domain.AdditiveCounting), viper.GetString(countingConfigKey))
	assert.Equal(t, domain.DefaultReportName, viper.GetString(reportNameConfigKey))
	assert.Equal(t, defaultLogFilename, viper.GetString(logFilenameKey))
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("ALLMERGE_RUN_COUNTING", "net")

	assert.Equal(t, "net", viper.GetString(countingConfigKey))
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"empty uses default", "", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"mixed case warning", " Warning ", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"numeric", "-4", slog.LevelDebug},
		{"unknown uses default", "loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestConfigureLogger_WritesToFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "allmerge.log")

	configureLogger(logPath, true)
	slog.Debug("consolidation started", "run", "run-0001")

	contents, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "consolidation started")
	assert.Contains(t, string(contents), "run=run-0001")
	assert.Same(t, globalLogger, slog.Default())
}
