package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"MCP_PDF_FORMS_MODE",
	"MCP_PDF_FORMS_HOST",
	"MCP_PDF_FORMS_PORT",
	"MCP_PDF_FORMS_DIR",
	"MCP_PDF_FORMS_LOGLEVEL",
	"MCP_PDF_FORMS_LOGFORMAT",
	"MCP_PDF_FORMS_MAXPDFSIZE",
	"MCP_PDF_FORMS_CONTINUEONFAIL",
	"MCP_PDF_FORMS_PROPERTY",
	"MCP_PDF_FORMS_PROPERTYOUT",
	"MCP_PDF_FORMS_CONFIG",
}

// withArgs runs LoadFromFlags against a clean flag set, viper and environment
func withArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
	})

	os.Args = append([]string{"mcp-pdf-forms"}, args...)
	resetFlags()
	return LoadFromFlags()
}

func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	clearEnv(t)

	cfg, err := withArgs(t)
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, 10.0, cfg.MaxPDFSizeMB)
	assert.False(t, cfg.ContinueOnFail)
	assert.Equal(t, "data", cfg.DataPropertyName)
	assert.Equal(t, "data", cfg.DataPropertyNameOut)
	assert.NotEmpty(t, cfg.WorkDirectory)
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "server mode with custom host and port",
			args: []string{"--mode=server", "--host=0.0.0.0", "--port=9090"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ModeServer, cfg.Mode)
				assert.Equal(t, "0.0.0.0:9090", cfg.Address())
			},
		},
		{
			name: "debug console logging",
			args: []string{"--loglevel=debug", "--logformat=console"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsDebug())
				assert.Equal(t, LogFormatConsole, cfg.LogFormat)
			},
		},
		{
			name: "batch defaults",
			args: []string{"--maxpdfsize=2.5", "--continueonfail", "--property=doc", "--propertyout=filled"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2.5, cfg.MaxPDFSizeMB)
				assert.True(t, cfg.ContinueOnFail)
				assert.Equal(t, "doc", cfg.DataPropertyName)
				assert.Equal(t, "filled", cfg.DataPropertyNameOut)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()

			cfg, err := withArgs(t, append(tt.args, "--dir="+dir)...)
			require.NoError(t, err)
			assert.Equal(t, dir, cfg.WorkDirectory)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("MCP_PDF_FORMS_MODE", "server")
	t.Setenv("MCP_PDF_FORMS_PORT", "3000")
	t.Setenv("MCP_PDF_FORMS_DIR", dir)
	t.Setenv("MCP_PDF_FORMS_LOGLEVEL", "warn")
	t.Setenv("MCP_PDF_FORMS_MAXPDFSIZE", "20")
	t.Setenv("MCP_PDF_FORMS_CONTINUEONFAIL", "true")

	cfg, err := withArgs(t)
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, dir, cfg.WorkDirectory)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 20.0, cfg.MaxPDFSizeMB)
	assert.True(t, cfg.ContinueOnFail)
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCP_PDF_FORMS_MODE", "server")
	t.Setenv("MCP_PDF_FORMS_PORT", "3000")

	cfg, err := withArgs(t, "--mode=stdio", "--port=8888")
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, 8888, cfg.Port)
}

func TestLoadFromFlags_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "forms.yaml")
	content := "loglevel: debug\ncontinueonfail: true\nmaxpdfsize: 4\ndir: " + dir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := withArgs(t, "--config="+path, "--maxpdfsize=6")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.ContinueOnFail)
	assert.Equal(t, dir, cfg.WorkDirectory)
	assert.Equal(t, 6.0, cfg.MaxPDFSizeMB, "flag wins over file")
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadFromFlags_MissingConfigFile(t *testing.T) {
	clearEnv(t)

	_, err := withArgs(t, "--config="+filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read config file")
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"mode", []string{"--mode=invalid"}, "mode must be either 'stdio' or 'server'"},
		{"port", []string{"--mode=server", "--port=99999"}, "port must be between 1 and 65535"},
		{"log level", []string{"--loglevel=invalid"}, "invalid log level"},
		{"log format", []string{"--logformat=xml"}, "invalid log format"},
		{"max size", []string{"--maxpdfsize=0"}, "maximum PDF size must be positive"},
		{"property", []string{"--property="}, "binary property names cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			_, err := withArgs(t, append(tt.args, "--dir="+t.TempDir())...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	clearEnv(t)

	_, err := withArgs(t, "--version")
	require.Error(t, err)
	assert.Equal(t, "version requested", err.Error())
}
