package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "stdio", cfg.Mode)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, "mcp-pdf-forms", cfg.ServerName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10.0, cfg.MaxPDFSizeMB)
	assert.False(t, cfg.ContinueOnFail)
	assert.Equal(t, "data", cfg.DataPropertyName)
	assert.Equal(t, "data", cfg.DataPropertyNameOut)

	currentDir, _ := os.Getwd()
	assert.Equal(t, currentDir, cfg.WorkDirectory)
}

func validConfig(t *testing.T) *Config {
	cfg := DefaultConfig()
	cfg.WorkDirectory = t.TempDir()
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "valid stdio", modify: func(c *Config) {}},
		{name: "valid server", modify: func(c *Config) { c.Mode = ModeServer }},
		{name: "invalid mode", modify: func(c *Config) { c.Mode = "invalid" }, wantErr: true},
		{name: "port too low in server mode", modify: func(c *Config) { c.Mode = ModeServer; c.Port = 0 }, wantErr: true},
		{name: "port too high in server mode", modify: func(c *Config) { c.Mode = ModeServer; c.Port = 70000 }, wantErr: true},
		{name: "port ignored in stdio mode", modify: func(c *Config) { c.Port = 0 }},
		{name: "empty work directory", modify: func(c *Config) { c.WorkDirectory = "" }, wantErr: true},
		{name: "zero max size", modify: func(c *Config) { c.MaxPDFSizeMB = 0 }, wantErr: true},
		{name: "negative max size", modify: func(c *Config) { c.MaxPDFSizeMB = -1 }, wantErr: true},
		{name: "fractional max size", modify: func(c *Config) { c.MaxPDFSizeMB = 0.25 }},
		{name: "empty output property", modify: func(c *Config) { c.DataPropertyNameOut = "" }, wantErr: true},
		{name: "console format", modify: func(c *Config) { c.LogFormat = LogFormatConsole }},
		{name: "unknown format", modify: func(c *Config) { c.LogFormat = "logfmt" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidateLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig(t)
		cfg.LogLevel = level
		assert.NoError(t, cfg.Validate(), level)
	}

	for _, level := range []string{"trace", "fatal", "INFO", ""} {
		cfg := validConfig(t)
		cfg.LogLevel = level
		err := cfg.Validate()
		require.Error(t, err, level)
		assert.Contains(t, err.Error(), "invalid log level")
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	cfg := validConfig(t)
	cfg.WorkDirectory = filepath.Join(t.TempDir(), "nested", "forms")

	require.NoError(t, cfg.Validate())

	info, err := os.Stat(cfg.WorkDirectory)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 3000}
	assert.Equal(t, "localhost:3000", cfg.Address())
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:           ModeServer,
		Host:           "localhost",
		Port:           8080,
		WorkDirectory:  "/srv/forms",
		LogLevel:       "debug",
		MaxPDFSizeMB:   2.5,
		ContinueOnFail: true,
	}

	assert.Equal(t,
		"Config{Mode: server, Host: localhost, Port: 8080, WorkDirectory: /srv/forms, LogLevel: debug, "+
			"MaxPDFSizeMB: 2.5, ContinueOnFail: true}",
		cfg.String())
}

func TestConfigModes(t *testing.T) {
	cfg := &Config{Mode: ModeServer}
	assert.True(t, cfg.IsServerMode())
	assert.False(t, cfg.IsStdioMode())

	cfg.Mode = ModeStdio
	assert.False(t, cfg.IsServerMode())
	assert.True(t, cfg.IsStdioMode())
	assert.False(t, cfg.IsDebug())
}
