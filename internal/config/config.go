package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Log formats
	LogFormatJSON    = "json"
	LogFormatConsole = "console"

	// Default values
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = LogFormatJSON
	DefaultMaxPDFSizeMB = 10
	DefaultPropertyName = "data"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "MCP_PDF_FORMS"
)

// Config holds all configuration for the PDF forms MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// WorkDirectory confines binary inputs and outputs given by path
	WorkDirectory string

	// Batch defaults, overridable per tool call
	MaxPDFSizeMB        float64
	ContinueOnFail      bool
	DataPropertyName    string
	DataPropertyNameOut string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
	ConfigFile string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:                ModeStdio,
		Host:                DefaultHost,
		Port:                DefaultPort,
		WorkDirectory:       currentDir,
		MaxPDFSizeMB:        DefaultMaxPDFSizeMB,
		DataPropertyName:    DefaultPropertyName,
		DataPropertyNameOut: DefaultPropertyName,
		Version:             "1.0.0",
		ServerName:          "mcp-pdf-forms",
		LogLevel:            DefaultLogLevel,
		LogFormat:           DefaultLogFormat,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	if err := readConfigFile(); err != nil {
		return nil, err
	}

	populateConfigFromViper(cfg)

	if cfg.WorkDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.WorkDirectory); err == nil {
			cfg.WorkDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.WorkDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
	viper.SetDefault("maxpdfsize", cfg.MaxPDFSizeMB)
	viper.SetDefault("continueonfail", cfg.ContinueOnFail)
	viper.SetDefault("property", cfg.DataPropertyName)
	viper.SetDefault("propertyout", cfg.DataPropertyNameOut)
	viper.SetDefault("config", "")
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.WorkDirectory, "Directory that file path inputs and outputs are confined to")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (json, console)")
	pflag.Float64("maxpdfsize", cfg.MaxPDFSizeMB, "Default maximum PDF size in megabytes")
	pflag.Bool("continueonfail", cfg.ContinueOnFail, "Default batch mode: report failed items instead of aborting")
	pflag.String("property", cfg.DataPropertyName, "Default input binary property")
	pflag.String("propertyout", cfg.DataPropertyNameOut, "Default output binary property")
	pflag.String("config", "", "Optional YAML configuration file")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dir", "loglevel", "logformat",
		"maxpdfsize", "continueonfail", "property", "propertyout", "config",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Forms - A Model Context Protocol server for filling and stamping PDF forms\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                    # stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/forms --continueonfail  # isolate failed items\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --config=/etc/mcp-pdf-forms.yaml   # settings from a file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORMS_MODE            Server mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORMS_DIR             Work directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORMS_LOGLEVEL        Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORMS_MAXPDFSIZE      Maximum PDF size in MB\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORMS_CONTINUEONFAIL  Isolate failed items\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// readConfigFile merges an optional YAML file below flags and environment
func readConfigFile() error {
	path := viper.GetString("config")
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.WorkDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
	cfg.MaxPDFSizeMB = viper.GetFloat64("maxpdfsize")
	cfg.ContinueOnFail = viper.GetBool("continueonfail")
	cfg.DataPropertyName = viper.GetString("property")
	cfg.DataPropertyNameOut = viper.GetString("propertyout")
	cfg.ConfigFile = viper.GetString("config")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.WorkDirectory == "" {
		return errors.New("work directory cannot be empty")
	}

	// Create the work directory if it doesn't exist
	if _, err := os.Stat(c.WorkDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.WorkDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create work directory %s: %w", c.WorkDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access work directory %s: %w", c.WorkDirectory, err)
	}

	if c.MaxPDFSizeMB <= 0 {
		return errors.New("maximum PDF size must be positive")
	}

	if c.DataPropertyName == "" || c.DataPropertyNameOut == "" {
		return errors.New("binary property names cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatConsole {
		return fmt.Errorf("invalid log format: %s (must be one of: json, console)", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, WorkDirectory: %s, LogLevel: %s, "+
		"MaxPDFSizeMB: %g, ContinueOnFail: %t}",
		c.Mode, c.Host, c.Port, c.WorkDirectory, c.LogLevel, c.MaxPDFSizeMB, c.ContinueOnFail)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
