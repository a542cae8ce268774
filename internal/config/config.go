package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const configFileName = "aria2tm"

const (
	defaultAria2Path = "aria2c"
	defaultSplit     = 4
	defaultMaxTries  = 5
	defaultLogLines  = 2000
)

// flagConfig stores the parsed values from the cli flags.
type flagConfig struct {
	aria2Path   *string
	downloadDir *string
	split       *int
	connections *int
	maxTries    *int
	debug       *bool
}

// Config holds the configuration options for the application. Per-task
// values here are defaults applied to new tasks at add time.
type Config struct {
	Aria2Path      string `yaml:"aria2Path,omitempty"`
	DownloadDir    string `yaml:"dir,omitempty"`
	Split          int    `yaml:"split,omitempty"`
	MaxConnections int    `yaml:"maxConnectionPerServer,omitempty"`
	MaxTries       int    `yaml:"maxTries,omitempty"`
	RetryWait      int    `yaml:"retryWait,omitempty"`
	FileAllocation string `yaml:"fileAllocation,omitempty"`
	LogLines       int    `yaml:"logLines,omitempty"`

	Debug bool `yaml:"-"`
}

// GetConfig reads the configuration file and returns a Config struct.
// If the configuration file does not exist, it uses default configuration
// but STILL applies CLI flags.
func GetConfig() (*Config, error) {
	configFilePath := filepath.Join(xdg.ConfigHome, configFileName)
	defaults := DefaultConfig()

	var cfg Config

	b, err := os.ReadFile(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if len(b) > 0 {
		err = yaml.Unmarshal(b, &cfg)
		if err != nil {
			return nil, err
		}
	}

	conf := Config{
		Aria2Path:      zeroOr(cfg.Aria2Path, defaults.Aria2Path),
		DownloadDir:    zeroOr(cfg.DownloadDir, defaults.DownloadDir),
		Split:          zeroOr(cfg.Split, defaults.Split),
		MaxConnections: zeroOr(cfg.MaxConnections, defaults.MaxConnections),
		MaxTries:       zeroOr(cfg.MaxTries, defaults.MaxTries),
		RetryWait:      zeroOr(cfg.RetryWait, defaults.RetryWait),
		FileAllocation: zeroOr(cfg.FileAllocation, defaults.FileAllocation),
		LogLines:       zeroOr(cfg.LogLines, defaults.LogLines),
	}

	conf.applyFlagsToConfig()

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func DefaultConfig() Config {
	downloadDir := xdg.UserDirs.Download
	if downloadDir == "" {
		downloadDir = "."
	}

	return Config{
		Aria2Path:      defaultAria2Path,
		DownloadDir:    downloadDir,
		Split:          defaultSplit,
		MaxConnections: 0, // 0 lets the command builder default it to the split count
		MaxTries:       defaultMaxTries,
		RetryWait:      0,
		FileAllocation: "none",
		LogLines:       defaultLogLines,
	}
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}

// applyFlagsToConfig takes the value of the cli flags applied at the start and plugs them into the config.
func (c *Config) applyFlagsToConfig() {
	fc := flagConfig{
		aria2Path:   flag.String("aria2", c.Aria2Path, "path to the aria2c executable"),
		downloadDir: flag.String("dd", c.DownloadDir, "path to the directory that will be used to store new downloads"),
		split:       flag.Int("split", c.Split, "number of splits per download"),
		connections: flag.Int("conn", c.MaxConnections, "max connections per server, 0 follows the split count"),
		maxTries:    flag.Int("mt", c.MaxTries, "maximum number of retries aria2c performs per download"),
		debug:       flag.Bool("debug", false, "enable debug logging"),
	}

	flag.Parse()

	c.Aria2Path = *fc.aria2Path
	c.DownloadDir = *fc.downloadDir
	c.Split = *fc.split
	c.MaxConnections = *fc.connections
	c.MaxTries = *fc.maxTries
	c.Debug = *fc.debug
}

func (c *Config) validate() error {
	if c.Aria2Path == "" || c.DownloadDir == "" {
		return ErrInvalidConfig
	}

	if c.Split <= 0 || c.MaxConnections < 0 || c.MaxTries < 0 || c.RetryWait < 0 {
		return ErrInvalidConfig
	}

	if c.LogLines <= 0 {
		return ErrInvalidConfig
	}

	return nil
}
