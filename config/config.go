package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/fzft/bucketmap/db"
)

const (
	APPNAME        = "bucketmap"
	CONFIG_NAME    = "bucketmap.toml"
	CONFIG_ENV     = "BUCKETMAP_CONFIG"
	DEFAULT_ADDR   = "127.0.0.1:6380"
	DEFAULT_BUCKET = db.DefaultSize
)

var ErrInvalidConfig = errors.New("invalid config")

type TableConfig struct {
	Buckets    int     `toml:"buckets"`
	LoadFactor float64 `toml:"load_factor"`
	Hasher     string  `toml:"hasher"`
	MaxKeys    int     `toml:"max_keys"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type Config struct {
	Table  TableConfig  `toml:"table"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

func Default() *Config {
	return &Config{
		Table: TableConfig{
			Buckets:    DEFAULT_BUCKET,
			LoadFactor: 0.75,
			Hasher:     "fnv",
		},
		Server: ServerConfig{Addr: DEFAULT_ADDR},
		Log:    LogConfig{Level: "info"},
	}
}

// GetConfigPath returns $BUCKETMAP_CONFIG, or bucketmap/bucketmap.toml under
// the user config directory.
func GetConfigPath() (string, error) {
	if p := os.Getenv(CONFIG_ENV); p != "" {
		return p, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, APPNAME, CONFIG_NAME), nil
}

// Load decodes path over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	conf := Default()
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	md, err := toml.Decode(string(blob), conf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// LoadDefault loads the file at GetConfigPath when it exists and falls back
// to Default otherwise.
func LoadDefault() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) Validate() error {
	if c.Table.Buckets < 1 {
		return fmt.Errorf("%w: table.buckets must be positive, got %d", ErrInvalidConfig, c.Table.Buckets)
	}
	if c.Table.LoadFactor < 0 {
		return fmt.Errorf("%w: table.load_factor must not be negative", ErrInvalidConfig)
	}
	if c.Table.MaxKeys < 0 {
		return fmt.Errorf("%w: table.max_keys must not be negative", ErrInvalidConfig)
	}
	if _, err := db.HasherByName[string](c.Table.Hasher); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	}
	return nil
}

// DBOptions turns the table section into keyspace options.
func (c *Config) DBOptions() (*db.DBOptions, error) {
	hasher, err := db.HasherByName[string](c.Table.Hasher)
	if err != nil {
		return nil, err
	}
	opts := db.NewOptions[string]()
	opts.Size = c.Table.Buckets
	opts.LoadFactor = c.Table.LoadFactor
	opts.Hasher = hasher
	return &db.DBOptions{Table: opts, MaxKeys: c.Table.MaxKeys}, nil
}
