// Package config loads mfsd's configuration from a file and MFS_-prefixed
// environment variables via viper, the way the rest of the example pack's
// config-driven servers do, rather than the teacher's own hand-rolled JSON
// loader — this server's configuration is small enough that viper's
// precedence rules (env over file over default) pull their weight without
// the teacher's token/bootstrap/disk-image sprawl.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete set of construction parameters for mfsd: where it
// listens, the protocol limits it enforces, the directory it serves files
// from, and the admin surface.
type Config struct {
	Listen string `mapstructure:"listen" validate:"required,hostname_port"`

	MaxClients int    `mapstructure:"max_clients" validate:"required,gt=0,lte=256"`
	MaxFiles   int    `mapstructure:"max_files" validate:"required,gt=0,lte=256"`
	PathBufLen uint32 `mapstructure:"path_buf_len" validate:"required,gt=0"`
	DataBufLen uint32 `mapstructure:"data_buf_len" validate:"required,gt=0"`
	HardLimit  uint32 `mapstructure:"hard_limit" validate:"required,gtfield=DataBufLen"`

	ClientTimeout time.Duration `mapstructure:"client_timeout" validate:"required,gt=0"`
	IOTimeout     time.Duration `mapstructure:"io_timeout" validate:"required,gt=0"`

	FilesDir string `mapstructure:"files_dir" validate:"required"`

	AdminListen string `mapstructure:"admin_listen"`
	EventBuffer int    `mapstructure:"event_buffer" validate:"gte=0"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	return Config{
		Listen:        ":6400",
		MaxClients:    32,
		MaxFiles:      64,
		PathBufLen:    256,
		DataBufLen:    4096,
		HardLimit:     65536,
		ClientTimeout: 20 * time.Second,
		IOTimeout:     2 * time.Second,
		FilesDir:      "files",
		AdminListen:   "127.0.0.1:6401",
		EventBuffer:   1024,
	}
}

// Load reads configuration from configPath (if non-empty and present),
// layering MFS_-prefixed environment variables and then Default() on top
// of whatever the file didn't set, and validates the result.
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("MFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("listen", d.Listen)
	v.SetDefault("max_clients", d.MaxClients)
	v.SetDefault("max_files", d.MaxFiles)
	v.SetDefault("path_buf_len", d.PathBufLen)
	v.SetDefault("data_buf_len", d.DataBufLen)
	v.SetDefault("hard_limit", d.HardLimit)
	v.SetDefault("client_timeout", d.ClientTimeout)
	v.SetDefault("io_timeout", d.IOTimeout)
	v.SetDefault("files_dir", d.FilesDir)
	v.SetDefault("admin_listen", d.AdminListen)
	v.SetDefault("event_buffer", d.EventBuffer)
}
