// Package config loads process configuration from the environment (and
// an optional config file) and tuning presets from YAML files.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the process-level configuration for the API server.
type Config struct {
	Port     string `mapstructure:"port"`
	Mode     string `mapstructure:"mode"` // gin mode: debug|release|test
	LogLevel string `mapstructure:"log_level"`

	// Seed drives the simulator backend; fixed for reproducible runs,
	// any value works in production.
	Seed int64 `mapstructure:"seed"`

	// TuningFile optionally points at a YAML tuning preset.
	TuningFile string `mapstructure:"tuning_file"`

	MQTT MQTTConfig `mapstructure:"mqtt"`
}

// MQTTConfig configures the optional result publisher. Publishing is
// disabled when Broker is empty.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Load reads configuration with the QES_ environment prefix, layered over
// defaults and an optional file given by QES_CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("QES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("mode", "debug")
	v.SetDefault("log_level", "info")
	v.SetDefault("seed", int64(1))
	v.SetDefault("tuning_file", "")
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "energy/optimization/results")
	v.SetDefault("mqtt.client_id", "quantum-energy-scheduler")

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
