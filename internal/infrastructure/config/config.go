package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Castfleet Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Fleet     FleetConfig     `yaml:"fleet"`
	Polling   PollingConfig   `yaml:"polling"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Bluetooth BluetoothConfig `yaml:"bluetooth"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// FleetConfig contains deployment-specific identification.
type FleetConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// PollingConfig contains poll cycle settings.
type PollingConfig struct {
	// Interval is the time between poll cycle starts, in seconds.
	Interval int `yaml:"interval"`

	// Timeout is the per-request timeout for device HTTP calls, in
	// seconds. Clamped to [2, 10] by validation.
	Timeout int `yaml:"timeout"`

	// Concurrency bounds how many devices are polled at once.
	// 0 means unbounded.
	Concurrency int `yaml:"concurrency"`
}

// DiscoveryConfig describes where the fleet comes from. Static devices
// cover installations without a cloud discovery service; real
// deployments plug in a discoverer that refreshes tokens.
type DiscoveryConfig struct {
	Static []StaticDeviceConfig `yaml:"static"`
}

// StaticDeviceConfig is one statically configured speaker.
type StaticDeviceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	IP       string `yaml:"ip"`
	Token    string `yaml:"token"`
	Hardware string `yaml:"hardware"`
}

// BluetoothConfig contains identity resolution settings for the
// advertisement capture feature.
type BluetoothConfig struct {
	// IRKs maps an owner name to their 32-hex-character identity
	// resolving key.
	IRKs map[string]string `yaml:"irks"`

	// TrackedMACs lists fixed (non-rotating) peer addresses to report
	// whenever they appear in a capture batch.
	TrackedMACs []string `yaml:"tracked_macs"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CASTFLEET_SECTION_KEY
// For example: CASTFLEET_MQTT_HOST, CASTFLEET_POLLING_INTERVAL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Fleet: FleetConfig{
			ID:       "fleet-001",
			Name:     "Castfleet",
			Timezone: "UTC",
		},
		Polling: PollingConfig{
			Interval:    30,
			Timeout:     2,
			Concurrency: 8,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "castfleet-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CASTFLEET_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Polling
	if v := os.Getenv("CASTFLEET_POLLING_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Polling.Interval = n
		}
	}
	if v := os.Getenv("CASTFLEET_POLLING_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Polling.Timeout = n
		}
	}

	// MQTT
	if v := os.Getenv("CASTFLEET_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CASTFLEET_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CASTFLEET_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("CASTFLEET_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Fleet.ID == "" {
		errs = append(errs, "fleet.id is required")
	}

	if c.Polling.Interval < 1 {
		errs = append(errs, "polling.interval must be at least 1 second")
	}
	// Device HTTP calls are LAN-local; the client clamps to the same
	// bounds, but a config outside them is a mistake worth surfacing.
	if c.Polling.Timeout < 2 || c.Polling.Timeout > 10 {
		errs = append(errs, "polling.timeout must be between 2 and 10 seconds")
	}
	if c.Polling.Concurrency < 0 {
		errs = append(errs, "polling.concurrency must not be negative")
	}

	for i, d := range c.Discovery.Static {
		if d.ID == "" {
			errs = append(errs, fmt.Sprintf("discovery.static[%d].id is required", i))
		}
	}

	for owner, irk := range c.Bluetooth.IRKs {
		if len(irk) != 32 {
			errs = append(errs, fmt.Sprintf("bluetooth.irks[%s] must be 32 hex characters", owner))
		}
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set CASTFLEET_INFLUXDB_TOKEN)")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// PollInterval returns the poll cycle interval as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.Interval) * time.Second
}

// PollTimeout returns the per-request device timeout as a Duration.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Polling.Timeout) * time.Second
}
