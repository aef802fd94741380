package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
fleet:
  id: "test-fleet"
polling:
  interval: 15
  timeout: 3
  concurrency: 4
discovery:
  static:
    - id: "abc123"
      name: "Kitchen speaker"
      ip: "192.168.1.10"
      token: "local-token"
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Fleet.ID != "test-fleet" {
		t.Errorf("Fleet.ID = %q, want %q", cfg.Fleet.ID, "test-fleet")
	}

	if cfg.Polling.Interval != 15 {
		t.Errorf("Polling.Interval = %d, want 15", cfg.Polling.Interval)
	}

	if len(cfg.Discovery.Static) != 1 || cfg.Discovery.Static[0].Name != "Kitchen speaker" {
		t.Errorf("Discovery.Static = %+v, want the configured speaker", cfg.Discovery.Static)
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Fleet.ID = "fleet-001"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing fleet ID",
			mutate:  func(c *Config) { c.Fleet.ID = "" },
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Polling.Interval = 0 },
			wantErr: true,
		},
		{
			name:    "timeout below bound",
			mutate:  func(c *Config) { c.Polling.Timeout = 1 },
			wantErr: true,
		},
		{
			name:    "timeout above bound",
			mutate:  func(c *Config) { c.Polling.Timeout = 11 },
			wantErr: true,
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Polling.Concurrency = -1 },
			wantErr: true,
		},
		{
			name: "static device without id",
			mutate: func(c *Config) {
				c.Discovery.Static = []StaticDeviceConfig{{Name: "orphan"}}
			},
			wantErr: true,
		},
		{
			name: "malformed IRK",
			mutate: func(c *Config) {
				c.Bluetooth.IRKs = map[string]string{"alice": "tooshort"}
			},
			wantErr: true,
		},
		{
			name: "invalid QoS when mqtt enabled",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.QoS = 3
			},
			wantErr: true,
		},
		{
			name: "invalid QoS ignored when mqtt disabled",
			mutate: func(c *Config) {
				c.MQTT.Enabled = false
				c.MQTT.QoS = 3
			},
			wantErr: false,
		},
		{
			name: "influxdb enabled without token",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
				c.InfluxDB.Org = "castfleet"
				c.InfluxDB.Bucket = "fleet"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("CASTFLEET_POLLING_INTERVAL", "120")
	t.Setenv("CASTFLEET_POLLING_TIMEOUT", "5")
	t.Setenv("CASTFLEET_MQTT_HOST", "mqtt.example.com")
	t.Setenv("CASTFLEET_MQTT_USERNAME", "testuser")
	t.Setenv("CASTFLEET_MQTT_PASSWORD", "testpass")
	t.Setenv("CASTFLEET_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Polling.Interval != 120 {
		t.Errorf("Polling.Interval = %d, want 120", cfg.Polling.Interval)
	}

	if cfg.Polling.Timeout != 5 {
		t.Errorf("Polling.Timeout = %d, want 5", cfg.Polling.Timeout)
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Fleet.ID == "" {
		t.Error("defaultConfig should have non-empty Fleet.ID")
	}

	if cfg.Polling.Interval < 1 {
		t.Error("defaultConfig should have a usable poll interval")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if got := cfg.PollTimeout().Seconds(); got != 2 {
		t.Errorf("PollTimeout() = %v, want 2", got)
	}
}
