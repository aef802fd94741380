// Castfleet Core - Smart Speaker Fleet Engine
//
// This is the main entry point for the Castfleet Core application.
// Castfleet polls a fleet of smart speakers over their LAN control API,
// aggregates alarms, timers, volume and do-not-disturb state, and
// publishes the fleet view over MQTT for dashboards and automations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/castfleet/castfleet-core/internal/bluetooth"
	"github.com/castfleet/castfleet-core/internal/device"
	"github.com/castfleet/castfleet-core/internal/infrastructure/config"
	"github.com/castfleet/castfleet-core/internal/infrastructure/influxdb"
	"github.com/castfleet/castfleet-core/internal/infrastructure/logging"
	"github.com/castfleet/castfleet-core/internal/infrastructure/mqtt"
	"github.com/castfleet/castfleet-core/internal/localapi"
	"github.com/castfleet/castfleet-core/internal/poller"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Castfleet Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Device registry and local API client
	registry := device.NewRegistry()
	registry.SetLogger(log.With("component", "registry"))

	apiClient := localapi.New(cfg.PollTimeout())
	apiClient.SetLogger(log.With("component", "localapi"))

	irks, err := parseIRKs(cfg.Bluetooth.IRKs)
	if err != nil {
		return fmt.Errorf("parsing bluetooth identity keys: %w", err)
	}

	engine := poller.New(registry, apiClient,
		poller.WithDiscoverer(&staticDiscoverer{devices: cfg.Discovery.Static}),
		poller.WithConcurrency(cfg.Polling.Concurrency),
		poller.WithLogger(log.With("component", "poller")),
	)
	log.Info("poll engine initialised",
		"interval", cfg.PollInterval().String(),
		"timeout", cfg.PollTimeout().String(),
		"concurrency", cfg.Polling.Concurrency,
		"static_devices", len(cfg.Discovery.Static),
	)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		if subErr := subscribeCommands(ctx, mqttClient, engine, cfg, log); subErr != nil {
			return fmt.Errorf("subscribing to command topics: %w", subErr)
		}
		if subErr := subscribeCaptures(mqttClient, registry, irks, cfg, log); subErr != nil {
			return fmt.Errorf("subscribing to bluetooth capture topics: %w", subErr)
		}
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	log.Info("initialisation complete, starting poll loop")

	pollLoop(ctx, engine, mqttClient, influxClient, cfg, log)

	log.Info("Castfleet Core stopped")
	return nil
}

// pollLoop drives poll cycles at the configured interval until ctx is
// cancelled. The first cycle runs immediately so the fleet view is
// available without waiting a full interval.
func pollLoop(ctx context.Context, engine *poller.Poller, mqttClient *mqtt.Client, influxClient *influxdb.Client, cfg *config.Config, log *logging.Logger) {
	runCycle := func() {
		start := time.Now()
		fleet := engine.Cycle(ctx)
		if ctx.Err() != nil {
			return
		}

		publishFleet(mqttClient, fleet, log)

		if influxClient != nil {
			pollable := 0
			for _, dev := range fleet {
				influxClient.WriteDeviceState(dev)
				if closest := bluetooth.Closest(dev.BluetoothPeers); closest != nil {
					influxClient.WritePeerRSSI(dev.ID, closest.MACAddress, closest.RSSI)
				}
				if dev.Pollable() {
					pollable++
				}
			}
			influxClient.WriteCycleDuration(time.Since(start), len(fleet), pollable)
		}
	}

	runCycle()

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received, stopping poll loop")
			return
		case <-ticker.C:
			runCycle()
		}
	}
}

// publishFleet pushes each device's aggregated state to its retained
// MQTT topic.
func publishFleet(mqttClient *mqtt.Client, fleet []*device.Device, log *logging.Logger) {
	if mqttClient == nil {
		return
	}

	topics := mqtt.Topics{}
	for _, dev := range fleet {
		payload, err := json.Marshal(dev)
		if err != nil {
			log.Error("encoding device state", "device", dev.Name, "error", err)
			continue
		}
		if err := mqttClient.PublishRetained(topics.DeviceState(dev.ID), payload); err != nil {
			log.Warn("publishing device state", "device", dev.Name, "error", err)
		}
	}
}

// Command payloads accepted on castfleet/command/{device_id}/{action}.
type volumeCommand struct {
	Volume int `json:"volume"`
}

type dndCommand struct {
	Enabled bool `json:"enabled"`
}

type deleteCommand struct {
	ItemID string `json:"item_id"`
}

// subscribeCommands wires the MQTT command topics into the poll engine's
// on-demand write operations.
func subscribeCommands(ctx context.Context, mqttClient *mqtt.Client, engine *poller.Poller, cfg *config.Config, log *logging.Logger) error {
	topics := mqtt.Topics{}
	return mqttClient.Subscribe(topics.AllCommands(), byte(cfg.MQTT.QoS), func(topic string, payload []byte) error {
		deviceID, action, err := parseCommandTopic(topic)
		if err != nil {
			return err
		}

		// Each command gets its own deadline; a wedged device must not
		// block the paho handler pool.
		cmdCtx, cancel := context.WithTimeout(ctx, cfg.PollTimeout()+time.Second)
		defer cancel()

		switch action {
		case "set_volume":
			var cmd volumeCommand
			if err := json.Unmarshal(payload, &cmd); err != nil {
				return fmt.Errorf("decoding set_volume payload: %w", err)
			}
			return engine.SetAlarmVolume(cmdCtx, deviceID, cmd.Volume)

		case "set_do_not_disturb":
			var cmd dndCommand
			if err := json.Unmarshal(payload, &cmd); err != nil {
				return fmt.Errorf("decoding set_do_not_disturb payload: %w", err)
			}
			return engine.SetDoNotDisturb(cmdCtx, deviceID, cmd.Enabled)

		case "delete_item":
			var cmd deleteCommand
			if err := json.Unmarshal(payload, &cmd); err != nil {
				return fmt.Errorf("decoding delete_item payload: %w", err)
			}
			return engine.DeleteItem(cmdCtx, deviceID, cmd.ItemID)

		case "reboot":
			return engine.Reboot(cmdCtx, deviceID)

		default:
			log.Warn("unknown device command", "topic", topic, "action", action)
			return nil
		}
	})
}

// subscribeCaptures feeds externally published bluetooth advertisement
// batches into the registry and resolves known owners against them. The
// engine never drives a radio; captures arrive from whatever scanner the
// deployment runs.
func subscribeCaptures(mqttClient *mqtt.Client, registry *device.Registry, irks map[string]bluetooth.IRK, cfg *config.Config, log *logging.Logger) error {
	topics := mqtt.Topics{}
	return mqttClient.Subscribe(topics.AllBluetoothCaptures(), byte(cfg.MQTT.QoS), func(topic string, payload []byte) error {
		deviceID, err := parseCaptureTopic(topic)
		if err != nil {
			return err
		}

		var peers []device.BluetoothPeer
		if err := json.Unmarshal(payload, &peers); err != nil {
			return fmt.Errorf("decoding capture batch: %w", err)
		}

		if err := registry.SetBluetoothPeers(deviceID, peers); err != nil {
			// A batch for an unknown device is stale radio traffic,
			// not a fault.
			log.Debug("capture batch for unknown device", "device_id", deviceID)
			return nil
		}

		for owner, peer := range bluetooth.ResolveOwner(irks, peers) {
			log.Debug("resolved bluetooth peer",
				"owner", owner,
				"device_id", deviceID,
				"rssi", peer.RSSI,
			)
		}
		for _, mac := range cfg.Bluetooth.TrackedMACs {
			if peer := bluetooth.FindPeer(mac, peers); peer != nil {
				log.Debug("tracked bluetooth peer seen",
					"mac", mac,
					"device_id", deviceID,
					"rssi", peer.RSSI,
				)
			}
		}
		return nil
	})
}

// parseIRKs decodes the configured hex identity keys once at startup.
func parseIRKs(raw map[string]string) (map[string]bluetooth.IRK, error) {
	out := make(map[string]bluetooth.IRK, len(raw))
	for owner, hexKey := range raw {
		key, err := bluetooth.ParseIRK(hexKey)
		if err != nil {
			return nil, fmt.Errorf("owner %q: %w", owner, err)
		}
		out[owner] = key
	}
	return out, nil
}

// parseCaptureTopic extracts the device ID from a capture topic.
// Expected shape: castfleet/bluetooth/{device_id}/capture
func parseCaptureTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != mqtt.TopicPrefix || parts[1] != "bluetooth" || parts[3] != "capture" {
		return "", fmt.Errorf("malformed capture topic: %q", topic)
	}
	return parts[2], nil
}

// parseCommandTopic extracts device ID and action from a command topic.
// Expected shape: castfleet/command/{device_id}/{action}
func parseCommandTopic(topic string) (deviceID, action string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != mqtt.TopicPrefix || parts[1] != "command" {
		return "", "", fmt.Errorf("malformed command topic: %q", topic)
	}
	return parts[2], parts[3], nil
}

// staticDiscoverer supplies the fleet from config for installations
// without a live discovery service. Tokens come from config unchanged,
// so after a fleet-wide invalidation the same credentials are reloaded;
// deployments with rotating tokens plug in their own poller.Discoverer.
type staticDiscoverer struct {
	devices []config.StaticDeviceConfig
}

func (s *staticDiscoverer) Discover(_ context.Context) ([]*device.Device, error) {
	out := make([]*device.Device, 0, len(s.devices))
	for _, d := range s.devices {
		dev := &device.Device{
			ID:   d.ID,
			Name: d.Name,
		}
		if d.IP != "" {
			ip := d.IP
			dev.IPAddress = &ip
		}
		if d.Token != "" {
			token := d.Token
			dev.AuthToken = &token
		}
		if d.Hardware != "" {
			hw := d.Hardware
			dev.Hardware = &hw
		}
		out = append(out, dev)
	}
	return out, nil
}

// getConfigPath returns the configuration file path.
// Uses CASTFLEET_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CASTFLEET_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
