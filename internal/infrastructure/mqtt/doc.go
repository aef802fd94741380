// Package mqtt provides MQTT client connectivity for Castfleet Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Castfleet publishes each device's aggregated state to a retained topic
// after every poll cycle and listens for user commands on a wildcard
// command topic. The broker decouples the polling engine from whatever
// dashboards or automations consume the fleet state.
//
//	Castfleet Core ↔ MQTT Broker ↔ dashboards / automations
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Device auth tokens never appear in published payloads
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Listen for device commands
//	err = client.Subscribe(mqtt.Topics{}.AllCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        return dispatch(topic, payload)
//	    })
//
//	// Publish fleet state
//	topic := mqtt.Topics{}.DeviceState("a1b2c3")
//	client.PublishRetained(topic, stateJSON)
package mqtt
