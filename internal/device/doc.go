// Package device provides the domain model and fleet registry for
// Castfleet Core.
//
// The Registry is the central catalogue of smart-speaker devices known to
// the current session. It is rebuilt wholesale by each discovery pass,
// mutated in place by poll cycles, and cleared fleet-wide when any device
// reports an authentication failure (forcing rediscovery with fresh
// tokens).
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────────┐
//	│                         Device Registry                        │
//	│                                                                │
//	│  ┌────────────────┐   ┌────────────────┐   ┌────────────────┐  │
//	│  │    Registry    │   │  Domain model  │   │   Derivation   │  │
//	│  │ (registry.go)  │──▶│   (types.go)   │──▶│  (derive.go)   │  │
//	│  │                │   │                │   │                │  │
//	│  │ • Fleet store  │   │ • Device       │   │ • Stable sort  │  │
//	│  │ • Per-device   │   │ • Alarm/Timer  │   │ • Next alarm/  │  │
//	│  │   locking      │   │ • BT peers     │   │   timer        │  │
//	│  │ • Invalidation │   │ • Conversions  │   │                │  │
//	│  └────────────────┘   └────────────────┘   └────────────────┘  │
//	└────────────────────────────────────────────────────────────────┘
//	         ▲                                          │
//	         │ ApplyPoll / Invalidate                   ▼
//	┌────────────────────┐                  ┌────────────────────────┐
//	│  Poll Orchestrator │                  │  Snapshot consumers    │
//	│ (internal/poller)  │                  │  (MQTT, telemetry)     │
//	└────────────────────┘                  └────────────────────────┘
//
// # Key Types
//
//   - Device: one speaker — identity, network/auth, polled state
//   - Alarm, Timer: replace-wholesale value objects with wire conversions
//   - BluetoothPeer: one captured advertisement, rebuilt every batch
//   - Registry: thread-safe fleet store with generation-guarded
//     fleet-wide invalidation
//
// # Concurrency
//
// Mutation is serialised per device via a per-entry mutex and lock-free
// across devices. The cycle generation (BeginCycle) gates two things:
// stale poll results from a superseded cycle are dropped, and fleet-wide
// invalidation fires at most once per cycle no matter how many devices
// report 401 concurrently.
package device
