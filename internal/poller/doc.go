// Package poller orchestrates fleet polling and on-demand device writes.
//
// Architecture:
//
//	           ┌────────────┐   Discover (registry empty)
//	           │ Discoverer │◄───────────────┐
//	           └────────────┘                │
//	                                   ┌─────┴─────┐  Fetch/Send  ┌─────────┐
//	  Cycle ──────────────────────────►│  Poller   │─────────────►│ devices │
//	  SetAlarmVolume / SetDoNotDisturb │           │◄─────────────│  (LAN)  │
//	  DeleteItem / Reboot ────────────►└─────┬─────┘   Outcome    └─────────┘
//	                                         │
//	                                         ▼ ApplyPoll / Set* / Invalidate
//	                                   ┌───────────┐
//	                                   │ Registry  │
//	                                   └───────────┘
//
// A cycle fans out across devices under an errgroup with a configurable
// limit; within a device the alarms, volume and notifications requests
// run sequentially and each contributes its own slice of the staged
// update. The registry's generation counter gives every cycle an
// identity: stale results from an older cycle are dropped on apply, and
// fleet-wide token invalidation fires at most once per generation no
// matter how many devices report 401 concurrently.
//
// Writes are user-initiated and never part of a cycle. They validate
// their inputs before touching the network, update the registry only on
// device acknowledgement, and downgrade the device to unavailable when
// the device cannot be reached.
package poller
