// Package bluetooth interprets the advertisement capture batches that
// speakers report about nearby LE devices.
//
// Two concerns live here:
//
//   - Proximity: Rank and Closest order a capture batch by RSSI so the
//     strongest (nearest) peer per speaker can be surfaced.
//   - Identity: phones advertise rotating resolvable private addresses,
//     so a raw MAC is useless for presence tracking. Given a device
//     owner's identity resolving key (IRK), ResolvePeer recognises the
//     owner's current rotating address inside a batch.
//
// Capture batches are ephemeral. Each batch replaces the previous one
// wholesale on the owning device record; nothing here accumulates state.
package bluetooth
