package bluetooth

import (
	"sort"
	"strings"

	"github.com/castfleet/castfleet-core/internal/device"
)

// Rank returns the capture batch ordered by signal strength, strongest
// first. The input is not modified. Equal-RSSI peers keep their capture
// order so repeated ranking of the same batch is deterministic.
func Rank(peers []device.BluetoothPeer) []device.BluetoothPeer {
	out := make([]device.BluetoothPeer, len(peers))
	copy(out, peers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RSSI > out[j].RSSI
	})
	return out
}

// Closest returns the strongest-signal peer in the batch, or nil for an
// empty batch.
func Closest(peers []device.BluetoothPeer) *device.BluetoothPeer {
	ranked := Rank(peers)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}

// ResolvePeer scans a capture batch for the first peer whose rotating
// address resolves against the given key. Returns nil when no peer
// belongs to the key's owner. Peers with unparseable addresses are
// skipped; a capture batch is scavenged radio traffic, not trusted
// input.
func ResolvePeer(key IRK, peers []device.BluetoothPeer) *device.BluetoothPeer {
	for i := range peers {
		ok, err := key.Matches(peers[i].MACAddress)
		if err != nil {
			continue
		}
		if ok {
			return &peers[i]
		}
	}
	return nil
}

// FindPeer scans a capture batch for a fixed (non-rotating) address.
// Comparison is case-insensitive; capture hardware disagrees on hex
// casing. Returns nil when the address is not in the batch.
func FindPeer(mac string, peers []device.BluetoothPeer) *device.BluetoothPeer {
	for i := range peers {
		if strings.EqualFold(peers[i].MACAddress, mac) {
			return &peers[i]
		}
	}
	return nil
}

// ResolveOwner maps a capture batch against a set of named keys,
// returning for each owner the matched peer. Owners with no matching
// peer in the batch are absent from the result.
func ResolveOwner(keys map[string]IRK, peers []device.BluetoothPeer) map[string]device.BluetoothPeer {
	found := make(map[string]device.BluetoothPeer)
	for owner, key := range keys {
		if p := ResolvePeer(key, peers); p != nil {
			found[owner] = *p
		}
	}
	return found
}
