package bluetooth

import (
	"crypto/aes"
	"encoding/hex"
	"fmt"
	"strings"
)

// IRK is a Bluetooth LE identity resolving key. Phones rotate the public
// MAC address they advertise (a resolvable private address), but the
// rotation is keyed: given the owner's IRK, any of their rotating
// addresses can be recognised without knowing the rotation schedule.
type IRK [16]byte

// ParseIRK parses a 32-character hex string into an IRK. The byte order
// matches the key as exported by the vendor's companion app, most
// significant byte first.
func ParseIRK(s string) (IRK, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(raw) != 16 {
		return IRK{}, fmt.Errorf("%w: want 32 hex characters", ErrInvalidIRK)
	}
	var k IRK
	copy(k[:], raw)
	return k, nil
}

// Matches reports whether mac is a resolvable private address generated
// from this key.
//
// A resolvable private address is prand (3 bytes, top two bits 0b01)
// followed by hash (3 bytes), where hash = ah(irk, prand): AES-128
// encrypt prand zero-padded to one block and keep the low 3 bytes.
// An address whose top bits mark it as non-resolvable can never match.
func (k IRK) Matches(mac string) (bool, error) {
	addr, err := parseMAC(mac)
	if err != nil {
		return false, err
	}

	// Top two bits of the first octet: 0b01 marks a resolvable private
	// address. Public and static random addresses are skipped outright.
	if addr[0]&0xc0 != 0x40 {
		return false, nil
	}

	var prand, hash [3]byte
	copy(prand[:], addr[:3])
	copy(hash[:], addr[3:])

	return k.ah(prand) == hash, nil
}

// ah is the Bluetooth random address hash function (Core Spec Vol 3,
// Part H, 2.2.2): AES-128(k, pad(prand)) truncated to 24 bits.
func (k IRK) ah(prand [3]byte) [3]byte {
	block, err := aes.NewCipher(k[:])
	if err != nil {
		// aes.NewCipher only fails on bad key length; IRK is fixed-size.
		panic(err)
	}

	var pt, ct [16]byte
	copy(pt[13:], prand[:])
	block.Encrypt(ct[:], pt[:])

	var out [3]byte
	copy(out[:], ct[13:])
	return out
}

// parseMAC parses a colon-separated MAC address into its six octets,
// most significant first.
func parseMAC(mac string) ([6]byte, error) {
	var addr [6]byte
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return addr, fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}
	for i, part := range parts {
		b, err := hex.DecodeString(part)
		if err != nil || len(b) != 1 {
			return addr, fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
		}
		addr[i] = b[0]
	}
	return addr, nil
}
