// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"encoding/hex"
	"net"
	"strings"

	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// WakeOnLANSender is the supplemented Wake-on-LAN nudge (SPEC_FULL.md
// §12.4): when Primary is observed unreachable and ShareSpec.MAC is set,
// the reconciler sends a magic packet hoping to wake a sleeping server.
// Never consulted by the decision table — purely a best-effort nudge.
type WakeOnLANSender interface {
	WakeOnLAN(mac string) error
}

// UDPBroadcastSender sends the magic packet as a UDP broadcast on port 9
// (the discard port), the conventional Wake-on-LAN transport. This is
// plain stdlib: WoL is a raw broadcast datagram with no framing any
// library in the pack provides, and adding a dependency for 16 repeated
// MAC bytes would be the wrong trade.
type UDPBroadcastSender struct {
	BroadcastAddr string // defaults to 255.255.255.255:9
}

func NewUDPBroadcastSender() *UDPBroadcastSender {
	return &UDPBroadcastSender{BroadcastAddr: "255.255.255.255:9"}
}

// WakeOnLAN builds the standard magic packet (6 bytes of 0xFF followed by
// the target MAC repeated 16 times) and broadcasts it.
func (s *UDPBroadcastSender) WakeOnLAN(mac string) error {
	packet, err := magicPacket(mac)
	if err != nil {
		return err
	}

	conn, err := net.Dial("udp", s.BroadcastAddr)
	if err != nil {
		return merrors.New(merrors.MountCommandSpawn, err.Error()).WithMetadata("operation", "wol_dial")
	}
	defer conn.Close()

	if _, err := conn.Write(packet); err != nil {
		return merrors.New(merrors.MountCommandSpawn, err.Error()).WithMetadata("operation", "wol_write")
	}
	return nil
}

func magicPacket(mac string) ([]byte, error) {
	clean := strings.NewReplacer(":", "", "-", "").Replace(mac)
	addr, err := hex.DecodeString(clean)
	if err != nil || len(addr) != 6 {
		return nil, merrors.New(merrors.CommandInvalidInput, "invalid MAC address").WithMetadata("mac", mac)
	}

	packet := make([]byte, 0, 102)
	for i := 0; i < 6; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < 16; i++ {
		packet = append(packet, addr...)
	}
	return packet, nil
}
