// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Package packet encodes and decodes the nested packet headers found inside
// Enhanced Packet Blocks: Ethernet, IPv4, and on top of that UDP and TCP
// (including TCP options). Header fields are big-endian on the wire,
// regardless of the pcapng section endianness. Anything above UDP/TCP is
// opaque payload and preserved verbatim.
package packet

import (
	"encoding/binary"

	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/record"
)

// Link and protocol numbers this codec dissects; everything else is kept as
// raw payload.
const (
	LinkTypeEthernet = 1

	TypeIPv4 = 0x0800

	ProtocolTCP = 6
	ProtocolUDP = 17
)

var be = binary.BigEndian

// ReadEthernet decodes an Ethernet II header.
func ReadEthernet(r *binio.Reader) *record.Record {
	info := record.New()
	info.Set("destination", record.Bytes(r.Bytes(6)))
	info.Set("source", record.Bytes(r.Bytes(6)))
	info.Set("type", record.Int(uint64(r.Uint16(be))))
	return info
}

// WriteEthernet encodes an Ethernet II header.
func WriteEthernet(w *binio.Writer, info *record.Record) {
	dst, _ := info.Get("destination")
	src, _ := info.Get("source")
	w.PutBytes(dst.ByteString())
	w.PutBytes(src.ByteString())
	w.PutUint16(be, uint16(info.Uint("type")))
}
