// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package process

import (
	"encoding/binary"

	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/packet"
	"github.com/siemens/pcaped/record"
)

// FixChecksums zeroes and then recomputes the Internet checksums of the
// dissected headers: the IPv4 header checksum over the header octets, and
// the UDP/TCP checksum over the IPv4 pseudo-header, the transport header,
// and the payload.
type FixChecksums struct{}

// Name implements Processor.
func (FixChecksums) Name() string { return "fix-checksums" }

// Process implements Processor.
func (FixChecksums) Process(info *record.Record) {
	if !isEnhancedPacket(info) {
		return
	}

	ipv4 := info.Sub("ipv4_data")
	if ipv4 != nil {
		ipv4.Set("header_checksum", record.Int(0))
		w := binio.NewWriter()
		packet.WriteIPv4(w, ipv4)
		ipv4.Set("header_checksum",
			record.Hex(uint64(binio.CarryAddChecksum(w.Bytes()))))
	}

	if udp := info.Sub("udp_data"); udp != nil {
		udp.Set("checksum", record.Int(0))
		w := binio.NewWriter()
		pseudoHeader(w, ipv4)
		packet.WriteUDP(w, udp)
		payload, _ := info.Get("unknown_payload")
		w.PutBytes(payload.ByteString())
		udp.Set("checksum", record.Hex(uint64(binio.CarryAddChecksum(w.Bytes()))))
	}

	if tcp := info.Sub("tcp_data"); tcp != nil {
		tcp.Set("checksum", record.Int(0))
		w := binio.NewWriter()
		pseudoHeader(w, ipv4)
		packet.WriteTCP(w, tcp)
		if payload, ok := info.Get("unknown_payload"); ok {
			w.PutBytes(payload.ByteString())
		}
		tcp.Set("checksum", record.Hex(uint64(binio.CarryAddChecksum(w.Bytes()))))
	}
}

// pseudoHeader emits the synthetic preamble the UDP and TCP checksums are
// computed over: both addresses, the protocol number widened to 16 bits,
// and the transport segment length.
func pseudoHeader(w *binio.Writer, ipv4 *record.Record) {
	if ipv4 == nil {
		return
	}
	src, _ := ipv4.Get("source")
	dst, _ := ipv4.Get("destination")
	w.PutBytes(src.ByteString())
	w.PutBytes(dst.ByteString())
	w.PutUint16(binary.BigEndian, uint16(ipv4.Uint("protocol")))
	w.PutUint16(binary.BigEndian,
		uint16(ipv4.Uint("total_length")-4*ipv4.Uint("header_length")))
}
