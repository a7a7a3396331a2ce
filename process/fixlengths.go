// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package process

import (
	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/packet"
	"github.com/siemens/pcaped/record"
)

// FixLengths recomputes the layered length fields of a packet bottom-up
// after a payload has been edited: the opaque payload size feeds into the
// UDP length, the TCP header length is derived from the serialized TCP
// header, the payload and transport header sizes feed into the IPv4 total
// length, and the sum of all layers finally becomes the captured length.
// The original packet length only follows along when it equalled the
// captured length before, as a differing packet length means the capture
// was truncated on purpose.
type FixLengths struct{}

// Name implements Processor.
func (FixLengths) Name() string { return "fix-lengths" }

// Process implements Processor.
func (FixLengths) Process(info *record.Record) {
	if !isEnhancedPacket(info) {
		return
	}

	total := 0
	if payload, ok := info.Get("unknown_payload"); ok {
		total += len(payload.ByteString())
	}
	if udp := info.Sub("udp_data"); udp != nil {
		size := headerSize(udp, packet.WriteUDP)
		udp.Set("length", record.Int(uint64(size+total)))
		total += size
	}
	if tcp := info.Sub("tcp_data"); tcp != nil {
		size := headerSize(tcp, packet.WriteTCP)
		tcp.Set("header_length", record.Int(uint64(size/4)))
		total += size
	}
	if ipv4 := info.Sub("ipv4_data"); ipv4 != nil {
		size := headerSize(ipv4, packet.WriteIPv4)
		ipv4.Set("total_length", record.Int(uint64(size+total)))
		total += size
	}
	if ethernet := info.Sub("ethernet_data"); ethernet != nil {
		total += headerSize(ethernet, packet.WriteEthernet)
	}

	if info.Uint("captured_length") == info.Uint("packet_length") {
		info.Set("packet_length", record.Int(uint64(total)))
	}
	info.Set("captured_length", record.Int(uint64(total)))
}

// headerSize measures a header's wire size by encoding it into a counting
// sink.
func headerSize(info *record.Record, write func(*binio.Writer, *record.Record)) int {
	w := binio.NewWriter()
	write(w, info)
	return w.Tell()
}
