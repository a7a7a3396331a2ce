// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package process

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/packet"
	"github.com/siemens/pcaped/record"
)

// udpPacket assembles an enhanced packet record with an Ethernet/IPv4/UDP
// chain and a 4-octet payload, with all length fields already consistent;
// the IPv4 and UDP checksum fields hold placeholder values.
func udpPacket() *record.Record {
	ethernet := record.New()
	ethernet.Set("destination", record.Bytes([]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}))
	ethernet.Set("source", record.Bytes([]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}))
	ethernet.Set("type", record.Int(packet.TypeIPv4))

	ipv4 := record.New()
	ipv4.Set("version", record.Int(4))
	ipv4.Set("header_length", record.Int(5))
	ipv4.Set("dsf", record.Hex(0))
	ipv4.Set("total_length", record.Int(32))
	ipv4.Set("identification", record.Hex(0x1234))
	ipv4.Set("flags", record.Hex(0x2))
	ipv4.Set("fragment_offset", record.Int(0))
	ipv4.Set("ttl", record.Int(64))
	ipv4.Set("protocol", record.Int(packet.ProtocolUDP))
	ipv4.Set("header_checksum", record.Hex(0xbeef))
	ipv4.Set("source", record.Flow(
		record.Int(172), record.Int(16), record.Int(10), record.Int(99)))
	ipv4.Set("destination", record.Flow(
		record.Int(172), record.Int(16), record.Int(10), record.Int(12)))

	udp := record.New()
	udp.Set("source_port", record.Int(5353))
	udp.Set("destination_port", record.Int(5353))
	udp.Set("length", record.Int(12))
	udp.Set("checksum", record.Hex(0))

	info := record.New()
	info.Set("block_type", record.Hex(0x6))
	info.Set("interface_id", record.Int(0))
	info.Set("datetime", record.Time(time.Date(2020, 6, 15, 12, 0, 0, 0, time.UTC)))
	info.Set("captured_length", record.Int(46))
	info.Set("packet_length", record.Int(46))
	info.Set("ethernet_data", record.Nested(ethernet))
	info.Set("ipv4_data", record.Nested(ipv4))
	info.Set("udp_data", record.Nested(udp))
	info.Set("unknown_payload", record.Bytes([]byte{0xde, 0xad, 0xbe, 0xef}))
	return info
}

// tcpPacket assembles an enhanced packet record with a TCP header carrying
// options, and an 8-octet payload.
func tcpPacket(seq, ack, flags uint64) *record.Record {
	info := udpPacket()

	ipv4 := info.Sub("ipv4_data")
	ipv4.Set("protocol", record.Int(packet.ProtocolTCP))
	ipv4.Set("total_length", record.Int(20+32+8))

	mss := record.New()
	mss.Set("max_segment_size", record.Int(1460))
	tcp := record.New()
	tcp.Set("source_port", record.Int(1000))
	tcp.Set("destination_port", record.Int(80))
	tcp.Set("seq_num", record.Int(seq))
	tcp.Set("ack_num", record.Int(ack))
	tcp.Set("header_length", record.Int(8))
	tcp.Set("flags", record.Int(flags))
	tcp.Set("window_size", record.Int(0x7210))
	tcp.Set("checksum", record.Hex(0))
	tcp.Set("urgent_pointer", record.Int(0))
	// MSS plus seven NOPs plus the end marker: exactly three option words.
	tcp.Set("options", record.Block(
		record.Nested(mss),
		record.Str("nop"),
		record.Str("nop"),
		record.Str("nop"),
		record.Str("nop"),
		record.Str("nop"),
		record.Str("nop"),
		record.Str("nop"),
		record.Str("end")))

	info.Set("tcp_data", record.Nested(tcp))
	info.Set("unknown_payload", record.Bytes([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	info.Set("captured_length", record.Int(74))
	info.Set("packet_length", record.Int(74))
	return info
}

// otherBlock returns an interface description record; processors must leave
// it alone.
func otherBlock() *record.Record {
	info := record.New()
	info.Set("block_type", record.Hex(0x1))
	info.Set("link_type", record.Int(1))
	info.Set("snapshot_length", record.Int(0x40000))
	return info
}

var _ = Describe("CleanMac", func() {

	It("zeroes both MAC addresses", func() {
		info := udpPacket()
		CleanMac{}.Process(info)
		ethernet := info.Sub("ethernet_data")
		dst, _ := ethernet.Get("destination")
		src, _ := ethernet.Get("source")
		Expect(dst.ByteString()).Should(Equal(make([]byte, 6)))
		Expect(src.ByteString()).Should(Equal(make([]byte, 6)))
	})

	It("ignores packets without an Ethernet layer", func() {
		info := record.New()
		info.Set("block_type", record.Hex(0x6))
		info.Set("unknown_payload", record.Bytes([]byte{1, 2, 3}))
		before := info.Len()
		CleanMac{}.Process(info)
		Expect(info.Len()).Should(Equal(before))
	})

	It("ignores non-packet blocks", func() {
		info := otherBlock()
		CleanMac{}.Process(info)
		Expect(info).Should(Equal(otherBlock()))
	})

})

var _ = Describe("MoveTimeline", func() {

	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

	It("latches the offset on the first record and shifts all of them", func() {
		m := NewMoveTimeline(start)
		first := udpPacket()
		second := udpPacket()
		second.Set("datetime", record.Time(
			time.Date(2020, 6, 15, 12, 0, 1, 500000000, time.UTC)))
		m.Process(first)
		m.Process(second)
		Expect(first.Time("datetime")).Should(Equal(start))
		Expect(second.Time("datetime")).
			Should(Equal(time.Date(2018, 1, 1, 0, 0, 1, 500000000, time.UTC)))
	})

	It("shifts interface statistics along with packets", func() {
		m := NewMoveTimeline(start)
		isb := record.New()
		isb.Set("block_type", record.Hex(0x5))
		isb.Set("interface_id", record.Int(0))
		isb.Set("datetime", record.Time(
			time.Date(2020, 6, 15, 12, 0, 2, 0, time.UTC)))
		m.Process(udpPacket())
		m.Process(isb)
		Expect(isb.Time("datetime")).
			Should(Equal(time.Date(2018, 1, 1, 0, 0, 2, 0, time.UTC)))
	})

	It("ignores other blocks entirely", func() {
		m := NewMoveTimeline(start)
		info := otherBlock()
		m.Process(info)
		Expect(info).Should(Equal(otherBlock()))
	})

})

var _ = Describe("FixLengths", func() {

	It("propagates the payload size bottom-up through UDP and IPv4", func() {
		info := udpPacket()
		info.Set("unknown_payload", record.Bytes(make([]byte, 10))) // was 4
		FixLengths{}.Process(info)
		Expect(info.Sub("udp_data").Uint("length")).Should(Equal(uint64(18)))
		Expect(info.Sub("ipv4_data").Uint("total_length")).Should(Equal(uint64(38)))
		Expect(info.Uint("captured_length")).Should(Equal(uint64(52)))
		Expect(info.Uint("packet_length")).Should(Equal(uint64(52)))
	})

	It("recomputes the TCP header length from the serialized options", func() {
		info := tcpPacket(0, 0, 0)
		info.Sub("tcp_data").Set("header_length", record.Int(5)) // out of date
		FixLengths{}.Process(info)
		Expect(info.Sub("tcp_data").Uint("header_length")).Should(Equal(uint64(8)))
		Expect(info.Sub("ipv4_data").Uint("total_length")).Should(Equal(uint64(60)))
		Expect(info.Uint("captured_length")).Should(Equal(uint64(74)))
	})

	It("leaves a truncated packet length alone", func() {
		info := udpPacket()
		info.Set("packet_length", record.Int(100)) // capture was cut short
		FixLengths{}.Process(info)
		Expect(info.Uint("captured_length")).Should(Equal(uint64(46)))
		Expect(info.Uint("packet_length")).Should(Equal(uint64(100)))
	})

	It("is idempotent", func() {
		once := tcpPacket(0, 0, 0)
		FixLengths{}.Process(once)
		twice := tcpPacket(0, 0, 0)
		FixLengths{}.Process(twice)
		FixLengths{}.Process(twice)
		Expect(twice).Should(Equal(once))
	})

	It("ignores non-packet blocks", func() {
		info := otherBlock()
		FixLengths{}.Process(info)
		Expect(info).Should(Equal(otherBlock()))
	})

})

var _ = Describe("FixChecksums", func() {

	It("recomputes the IPv4 header checksum to sum to zero", func() {
		info := udpPacket()
		FixChecksums{}.Process(info)
		ipv4 := info.Sub("ipv4_data")
		checksum, _ := ipv4.Get("header_checksum")
		Expect(checksum.IsHex()).Should(BeTrue())
		Expect(checksum.Uint()).ShouldNot(BeZero())
		w := binio.NewWriter()
		packet.WriteIPv4(w, ipv4)
		Expect(binio.CarryAddChecksum(w.Bytes())).Should(BeZero())
	})

	It("recomputes the UDP checksum over the pseudo-header", func() {
		info := udpPacket()
		FixChecksums{}.Process(info)
		ipv4 := info.Sub("ipv4_data")
		udp := info.Sub("udp_data")
		Expect(udp.Uint("checksum")).ShouldNot(BeZero())
		w := binio.NewWriter()
		pseudoHeader(w, ipv4)
		packet.WriteUDP(w, udp)
		payload, _ := info.Get("unknown_payload")
		w.PutBytes(payload.ByteString())
		Expect(binio.CarryAddChecksum(w.Bytes())).Should(BeZero())
	})

	It("recomputes the TCP checksum over the pseudo-header", func() {
		info := tcpPacket(1000, 2000, packet.FlagACK)
		FixChecksums{}.Process(info)
		ipv4 := info.Sub("ipv4_data")
		tcp := info.Sub("tcp_data")
		w := binio.NewWriter()
		pseudoHeader(w, ipv4)
		packet.WriteTCP(w, tcp)
		payload, _ := info.Get("unknown_payload")
		w.PutBytes(payload.ByteString())
		Expect(binio.CarryAddChecksum(w.Bytes())).Should(BeZero())
	})

	It("is idempotent on an already-correct packet", func() {
		once := udpPacket()
		FixChecksums{}.Process(once)
		twice := udpPacket()
		FixChecksums{}.Process(twice)
		FixChecksums{}.Process(twice)
		Expect(twice).Should(Equal(once))
	})

	It("ignores non-packet blocks", func() {
		info := otherBlock()
		FixChecksums{}.Process(info)
		Expect(info).Should(Equal(otherBlock()))
	})

})

var _ = Describe("FixTcpStreams", func() {

	// swap turns a client packet record into the answering direction.
	swap := func(info *record.Record) *record.Record {
		ipv4 := info.Sub("ipv4_data")
		src, _ := ipv4.Get("source")
		dst, _ := ipv4.Get("destination")
		ipv4.Set("source", dst)
		ipv4.Set("destination", src)
		tcp := info.Sub("tcp_data")
		sport, _ := tcp.Get("source_port")
		dport, _ := tcp.Get("destination_port")
		tcp.Set("source_port", dport)
		tcp.Set("destination_port", sport)
		return info
	}

	// segment builds a TCP packet record with the given payload length; the
	// header length is fixed at 8 words by tcpPacket.
	segment := func(seq, ack, flags uint64, payload int) *record.Record {
		info := tcpPacket(seq, ack, flags)
		info.Sub("ipv4_data").Set("total_length", record.Int(uint64(20+32+payload)))
		return info
	}

	seqOf := func(info *record.Record) uint64 { return info.Sub("tcp_data").Uint("seq_num") }
	ackOf := func(info *record.Record) uint64 { return info.Sub("tcp_data").Uint("ack_num") }

	It("renumbers a handshake and data transfer consistently", func() {
		f := NewFixTcpStreams()

		syn := segment(0x1000, 0, packet.FlagSYN, 0)
		f.Process(syn)
		// The flow table starts from the packet's own numbers.
		Expect(seqOf(syn)).Should(Equal(uint64(0x1000)))
		Expect(ackOf(syn)).Should(BeZero())

		// The bare SYN zeroed the opposite direction, so the answering
		// SYN+ACK starts at zero no matter what it carried.
		synack := swap(segment(0x9999, 0x1001, packet.FlagSYN|packet.FlagACK, 0))
		f.Process(synack)
		Expect(seqOf(synack)).Should(BeZero())
		Expect(ackOf(synack)).Should(Equal(uint64(0x1001)))

		// The SYN+ACK re-anchored its direction at its own wire sequence
		// number plus one.
		ack := segment(0x1001, 0x999a, packet.FlagACK, 0)
		f.Process(ack)
		Expect(seqOf(ack)).Should(Equal(uint64(0x1001)))
		Expect(ackOf(ack)).Should(Equal(uint64(0x999a)))

		data := segment(0x1001, 0x999a, packet.FlagACK|packet.FlagPSH, 100)
		f.Process(data)
		Expect(seqOf(data)).Should(Equal(uint64(0x1001)))

		// The data segment advanced its direction by its payload length.
		reply := swap(segment(0x999a, 0x1065, packet.FlagACK, 0))
		f.Process(reply)
		Expect(seqOf(reply)).Should(Equal(uint64(0x999a)))
		Expect(ackOf(reply)).Should(Equal(uint64(0x1001 + 100)))
	})

	It("is idempotent on an already-normalized stream", func() {
		run := func() []*record.Record {
			return []*record.Record{
				segment(0, 0, packet.FlagSYN, 0),
				swap(segment(0, 1, packet.FlagSYN|packet.FlagACK, 0)),
				segment(1, 1, packet.FlagACK, 0),
				segment(1, 1, packet.FlagACK|packet.FlagPSH, 10),
				swap(segment(1, 11, packet.FlagACK, 0)),
			}
		}
		expected := run()
		f := NewFixTcpStreams()
		stream := run()
		for _, info := range stream {
			f.Process(info)
		}
		Expect(stream).Should(Equal(expected))
	})

	It("tracks flows independently", func() {
		f := NewFixTcpStreams()
		a := segment(100, 0, packet.FlagSYN, 0)
		b := segment(200, 0, packet.FlagSYN, 0)
		b.Sub("tcp_data").Set("source_port", record.Int(1001))
		f.Process(a)
		f.Process(b)
		Expect(seqOf(a)).Should(Equal(uint64(100)))
		Expect(seqOf(b)).Should(Equal(uint64(200)))
	})

	It("ignores packets without TCP and non-packet blocks", func() {
		f := NewFixTcpStreams()
		udp := udpPacket()
		f.Process(udp)
		Expect(udp).Should(Equal(udpPacket()))
		other := otherBlock()
		f.Process(other)
		Expect(other).Should(Equal(otherBlock()))
	})

})
