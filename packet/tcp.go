// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package packet

import (
	"fmt"

	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/record"
)

// TCP flag bits within the low 9 bits of the packed header length/flags
// word. Only these 9 bits (which include NS, CWR and ECE) survive a
// decode/encode round trip; the three reserved bits above them are cut off.
const (
	FlagFIN = 0x001
	FlagSYN = 0x002
	FlagRST = 0x004
	FlagPSH = 0x008
	FlagACK = 0x010
)

// TCP option codes with a fixed, documented size.
const (
	tcpOptEnd           = 0
	tcpOptNop           = 1
	tcpOptMSS           = 2
	tcpOptWindowScale   = 3
	tcpOptSackPermitted = 4
	tcpOptTimestamps    = 8
)

// ReadTCP decodes a TCP header including its options. The options list stops
// at an "end" option; any slack left in the option span afterwards is not
// consumed here and surfaces as opaque payload instead, which keeps the
// round trip stable.
func ReadTCP(r *binio.Reader) *record.Record {
	info := record.New()
	info.Set("source_port", record.Int(uint64(r.Uint16(be))))
	info.Set("destination_port", record.Int(uint64(r.Uint16(be))))
	info.Set("seq_num", record.Int(uint64(r.Uint32(be))))
	info.Set("ack_num", record.Int(uint64(r.Uint32(be))))
	packed := r.Uint16(be)
	headerLength := uint64(packed >> 12)
	info.Set("header_length", record.Int(headerLength))
	info.Set("flags", record.Int(uint64(packed&0x1ff)))
	info.Set("window_size", record.Int(uint64(r.Uint16(be))))
	info.Set("checksum", record.Hex(uint64(r.Uint16(be))))
	info.Set("urgent_pointer", record.Int(uint64(r.Uint16(be))))

	if headerLength > 5 {
		info.Set("options", readTCPOptions(r, int(headerLength-5)*4))
	}
	return info
}

func readTCPOptions(r *binio.Reader, size int) record.Value {
	var options []record.Value
	end := r.Tell() + size
	for r.Tell() < end && r.Err() == nil {
		code := r.Uint8()
		if code == tcpOptEnd {
			options = append(options, record.Str("end"))
			break
		}
		if code == tcpOptNop {
			options = append(options, record.Str("nop"))
			continue
		}

		optSize := r.Uint8()
		switch code {
		case tcpOptMSS:
			sub := record.New()
			sub.Set("max_segment_size", record.Int(uint64(r.Uint16(be))))
			options = append(options, record.Nested(sub))
			assertOptionSize(r, code, optSize, 4)
		case tcpOptWindowScale:
			sub := record.New()
			sub.Set("window_scale", record.Int(uint64(r.Uint8())))
			options = append(options, record.Nested(sub))
			assertOptionSize(r, code, optSize, 3)
		case tcpOptSackPermitted:
			options = append(options, record.Str("sack_permitted"))
			assertOptionSize(r, code, optSize, 2)
		case tcpOptTimestamps:
			sub := record.New()
			sub.Set("timestamps", record.Flow(
				record.Int(uint64(r.Uint32(be))),
				record.Int(uint64(r.Uint32(be)))))
			options = append(options, record.Nested(sub))
			assertOptionSize(r, code, optSize, 10)
		default:
			// Unknown options keep their two-octet code/size prefix so they
			// re-encode verbatim.
			raw := append([]byte{code, optSize}, r.Bytes(int(optSize)-2)...)
			options = append(options, record.Bytes(raw))
		}
	}
	return record.Block(options...)
}

func assertOptionSize(r *binio.Reader, code, got, want uint8) {
	if got != want {
		r.Fail(fmt.Errorf("TCP option %d has size %d, expected %d", code, got, want))
	}
}

// WriteTCP encodes a TCP header including its options.
func WriteTCP(w *binio.Writer, info *record.Record) {
	w.PutUint16(be, uint16(info.Uint("source_port")))
	w.PutUint16(be, uint16(info.Uint("destination_port")))
	w.PutUint32(be, uint32(info.Uint("seq_num")))
	w.PutUint32(be, uint32(info.Uint("ack_num")))
	w.PutUint16(be, uint16(info.Uint("header_length")<<12|info.Uint("flags")&0x1ff))
	w.PutUint16(be, uint16(info.Uint("window_size")))
	w.PutUint16(be, uint16(info.Uint("checksum")))
	w.PutUint16(be, uint16(info.Uint("urgent_pointer")))

	options, ok := info.Get("options")
	if !ok {
		return
	}
	for _, option := range options.List() {
		switch option.Kind() {
		case record.KindString:
			switch option.Str() {
			case "end":
				w.PutUint8(tcpOptEnd)
				return
			case "nop":
				w.PutUint8(tcpOptNop)
			case "sack_permitted":
				w.PutUint8(tcpOptSackPermitted)
				w.PutUint8(2)
			default:
				w.Fail(fmt.Errorf("unknown TCP option %q", option.Str()))
			}
		case record.KindBytes, record.KindList:
			w.PutBytes(option.ByteString())
		case record.KindRecord:
			writeNamedTCPOption(w, option.Record())
		default:
			w.Fail(fmt.Errorf("malformed TCP option entry"))
		}
	}
}

func writeNamedTCPOption(w *binio.Writer, sub *record.Record) {
	if sub.Len() == 0 {
		w.Fail(fmt.Errorf("empty TCP option entry"))
		return
	}
	field := sub.Fields()[0]
	switch field.Key {
	case "max_segment_size":
		w.PutUint8(tcpOptMSS)
		w.PutUint8(4)
		w.PutUint16(be, uint16(field.Value.Uint()))
	case "window_scale":
		w.PutUint8(tcpOptWindowScale)
		w.PutUint8(3)
		w.PutUint8(uint8(field.Value.Uint()))
	case "timestamps":
		w.PutUint8(tcpOptTimestamps)
		w.PutUint8(10)
		for _, ts := range field.Value.List() {
			w.PutUint32(be, uint32(ts.Uint()))
		}
	default:
		w.Fail(fmt.Errorf("unknown TCP option %q", field.Key))
	}
}
