// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Package pcapng frames and unframes the pcapng block stream: Section
// Header, Interface Description, Interface Statistics, and Enhanced Packet
// blocks are decoded into ordered records and encoded back, with any other
// block type passed through as an opaque payload. The Reader detects the
// per-section endianness from the section header's byte-order magic; both
// Reader and Writer track the per-section interface table so that Enhanced
// Packet timestamps can be converted using the announcing interface's
// timestamp resolution.
package pcapng

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/record"
)

// The four block types this codec understands structurally.
const (
	BlockTypeSectionHeader      = 0x0a0d0d0a
	BlockTypeInterfaceDesc      = 0x00000001
	BlockTypeInterfaceStatistic = 0x00000005
	BlockTypeEnhancedPacket     = 0x00000006
)

// Magic is the section header byte-order magic word; reading it under the
// wrong endianness yields its mirrored value instead.
const Magic = 0x1a2b3c4d

// sectionHeaderTag is the section header block type tag, which reads the
// same under both endiannesses by construction.
var sectionHeaderTag = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// magicBigEndian is the byte-order magic as it appears on the wire in a
// big-endian section.
var magicBigEndian = []byte{0x1a, 0x2b, 0x3c, 0x4d}

// Resolution is an interface's timestamp resolution of base^(-power)
// seconds. Keeping base and power instead of a float preserves microsecond
// ticks exactly across a decode/encode round trip for all decimal
// resolutions.
type Resolution struct {
	Base  int
	Power int
}

// Microseconds is the default pcapng timestamp resolution of 10^-6 seconds,
// and the fixed resolution of Interface Statistics timestamps.
var Microseconds = Resolution{Base: 10, Power: 6}

func pow10(n int) uint64 {
	p := uint64(1)
	for ; n > 0; n-- {
		p *= 10
	}
	return p
}

// Time converts a 64 bit tick count into civil time.
func (res Resolution) Time(ticks uint64) time.Time {
	if res.Base == 10 && res.Power <= 9 {
		div := pow10(res.Power)
		return time.Unix(int64(ticks/div), int64(ticks%div*pow10(9-res.Power))).UTC()
	}
	// Odd resolutions (power-of-two, or finer than nanoseconds) go through
	// float64 and lose precision below the microsecond.
	secs := float64(ticks) * math.Pow(float64(res.Base), -float64(res.Power))
	s, frac := math.Modf(secs)
	return time.Unix(int64(s), int64(frac*1e9)).UTC()
}

// Ticks converts civil time back into a 64 bit tick count.
func (res Resolution) Ticks(t time.Time) uint64 {
	t = t.UTC()
	if res.Base == 10 && res.Power <= 9 {
		return uint64(t.Unix())*pow10(res.Power) +
			uint64(t.Nanosecond())/pow10(9-res.Power)
	}
	secs := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return uint64(secs * math.Pow(float64(res.Base), float64(res.Power)))
}

// InterfaceParam is the per-interface state collected from an Interface
// Description Block and consulted by Enhanced Packet Blocks of the same
// section: the link type dispatches payload dissection, the timestamp
// resolution scales packet timestamps.
type InterfaceParam struct {
	LinkType uint16
	Tsresol  Resolution
}

// interfaceParamFromBlock derives the interface state from a decoded (or
// about to be encoded) Interface Description record.
func interfaceParamFromBlock(info *record.Record) InterfaceParam {
	param := InterfaceParam{
		LinkType: uint16(info.Uint("link_type")),
		Tsresol:  Microseconds,
	}
	if options := info.Sub("options"); options != nil {
		if tsresol := options.Sub("if_tsresol"); tsresol != nil {
			param.Tsresol = Resolution{
				Base:  int(tsresol.Uint("base")),
				Power: int(tsresol.Uint("power")),
			}
		}
	}
	return param
}

// optionDef ties a block-specific option code to its record key and its
// value codec. opt_comment (code 1) is universal and handled outside the
// tables; the end-of-options marker (code 0) is implicit and never appears
// in a record.
type optionDef struct {
	code   uint16
	name   string
	decode func(r *binio.Reader, order binary.ByteOrder, length int) record.Value
	encode func(w *binio.Writer, order binary.ByteOrder, v record.Value)
}

func byCode(table []optionDef, code uint16) *optionDef {
	for i := range table {
		if table[i].code == code {
			return &table[i]
		}
	}
	return nil
}

func byName(table []optionDef, name string) *optionDef {
	for i := range table {
		if table[i].name == name {
			return &table[i]
		}
	}
	return nil
}

func decodeUTF8(r *binio.Reader, _ binary.ByteOrder, length int) record.Value {
	return record.Str(string(r.Bytes(length)))
}

func encodeUTF8(w *binio.Writer, _ binary.ByteOrder, v record.Value) {
	w.PutBytes([]byte(v.Str()))
}

func decodeHexUint32(r *binio.Reader, order binary.ByteOrder, _ int) record.Value {
	return record.Hex(uint64(r.Uint32(order)))
}

func encodeUint32(w *binio.Writer, order binary.ByteOrder, v record.Value) {
	w.PutUint32(order, uint32(v.Uint()))
}

func decodeHexUint64(r *binio.Reader, order binary.ByteOrder, _ int) record.Value {
	return record.Hex(r.Uint64(order))
}

func decodeUint64(r *binio.Reader, order binary.ByteOrder, _ int) record.Value {
	return record.Int(r.Uint64(order))
}

func encodeUint64(w *binio.Writer, order binary.ByteOrder, v record.Value) {
	w.PutUint64(order, v.Uint())
}

func decodeBytes(r *binio.Reader, _ binary.ByteOrder, length int) record.Value {
	return record.Bytes(r.Bytes(length))
}

func encodeBytes(w *binio.Writer, _ binary.ByteOrder, v record.Value) {
	w.PutBytes(v.ByteString())
}

// if_tsresol: the top bit selects base 2 over base 10, the low 7 bits are
// the (negated) power.
func decodeTsresol(r *binio.Reader, _ binary.ByteOrder, _ int) record.Value {
	packed := r.Uint8()
	info := record.New()
	if packed&0x80 != 0 {
		info.Set("base", record.Int(2))
	} else {
		info.Set("base", record.Int(10))
	}
	info.Set("power", record.Int(uint64(packed&0x7f)))
	return record.Nested(info)
}

func encodeTsresol(w *binio.Writer, _ binary.ByteOrder, v record.Value) {
	info := v.Record()
	var packed uint8
	if info != nil && info.Uint("base") == 2 {
		packed = 0x80
	}
	if info != nil {
		packed |= uint8(info.Uint("power") & 0x7f)
	}
	w.PutUint8(packed)
}

// Interface Statistics timestamps are fixed at microsecond resolution,
// regardless of any interface's tsresol.
func decodeTimestamp(r *binio.Reader, order binary.ByteOrder, _ int) record.Value {
	ticks := uint64(r.Uint32(order))<<32 | uint64(r.Uint32(order))
	return record.Time(Microseconds.Time(ticks))
}

func encodeTimestamp(w *binio.Writer, order binary.ByteOrder, v record.Value) {
	ticks := Microseconds.Ticks(v.Time())
	w.PutUint32(order, uint32(ticks>>32))
	w.PutUint32(order, uint32(ticks))
}

var sectionHeaderOptions = []optionDef{
	{2, "shb_hardware", decodeUTF8, encodeUTF8},
	{3, "shb_os", decodeUTF8, encodeUTF8},
	{4, "shb_userappl", decodeUTF8, encodeUTF8},
}

var interfaceDescOptions = []optionDef{
	{2, "if_name", decodeUTF8, encodeUTF8},
	{3, "if_description", decodeUTF8, encodeUTF8},
	{9, "if_tsresol", decodeTsresol, encodeTsresol},
	{11, "if_filter", decodeUTF8, encodeUTF8},
	{12, "if_os", decodeUTF8, encodeUTF8},
}

var enhancedPacketOptions = []optionDef{
	{2, "ebp_flags", decodeHexUint32, encodeUint32},
	{3, "ebp_hash", decodeBytes, encodeBytes},
	{4, "epb_dropcount", decodeHexUint64, encodeUint64},
}

var interfaceStatisticOptions = []optionDef{
	{2, "isb_starttime", decodeTimestamp, encodeTimestamp},
	{3, "isb_endtime", decodeTimestamp, encodeTimestamp},
	{4, "isb_ifrecv", decodeUint64, encodeUint64},
	{5, "isb_ifdrop", decodeUint64, encodeUint64},
}
