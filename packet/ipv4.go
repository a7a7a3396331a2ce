// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package packet

import (
	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/record"
)

// ReadIPv4 decodes an IPv4 header without options; header_length is kept as
// the 32 bit word count from the wire. Addresses are presented as decimal
// octet lists.
func ReadIPv4(r *binio.Reader) *record.Record {
	info := record.New()
	packed := r.Uint8()
	info.Set("version", record.Int(uint64(packed>>4)))
	info.Set("header_length", record.Int(uint64(packed&0x0f)))
	info.Set("dsf", record.Hex(uint64(r.Uint8())))
	info.Set("total_length", record.Int(uint64(r.Uint16(be))))
	info.Set("identification", record.Hex(uint64(r.Uint16(be))))
	flags := r.Uint16(be)
	info.Set("flags", record.Hex(uint64(flags>>13)))
	info.Set("fragment_offset", record.Int(uint64(flags&0x1fff)))
	info.Set("ttl", record.Int(uint64(r.Uint8())))
	info.Set("protocol", record.Int(uint64(r.Uint8())))
	info.Set("header_checksum", record.Hex(uint64(r.Uint16(be))))
	info.Set("source", addressList(r.Bytes(4)))
	info.Set("destination", addressList(r.Bytes(4)))
	return info
}

// WriteIPv4 encodes an IPv4 header.
func WriteIPv4(w *binio.Writer, info *record.Record) {
	w.PutUint8(uint8(info.Uint("version")<<4 | info.Uint("header_length")&0x0f))
	w.PutUint8(uint8(info.Uint("dsf")))
	w.PutUint16(be, uint16(info.Uint("total_length")))
	w.PutUint16(be, uint16(info.Uint("identification")))
	w.PutUint16(be, uint16(info.Uint("flags")<<13|info.Uint("fragment_offset")&0x1fff))
	w.PutUint8(uint8(info.Uint("ttl")))
	w.PutUint8(uint8(info.Uint("protocol")))
	w.PutUint16(be, uint16(info.Uint("header_checksum")))
	src, _ := info.Get("source")
	dst, _ := info.Get("destination")
	w.PutBytes(src.ByteString())
	w.PutBytes(dst.ByteString())
}

func addressList(b []byte) record.Value {
	els := make([]record.Value, len(b))
	for i, octet := range b {
		els[i] = record.Int(uint64(octet))
	}
	return record.Flow(els...)
}
