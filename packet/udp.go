// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package packet

import (
	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/record"
)

// ReadUDP decodes a UDP header.
func ReadUDP(r *binio.Reader) *record.Record {
	info := record.New()
	info.Set("source_port", record.Int(uint64(r.Uint16(be))))
	info.Set("destination_port", record.Int(uint64(r.Uint16(be))))
	info.Set("length", record.Int(uint64(r.Uint16(be))))
	info.Set("checksum", record.Hex(uint64(r.Uint16(be))))
	return info
}

// WriteUDP encodes a UDP header.
func WriteUDP(w *binio.Writer, info *record.Record) {
	w.PutUint16(be, uint16(info.Uint("source_port")))
	w.PutUint16(be, uint16(info.Uint("destination_port")))
	w.PutUint16(be, uint16(info.Uint("length")))
	w.PutUint16(be, uint16(info.Uint("checksum")))
}
