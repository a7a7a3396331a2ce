// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package pcapng

import (
	"encoding/binary"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/packet"
	"github.com/siemens/pcaped/record"
)

// Writer encodes block records back into a pcapng stream. Every block is
// assembled in memory first, so that the total block length can be written
// around the finished body; this keeps the output stream append-only and
// thus works with pipes and stdout just as well as with files.
type Writer struct {
	w          io.Writer
	order      binary.ByteOrder
	interfaces []InterfaceParam
}

// NewWriter returns a Writer encoding onto the given stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:     w,
		order: binary.BigEndian,
	}
}

// Write encodes a single block record. A section header record switches the
// writer to the endianness recorded in its magic field before any of the
// section's values are encoded.
func (pw *Writer) Write(info *record.Record) error {
	blockType := info.Uint("block_type")
	if blockType == BlockTypeSectionHeader {
		if uint32(info.Uint("magic")) == Magic {
			pw.order = binary.BigEndian
		} else {
			pw.order = binary.LittleEndian
		}
		pw.interfaces = nil
	}

	body := binio.NewWriter()
	switch blockType {
	case BlockTypeSectionHeader:
		pw.packSectionHeader(body, info)
	case BlockTypeInterfaceDesc:
		pw.packInterfaceDesc(body, info)
	case BlockTypeInterfaceStatistic:
		pw.packInterfaceStatistic(body, info)
	case BlockTypeEnhancedPacket:
		pw.packEnhancedPacket(body, info)
	default:
		packUnknownPayload(body, info)
	}
	if err := body.Err(); err != nil {
		return fmt.Errorf("block type 0x%x: %w", blockType, err)
	}

	frame := binio.NewWriter()
	totalLength := uint32(body.Tell() + 12)
	frame.PutUint32(pw.order, uint32(blockType))
	frame.PutUint32(pw.order, totalLength)
	frame.PutBytes(body.Bytes())
	frame.PutUint32(pw.order, totalLength)
	_, err := pw.w.Write(frame.Bytes())
	return err
}

func (pw *Writer) packSectionHeader(w *binio.Writer, info *record.Record) {
	w.PutUint32(pw.order, Magic)
	w.PutUint16(pw.order, uint16(info.Uint("major_version")))
	w.PutUint16(pw.order, uint16(info.Uint("minor_version")))
	w.PutUint64(pw.order, info.Uint("section_length"))
	pw.packOptions(w, info, sectionHeaderOptions)
}

func (pw *Writer) packInterfaceDesc(w *binio.Writer, info *record.Record) {
	pw.interfaces = append(pw.interfaces, interfaceParamFromBlock(info))
	w.PutUint16(pw.order, uint16(info.Uint("link_type")))
	w.PutUint16(pw.order, 0) // reserved
	w.PutUint32(pw.order, uint32(info.Uint("snapshot_length")))
	pw.packOptions(w, info, interfaceDescOptions)
}

func (pw *Writer) packInterfaceStatistic(w *binio.Writer, info *record.Record) {
	w.PutUint32(pw.order, uint32(info.Uint("interface_id")))
	encodeTimestamp(w, pw.order, mustGet(info, "datetime"))
	pw.packOptions(w, info, interfaceStatisticOptions)
}

func (pw *Writer) packEnhancedPacket(w *binio.Writer, info *record.Record) {
	interfaceID := info.Uint("interface_id")
	if int(interfaceID) >= len(pw.interfaces) {
		w.Fail(fmt.Errorf("enhanced packet block references undescribed interface %d",
			interfaceID))
		return
	}
	param := pw.interfaces[interfaceID]
	w.PutUint32(pw.order, uint32(interfaceID))
	ticks := param.Tsresol.Ticks(info.Time("datetime"))
	w.PutUint32(pw.order, uint32(ticks>>32))
	w.PutUint32(pw.order, uint32(ticks))
	w.PutUint32(pw.order, uint32(info.Uint("captured_length")))
	w.PutUint32(pw.order, uint32(info.Uint("packet_length")))

	if info.Has("ethernet_data") {
		w.Aligned(4, func() { packEthernet(w, info) })
	} else {
		packUnknownPayload(w, info)
	}
	pw.packOptions(w, info, enhancedPacketOptions)
}

// packEthernet re-packs the dissected header chain followed by whatever
// opaque payload is left below the deepest header.
func packEthernet(w *binio.Writer, info *record.Record) {
	packet.WriteEthernet(w, info.Sub("ethernet_data"))
	ipv4 := info.Sub("ipv4_data")
	if ipv4 == nil {
		packRemainder(w, info)
		return
	}
	packet.WriteIPv4(w, ipv4)
	if tcp := info.Sub("tcp_data"); tcp != nil {
		packet.WriteTCP(w, tcp)
	} else if udp := info.Sub("udp_data"); udp != nil {
		packet.WriteUDP(w, udp)
	}
	packRemainder(w, info)
}

func packRemainder(w *binio.Writer, info *record.Record) {
	if payload, ok := info.Get("unknown_payload"); ok {
		w.PutBytes(payload.ByteString())
	}
}

func packUnknownPayload(w *binio.Writer, info *record.Record) {
	w.Aligned(4, func() { packRemainder(w, info) })
}

// packOptions emits the record's options in their recorded order, ending
// with the end-of-options marker. Option values are sized by encoding them
// into a scratch buffer first; the recorded length is the unpadded value
// size, the emitted value is zero-padded to the 32 bit boundary. Options
// not in the block's table are dropped with a diagnostic.
func (pw *Writer) packOptions(w *binio.Writer, info *record.Record, table []optionDef) {
	options := info.Sub("options")
	if options == nil {
		return
	}
	for _, f := range options.Fields() {
		var code uint16
		value := binio.NewWriter()
		if f.Key == "opt_comment" {
			code = 1
			encodeUTF8(value, pw.order, f.Value)
		} else if def := byName(table, f.Key); def != nil {
			code = def.code
			def.encode(value, pw.order, f.Value)
		} else {
			log.Warnf("Unknown option %s", f.Key)
			continue
		}
		if err := value.Err(); err != nil {
			w.Fail(err)
			return
		}
		w.PutUint16(pw.order, code)
		w.PutUint16(pw.order, uint16(value.Tell()))
		w.Aligned(4, func() { w.PutBytes(value.Bytes()) })
	}
	w.PutUint32(pw.order, 0)
}

func mustGet(info *record.Record, key string) record.Value {
	v, _ := info.Get(key)
	return v
}
