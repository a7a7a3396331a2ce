// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package pcapng

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/siemens/pcaped/binio"
	"github.com/siemens/pcaped/packet"
	"github.com/siemens/pcaped/record"
)

// Reader decodes a pcapng block stream into one record per block. It starts
// out assuming big-endian values; the first (and any later) Section Header
// Block then switches the endianness to whatever its byte-order magic
// announces for the rest of that section.
type Reader struct {
	r          *bufio.Reader
	order      binary.ByteOrder
	interfaces []InterfaceParam
}

// NewReader returns a Reader decoding the given pcapng stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:     bufio.NewReader(r),
		order: binary.BigEndian,
	}
}

// Read returns the record for the next block in the stream, or io.EOF after
// the final block.
func (pr *Reader) Read() (*record.Record, error) {
	tag := make([]byte, 4)
	if _, err := io.ReadFull(pr.r, tag); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("truncated block type tag: %w", err)
		}
		return nil, err // io.EOF: clean end of stream
	}
	if bytes.Equal(tag, sectionHeaderTag) {
		return pr.readSectionHeader()
	}

	var lenRaw [4]byte
	if _, err := io.ReadFull(pr.r, lenRaw[:]); err != nil {
		return nil, fmt.Errorf("truncated block length: %w", err)
	}
	totalLength := pr.order.Uint32(lenRaw[:])
	if totalLength < 12 || totalLength%4 != 0 {
		return nil, fmt.Errorf("implausible block length %d", totalLength)
	}
	body, err := pr.readTail(int(totalLength) - 8, totalLength)
	if err != nil {
		return nil, err
	}

	blockType := pr.order.Uint32(tag)
	info := record.New()
	info.Set("block_type", record.Hex(uint64(blockType)))
	r := binio.NewReader(body)
	switch blockType {
	case BlockTypeInterfaceDesc:
		pr.parseInterfaceDesc(info, r)
	case BlockTypeInterfaceStatistic:
		pr.parseInterfaceStatistic(info, r)
	case BlockTypeEnhancedPacket:
		pr.parseEnhancedPacket(info, r)
	default:
		info.Set("unknown_payload", record.Bytes(r.Bytes(r.Len())))
		log.Warnf("Unknown block_type 0x%x", blockType)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("block type 0x%x: %w", blockType, err)
	}
	return info, nil
}

// readTail reads the remaining n octets of a block and checks that the
// trailing length word repeats the leading one; it returns the block body
// without that trailing word.
func (pr *Reader) readTail(n int, totalLength uint32) ([]byte, error) {
	if n < 4 {
		return nil, fmt.Errorf("implausible block length %d", totalLength)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(pr.r, buf); err != nil {
		return nil, fmt.Errorf("truncated block of length %d: %w", totalLength, err)
	}
	if trailing := pr.order.Uint32(buf[n-4:]); trailing != totalLength {
		return nil, fmt.Errorf("trailing block length %d differs from leading %d",
			trailing, totalLength)
	}
	return buf[:n-4], nil
}

// readSectionHeader bootstraps the section endianness: the block type tag
// reads the same both ways, so the byte-order magic located after the
// length word decides how that length word (and everything else in the
// section) has to be interpreted. A new section also starts a fresh
// interface table.
func (pr *Reader) readSectionHeader() (*record.Record, error) {
	var head [8]byte // leading length word and byte-order magic
	if _, err := io.ReadFull(pr.r, head[:]); err != nil {
		return nil, fmt.Errorf("truncated section header block: %w", err)
	}
	if bytes.Equal(head[4:8], magicBigEndian) {
		pr.order = binary.BigEndian
	} else {
		pr.order = binary.LittleEndian
	}
	totalLength := pr.order.Uint32(head[0:4])
	if totalLength < 28 || totalLength%4 != 0 {
		return nil, fmt.Errorf("implausible section header block length %d", totalLength)
	}
	body, err := pr.readTail(int(totalLength)-12, totalLength)
	if err != nil {
		return nil, err
	}
	pr.interfaces = nil

	info := record.New()
	info.Set("block_type", record.Hex(BlockTypeSectionHeader))
	// The magic is recorded as its big-endian reading, so that a
	// little-endian section shows up as the mirrored word and the writer can
	// restore the section endianness from it.
	info.Set("magic", record.Hex(uint64(binary.BigEndian.Uint32(head[4:8]))))
	r := binio.NewReader(body)
	info.Set("major_version", record.Int(uint64(r.Uint16(pr.order))))
	info.Set("minor_version", record.Int(uint64(r.Uint16(pr.order))))
	info.Set("section_length", record.Hex(r.Uint64(pr.order)))
	if r.Remaining() > 0 {
		info.Set("options", pr.parseOptions(r, sectionHeaderOptions))
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("section header block: %w", err)
	}
	return info, nil
}

func (pr *Reader) parseInterfaceDesc(info *record.Record, r *binio.Reader) {
	info.Set("link_type", record.Int(uint64(r.Uint16(pr.order))))
	r.Skip(2) // reserved
	info.Set("snapshot_length", record.Int(uint64(r.Uint32(pr.order))))
	if r.Remaining() > 0 {
		info.Set("options", pr.parseOptions(r, interfaceDescOptions))
	}
	pr.interfaces = append(pr.interfaces, interfaceParamFromBlock(info))
}

func (pr *Reader) parseInterfaceStatistic(info *record.Record, r *binio.Reader) {
	info.Set("interface_id", record.Int(uint64(r.Uint32(pr.order))))
	info.Set("datetime", decodeTimestamp(r, pr.order, 8))
	if r.Remaining() > 0 {
		info.Set("options", pr.parseOptions(r, interfaceStatisticOptions))
	}
}

func (pr *Reader) parseEnhancedPacket(info *record.Record, r *binio.Reader) {
	interfaceID := r.Uint32(pr.order)
	info.Set("interface_id", record.Int(uint64(interfaceID)))
	if int(interfaceID) >= len(pr.interfaces) {
		r.Fail(fmt.Errorf("enhanced packet block references undescribed interface %d",
			interfaceID))
		return
	}
	param := pr.interfaces[interfaceID]
	ticks := uint64(r.Uint32(pr.order))<<32 | uint64(r.Uint32(pr.order))
	info.Set("datetime", record.Time(param.Tsresol.Time(ticks)))
	capturedLength := int(r.Uint32(pr.order))
	info.Set("captured_length", record.Int(uint64(capturedLength)))
	info.Set("packet_length", record.Int(uint64(r.Uint32(pr.order))))

	payloadEnd := r.Tell() + capturedLength
	if param.LinkType == packet.LinkTypeEthernet {
		r.Aligned(4, func() { pr.parseEthernet(info, r, payloadEnd) })
	} else {
		r.Aligned(4, func() {
			info.Set("unknown_payload", record.Bytes(r.Bytes(capturedLength)))
		})
		log.Warnf("Unknown link_type %d", param.LinkType)
	}

	if r.Err() == nil && r.Remaining() > 0 {
		info.Set("options", pr.parseOptions(r, enhancedPacketOptions))
	}
}

// parseEthernet dissects the captured octets as deep as this codec
// understands them; whatever is left over below the deepest decoded header
// is preserved as opaque payload.
func (pr *Reader) parseEthernet(info *record.Record, r *binio.Reader, end int) {
	ethernet := packet.ReadEthernet(r)
	info.Set("ethernet_data", record.Nested(ethernet))
	if ethernet.Uint("type") != packet.TypeIPv4 {
		parseUnknownPayload(info, r, end)
		return
	}
	ipv4 := packet.ReadIPv4(r)
	info.Set("ipv4_data", record.Nested(ipv4))
	switch ipv4.Uint("protocol") {
	case packet.ProtocolTCP:
		info.Set("tcp_data", record.Nested(packet.ReadTCP(r)))
	case packet.ProtocolUDP:
		info.Set("udp_data", record.Nested(packet.ReadUDP(r)))
	}
	parseUnknownPayload(info, r, end)
}

func parseUnknownPayload(info *record.Record, r *binio.Reader, end int) {
	if length := end - r.Tell(); length > 0 && r.Err() == nil {
		info.Set("unknown_payload", record.Bytes(r.Bytes(length)))
	}
}

// parseOptions walks the options TLV list up to the end-of-options marker.
// Unknown option codes are skipped over (including their padding) with a
// diagnostic, so that processing continues.
func (pr *Reader) parseOptions(r *binio.Reader, table []optionDef) record.Value {
	options := record.New()
	for r.Err() == nil {
		code := r.Uint16(pr.order)
		length := int(r.Uint16(pr.order))
		if code == 0 {
			break
		}
		if code == 1 {
			r.Aligned(4, func() {
				options.Set("opt_comment", decodeUTF8(r, pr.order, length))
			})
			continue
		}
		def := byCode(table, code)
		if def == nil {
			r.Skip(binio.AlignUp(length, 4))
			log.Warnf("Unknown option_code %d", code)
			continue
		}
		r.Aligned(4, func() {
			options.Set(def.name, def.decode(r, pr.order, length))
		})
	}
	return record.Nested(options)
}
