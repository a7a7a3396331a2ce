// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package binio

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("binio", func() {

	It("aligns values up", func() {
		Expect(AlignUp(0, 4)).Should(Equal(0))
		Expect(AlignUp(1, 4)).Should(Equal(4))
		Expect(AlignUp(4, 4)).Should(Equal(4))
		Expect(AlignUp(5, 4)).Should(Equal(8))
		Expect(AlignUp(7, 2)).Should(Equal(8))
	})

	It("reads integers in both byte orders", func() {
		r := NewReader([]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc})
		Expect(r.Uint16(binary.BigEndian)).Should(Equal(uint16(0x1234)))
		Expect(r.Uint16(binary.LittleEndian)).Should(Equal(uint16(0x7856)))
		Expect(r.Uint8()).Should(Equal(uint8(0x9a)))
		Expect(r.Tell()).Should(Equal(5))
		Expect(r.Remaining()).Should(Equal(1))
		Expect(r.Err()).ShouldNot(HaveOccurred())
	})

	It("latches reads running past the end", func() {
		r := NewReader([]byte{0x00, 0x01})
		Expect(r.Uint32(binary.BigEndian)).Should(BeZero())
		Expect(r.Err()).Should(HaveOccurred())
		// ...and stays latched for all following reads.
		Expect(r.Uint8()).Should(BeZero())
		Expect(r.Err()).Should(HaveOccurred())
	})

	It("skips alignment padding after reading", func() {
		r := NewReader([]byte{0xaa, 0x00, 0x00, 0x00, 0xbb})
		var b uint8
		r.Aligned(4, func() { b = r.Uint8() })
		Expect(b).Should(Equal(uint8(0xaa)))
		Expect(r.Tell()).Should(Equal(4))
		Expect(r.Uint8()).Should(Equal(uint8(0xbb)))
		Expect(r.Err()).ShouldNot(HaveOccurred())
	})

	It("writes integers in both byte orders", func() {
		w := NewWriter()
		w.PutUint16(binary.BigEndian, 0x1234)
		w.PutUint16(binary.LittleEndian, 0x5678)
		w.PutUint8(0x9a)
		Expect(w.Tell()).Should(Equal(5))
		Expect(w.Bytes()).Should(Equal([]byte{0x12, 0x34, 0x78, 0x56, 0x9a}))
		Expect(w.Err()).ShouldNot(HaveOccurred())
	})

	It("zero-pads aligned writes", func() {
		w := NewWriter()
		w.Aligned(4, func() { w.PutBytes([]byte{1, 2, 3, 4, 5}) })
		Expect(w.Bytes()).Should(Equal([]byte{1, 2, 3, 4, 5, 0, 0, 0}))
		w.Aligned(4, func() { w.PutBytes([]byte{6, 7, 8, 9}) })
		Expect(w.Tell()).Should(Equal(12))
	})

})

var _ = Describe("CarryAddChecksum", func() {

	It("checksums an even number of octets", func() {
		Expect(CarryAddChecksum([]byte{0x00, 0x01, 0xf2, 0x03})).
			Should(Equal(uint16(0x0dfb)))
	})

	It("treats a lone trailing octet as the high half of a group", func() {
		Expect(CarryAddChecksum([]byte{0x01})).Should(Equal(uint16(0xfeff)))
		Expect(CarryAddChecksum([]byte{0x00, 0x01, 0x02})).
			Should(Equal(uint16(0xfdfe)))
	})

	It("computes the textbook IPv4 header checksum", func() {
		header := []byte{
			0x45, 0x00, 0x00, 0x3c, 0x1c, 0x46, 0x40, 0x00,
			0x40, 0x06, 0x00, 0x00, 0xac, 0x10, 0x0a, 0x63,
			0xac, 0x10, 0x0a, 0x0c,
		}
		Expect(CarryAddChecksum(header)).Should(Equal(uint16(0xb1e6)))
		// With the checksum patched in, the header sums to zero.
		header[10], header[11] = 0xb1, 0xe6
		Expect(CarryAddChecksum(header)).Should(BeZero())
	})

	It("checksums empty input to all-ones complement", func() {
		Expect(CarryAddChecksum(nil)).Should(Equal(uint16(0xffff)))
	})

})
