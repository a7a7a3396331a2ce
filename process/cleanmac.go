// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package process

import (
	"github.com/siemens/pcaped/record"
)

// CleanMac anonymizes captures by zeroing the source and destination MAC
// addresses of every dissected Ethernet header.
type CleanMac struct{}

// Name implements Processor.
func (CleanMac) Name() string { return "clean-mac" }

// Process implements Processor.
func (CleanMac) Process(info *record.Record) {
	if !isEnhancedPacket(info) {
		return
	}
	ethernet := info.Sub("ethernet_data")
	if ethernet == nil {
		return
	}
	ethernet.Set("destination", record.Bytes(make([]byte, 6)))
	ethernet.Set("source", record.Bytes(make([]byte, 6)))
}
