// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package pcaped

const (
	// DocumentExt is the filename extension of the textual rendition of a
	// capture, and the default output extension of pcap2yaml.
	DocumentExt = ".yaml"
	// CaptureExt is the filename extension of the binary pcapng rendition,
	// and the default output extension of yaml2pcap.
	CaptureExt = ".pcapng"
	// BackupInfix is inserted before the extension when an input file has
	// to make way for its own derived output file.
	BackupInfix = "_bkup"
)
