// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package pcaped

import (
	"io"

	"github.com/siemens/pcaped/pcapng"
	"github.com/siemens/pcaped/process"
	"github.com/siemens/pcaped/record"
)

// Pcap2Yaml translates a binary pcapng stream into its textual rendition,
// one blank-line separated YAML record per block.
func Pcap2Yaml(in io.Reader, out io.Writer) error {
	r := pcapng.NewReader(in)
	w := record.NewWriter(out)
	for {
		info, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.Write(info); err != nil {
			return err
		}
	}
}

// Yaml2Pcap translates the textual rendition of a capture back into the
// binary pcapng stream.
func Yaml2Pcap(in io.Reader, out io.Writer) error {
	r := record.NewReader(in)
	w := pcapng.NewWriter(out)
	for {
		info, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.Write(info); err != nil {
			return err
		}
	}
}

// ProcessYaml streams the textual rendition through the given processors,
// in order, writing the transformed records back out as text.
func ProcessYaml(in io.Reader, out io.Writer, processors []process.Processor) error {
	return process.Pipeline(record.NewReader(in), record.NewWriter(out), processors)
}
