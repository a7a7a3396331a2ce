// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Package process applies semantic transformations to a stream of decoded
// capture records: MAC anonymization, timeline shifting, length and checksum
// fixup, and TCP sequence/acknowledgement rewriting. Processors are total
// record-to-record transforms: they never fail, they skip layers that are
// not present, and they leave every block other than the ones they are
// defined on untouched.
package process

import (
	"io"

	"github.com/siemens/pcaped/pcapng"
	"github.com/siemens/pcaped/record"
)

// Processor transforms a single record in place.
type Processor interface {
	// Name returns the processor's CLI-facing name.
	Name() string
	// Process mutates the given record as needed.
	Process(info *record.Record)
}

// Reader is the record source of a pipeline run; record.Reader implements
// it.
type Reader interface {
	Read() (*record.Record, error)
}

// Writer is the record sink of a pipeline run; record.Writer implements it.
type Writer interface {
	Write(info *record.Record) error
}

// Pipeline streams records from r to w, applying the given processors in
// order to each record. Only a single record is alive at any time.
func Pipeline(r Reader, w Writer, processors []Processor) error {
	for {
		info, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		for _, processor := range processors {
			processor.Process(info)
		}
		if err := w.Write(info); err != nil {
			return err
		}
	}
}

func isEnhancedPacket(info *record.Record) bool {
	return info.Uint("block_type") == pcapng.BlockTypeEnhancedPacket
}
