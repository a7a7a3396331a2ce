// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package record

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reader reads a blank-line separated stream of YAML records. Each chunk of
// consecutive non-blank lines forms one record.
type Reader struct {
	r   *bufio.Reader
	eof bool
}

// NewReader returns a Reader for the given document stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next record from the stream, or io.EOF after the last
// one.
func (r *Reader) Read() (*Record, error) {
	for {
		if r.eof {
			return nil, io.EOF
		}
		var chunk []string
		for {
			line, err := r.r.ReadString('\n')
			if err == io.EOF {
				r.eof = true
			} else if err != nil {
				return nil, err
			}
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				chunk = append(chunk, line)
				if !r.eof {
					continue
				}
			}
			break
		}
		if len(chunk) == 0 {
			continue // consecutive blank lines between records
		}
		rec := New()
		if err := yaml.Unmarshal([]byte(strings.Join(chunk, "\n")), rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
}

// Writer writes records as a blank-line separated stream of YAML documents.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer emitting to the given stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write renders one record, followed by the blank separator line.
func (w *Writer) Write(rec *Record) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.w.Write(buf.Bytes())
	return err
}
