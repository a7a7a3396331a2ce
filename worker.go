// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package pcaped

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Worker bundles the input and output streams of a single translation or
// processing run. Either stream can be a file or the corresponding standard
// stream; standard streams are never closed, files are closed by Close.
type Worker struct {
	// In is the stream to read the capture or document from.
	In io.Reader
	// Out is the stream to write the result to.
	Out io.Writer

	closers []io.Closer
}

// NewWorker opens the input and output of a run. An empty name or "-"
// selects the standard stream. When only an input file is named, the output
// path derives from it by swapping the extension for targetExt; if the
// derived path collides with the input path, the input file is first
// renamed out of the way with a BackupInfix suffix and read from there.
func NewWorker(inputPath, outputPath, targetExt string) (w *Worker, err error) {
	if inputPath != "" && inputPath != "-" && outputPath == "" {
		stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outputPath = stem + targetExt
		if outputPath == inputPath {
			bkup := stem + BackupInfix + filepath.Ext(inputPath)
			if err := os.Rename(inputPath, bkup); err != nil {
				return nil, fmt.Errorf("cannot back up input file: %w", err)
			}
			inputPath = bkup
		}
	}

	w = &Worker{In: os.Stdin, Out: os.Stdout}
	opened := w
	defer func() {
		if err != nil {
			opened.Close()
		}
	}()
	if inputPath != "" && inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, err
		}
		w.In = f
		w.closers = append(w.closers, f)
	}
	if outputPath != "" && outputPath != "-" {
		f, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
		if err != nil {
			return nil, err
		}
		w.Out = f
		w.closers = append(w.closers, f)
	}
	return w, nil
}

// Close releases the file streams of this worker, if any, returning the
// first close error encountered.
func (w *Worker) Close() error {
	var err error
	for _, c := range w.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	w.closers = nil
	return err
}
