// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package blued

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	writerDateLayout = "2006/01/02"
	writerTimeLayout = "15:04:05.000000"

	// Number of channels in the data block (Current A, Current B, VoltageA).
	channelCount = 3
)

// Writer writes BLUED measurement files.
type Writer struct {
	w      *bufio.Writer
	hdr    Header
	closed bool
}

// Create writes the file and channel headers for hdr and returns a writer for
// the data block. hdr.Samples is written as given.
func Create(w io.Writer, hdr Header) (*Writer, error) {
	bw := &Writer{w: bufio.NewWriter(w), hdr: hdr}

	if err := bw.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return bw, nil
}

// WriteSample writes a single row of the data block. The X_Value of the row
// is the offset of s.Time from the reference time.
func (bw *Writer) WriteSample(s Sample) error {
	if bw.closed {
		return errors.New("writer is closed")
	}

	offset := s.Time.Sub(bw.hdr.ReferenceTime)
	if offset < 0 {
		return fmt.Errorf("sample at %s is before the reference time", s.Time.Format(writerTimeLayout))
	}

	row := []string{
		strconv.FormatFloat(offset.Seconds(), 'f', 6, 64),
		strconv.FormatFloat(s.CurrentA, 'f', -1, 64),
		strconv.FormatFloat(s.CurrentB, 'f', -1, 64),
		strconv.FormatFloat(s.VoltageA, 'f', -1, 64),
	}
	_, err := bw.w.WriteString(strings.Join(row, ",") + "\n")
	return err
}

// Close flushes the data block to the underlying writer.
func (bw *Writer) Close() error {
	if bw.closed {
		return nil
	}
	bw.closed = true

	if err := bw.w.Flush(); err != nil {
		return fmt.Errorf("error flushing data block: %w", err)
	}

	return nil
}

// writeHeader writes the file header and the channel header.
func (bw *Writer) writeHeader() error {
	ref := bw.hdr.ReferenceTime
	start := bw.hdr.StartTime

	// File header
	lines := []string{
		"LabVIEW Measurement,",
		"Writer_Version,2",
		"Reader_Version,2",
		"Separator,Comma",
		"Decimal_Separator,.",
		"Multi_Headings,No",
		"X_Columns,One",
		"Time_Pref,Absolute",
		"Date," + ref.Format(writerDateLayout),
		"Time," + ref.Format(writerTimeLayout),
		EndOfHeader + ",",
		"",
	}
	for _, line := range lines {
		if _, err := bw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	// Channel header
	fields := []struct {
		key   string
		value string
	}{
		{"Channels", strconv.Itoa(channelCount)},
		{"Samples", strconv.Itoa(bw.hdr.Samples)},
		{"Date", start.Format(writerDateLayout)},
		{"Time", start.Format(writerTimeLayout)},
		{"X_Dimension", "Time"},
		{"X0", "0.0000000000000000E+0"},
		{"Delta_X", strconv.FormatFloat(bw.hdr.DeltaX, 'f', -1, 64)},
	}
	for _, f := range fields {
		if _, err := bw.w.WriteString(f.key + strings.Repeat(","+f.value, channelCount) + ",\n"); err != nil {
			return err
		}
	}

	if _, err := bw.w.WriteString(EndOfHeader + ",\n"); err != nil {
		return err
	}

	_, err := bw.w.WriteString(strings.Join(measurementColumns, ",") + ",Comment\n")
	return err
}
