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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"
)

// Column names of a label file.
const (
	ColumnTimestamp = "Timestamp"
	ColumnLabel     = "Label"
	ColumnPhase     = "Phase"
)

var labelColumns = []string{ColumnTimestamp, ColumnLabel, ColumnPhase}

// LoadLabelFile reads the labels of a label file that fall within
// [fileStart, fileEnd]. Unless the phase option is "all", only rows whose
// Phase equals the upper-cased phase are kept. The phase is not validated: an
// unknown phase code gives an empty result.
func LoadLabelFile(path string, fileStart, fileEnd time.Time, opts ...Option) ([]Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening label file: %w", err)
	}
	defer f.Close()

	return ReadLabels(f, fileStart, fileEnd, opts...)
}

// ReadLabels is LoadLabelFile for an already opened file.
func ReadLabels(r io.Reader, fileStart, fileEnd time.Time, opts ...Option) ([]Label, error) {
	o := newOptions(opts)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, newError(KindSchema, nil, "label file has no header")
	}
	if err != nil {
		return nil, newError(KindParse, err, "error reading label file header")
	}
	cols, err := columnIndices(header, labelColumns)
	if err != nil {
		return nil, err
	}

	filterPhase := !strings.EqualFold(o.phase, string(PhaseAll))
	phaseCode := strings.ToUpper(o.phase)

	var labels []Label
	rows := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newError(KindParse, err, "error reading label file")
		}
		rows++

		l := Label{
			Label: field(record, cols[1]),
			Phase: field(record, cols[2]),
		}
		if filterPhase && l.Phase != phaseCode {
			continue
		}

		// A missing timestamp can never fall inside the window.
		ts := strings.TrimSpace(field(record, cols[0]))
		if ts == "" {
			continue
		}
		l.Timestamp, err = dateparse.ParseIn(ts, o.location)
		if err != nil {
			return nil, newError(KindParse, err, "error parsing label timestamp %q", ts)
		}

		if l.Timestamp.Before(fileStart) || l.Timestamp.After(fileEnd) {
			continue
		}
		labels = append(labels, l)
	}

	o.logger.Debug("Loaded labels",
		zap.String("phase", o.phase),
		zap.Int("rows", rows),
		zap.Int("kept", len(labels)),
		zap.Time("file_start", fileStart),
		zap.Time("file_end", fileEnd))

	return labels, nil
}

func field(record []string, col int) string {
	if col >= len(record) {
		return ""
	}
	return record[col]
}
