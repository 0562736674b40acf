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
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Column names of the data block.
const (
	ColumnXValue   = "X_Value"
	ColumnCurrentA = "Current A"
	ColumnCurrentB = "Current B"
	ColumnVoltageA = "VoltageA"
)

var measurementColumns = []string{ColumnXValue, ColumnCurrentA, ColumnCurrentB, ColumnVoltageA}

// ParsePhase validates a phase name, ignoring case.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(strings.ToLower(s)); p {
	case PhaseAll, PhaseA, PhaseB:
		return p, nil
	}
	return "", newError(KindInvalidPhase, nil, "phase %q does not exist", s)
}

// LoadMeasurementFile reads a BLUED measurement file and returns its data
// block for the requested phase (see WithPhase) together with the file
// metadata.
func LoadMeasurementFile(path string, opts ...Option) (*Table, *FileInfo, error) {
	o := newOptions(opts)

	phase, err := ParsePhase(o.phase)
	if err != nil {
		return nil, nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading measurement file: %w", err)
	}

	return readMeasurement(string(b), path, phase, o)
}

// ReadMeasurement is LoadMeasurementFile for an already opened file. The
// Filepath and Filename of the returned FileInfo are empty.
func ReadMeasurement(r io.Reader, opts ...Option) (*Table, *FileInfo, error) {
	o := newOptions(opts)

	phase, err := ParsePhase(o.phase)
	if err != nil {
		return nil, nil, err
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading measurement data: %w", err)
	}

	return readMeasurement(string(b), "", phase, o)
}

func readMeasurement(text, path string, phase Phase, o *options) (*Table, *FileInfo, error) {
	hdr, sections, err := ParseHeader(text, o.location)
	if err != nil {
		return nil, nil, err
	}

	o.logger.Debug("Parsed measurement header",
		zap.String("path", path),
		zap.Time("reference_time", hdr.ReferenceTime),
		zap.Time("start_time", hdr.StartTime),
		zap.Int("samples", hdr.Samples),
		zap.Float64("delta_x", hdr.DeltaX))

	data := sections[len(sections)-1]
	start := strings.Index(data, ColumnXValue)
	if start < 0 {
		return nil, nil, newError(KindStructure, nil, "data block has no %s column", ColumnXValue)
	}

	samples, dropped, err := parseSamples(data[start:], hdr.ReferenceTime)
	if err != nil {
		return nil, nil, err
	}
	if dropped > 0 {
		o.logger.Debug("Dropped incomplete rows", zap.String("path", path), zap.Int("dropped", dropped))
	}
	if len(samples) == 0 {
		return nil, nil, newError(KindStructure, nil, "data block has no complete rows")
	}

	// The end is anchored on the reference time, the start on the channel header.
	fileEnd := samples[len(samples)-1].Time

	info := &FileInfo{
		Filepath:         path,
		Samples:          hdr.Samples,
		FileStart:        hdr.StartTime,
		FileDuration:     fileEnd.Sub(hdr.StartTime),
		FileEnd:          fileEnd,
		MeasurementSteps: hdr.DeltaX,
		ReferenceTime:    hdr.ReferenceTime,
	}
	if path != "" {
		info.Filename = filepath.Base(path)
	}

	return project(samples, phase), info, nil
}

// parseSamples reads the data block, dropping rows with a missing or
// unparseable value in any required column.
func parseSamples(payload string, ref time.Time) ([]Sample, int, error) {
	cr := csv.NewReader(strings.NewReader(payload))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, newError(KindParse, err, "error reading data block header")
	}
	cols, err := columnIndices(header, measurementColumns)
	if err != nil {
		return nil, 0, err
	}

	var samples []Sample
	dropped := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, newError(KindParse, err, "error reading data block")
		}

		var values [4]float64
		complete := true
		for i, col := range cols {
			v, ok := parseValue(record, col)
			if !ok {
				complete = false
				break
			}
			values[i] = v
		}
		if !complete {
			dropped++
			continue
		}

		offset, err := secondsToDuration(values[0])
		if err != nil {
			return nil, 0, err
		}

		samples = append(samples, Sample{
			Time:     ref.Add(offset),
			CurrentA: values[1],
			CurrentB: values[2],
			VoltageA: values[3],
		})
	}

	return samples, dropped, nil
}

func parseValue(record []string, col int) (float64, bool) {
	if col >= len(record) {
		return 0, false
	}
	s := strings.TrimSpace(record[col])
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// maxOffsetMicros is the largest X_Value, in microseconds, representable as a
// time.Duration.
const maxOffsetMicros = float64(math.MaxInt64 / int64(time.Microsecond))

// secondsToDuration converts an X_Value offset with microsecond resolution.
func secondsToDuration(seconds float64) (time.Duration, error) {
	micros := math.Round(seconds * 1e6)
	if math.Abs(micros) > maxOffsetMicros {
		return 0, newError(KindParse, nil, "%s %g is out of range", ColumnXValue, seconds)
	}
	return time.Duration(micros) * time.Microsecond, nil
}

// columnIndices returns the position of each named column in header.
func columnIndices(header, names []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	cols := make([]int, len(names))
	for i, name := range names {
		col, ok := index[name]
		if !ok {
			return nil, newError(KindSchema, nil, "missing column %q", name)
		}
		cols[i] = col
	}
	return cols, nil
}

// project derives the per-phase view. Phase B voltage is the negated shared
// voltage channel.
func project(samples []Sample, phase Phase) *Table {
	if phase == PhaseAll {
		return &Table{Phase: PhaseAll, Raw: samples}
	}

	out := make([]PhaseSample, len(samples))
	for i, s := range samples {
		out[i].Time = s.Time
		switch phase {
		case PhaseA:
			out[i].Current = s.CurrentA
			out[i].Voltage = s.VoltageA
		case PhaseB:
			out[i].Current = s.CurrentB
			out[i].Voltage = -s.VoltageA
		}
	}

	return &Table{Phase: phase, Samples: out}
}
