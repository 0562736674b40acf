// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package blued

import "time"

// Phase selects which electrical phase of a measurement file is returned.
type Phase string

const (
	// PhaseAll keeps the raw Current A, Current B and VoltageA channels.
	PhaseAll Phase = "all"
	// PhaseA maps Current A and VoltageA to Current and Voltage.
	PhaseA Phase = "a"
	// PhaseB maps Current B and the negated VoltageA to Current and Voltage.
	PhaseB Phase = "b"
)

// DefaultPhase is used when no phase option is given.
const DefaultPhase = PhaseB

// Header holds the timing metadata embedded in the two header sections of a
// BLUED measurement file.
type Header struct {
	ReferenceTime time.Time // Anchor for all X_Value offsets (file header)
	StartTime     time.Time // Date/Time of the channel header
	Samples       int       // Declared number of samples per channel
	DeltaX        float64   // Nominal sampling interval in seconds
}

// Sample is one row of the data block with its offset resolved to an
// absolute timestamp.
type Sample struct {
	Time     time.Time
	CurrentA float64
	CurrentB float64
	VoltageA float64
}

// PhaseSample is one row of a single-phase view.
type PhaseSample struct {
	Time    time.Time
	Current float64
	Voltage float64
}

// Table is the parsed data block of a measurement file. Raw is populated for
// PhaseAll, Samples for PhaseA and PhaseB. Rows keep the order of the file.
type Table struct {
	Phase   Phase
	Raw     []Sample
	Samples []PhaseSample
}

// Len returns the number of rows in the table.
func (t *Table) Len() int {
	if t.Phase == PhaseAll {
		return len(t.Raw)
	}
	return len(t.Samples)
}

// Times returns the timestamp index of the table.
func (t *Table) Times() []time.Time {
	times := make([]time.Time, 0, t.Len())
	if t.Phase == PhaseAll {
		for _, s := range t.Raw {
			times = append(times, s.Time)
		}
		return times
	}
	for _, s := range t.Samples {
		times = append(times, s.Time)
	}
	return times
}

// FileInfo describes a loaded measurement file.
type FileInfo struct {
	Filepath         string        `yaml:"filepath"`
	Filename         string        `yaml:"filename"`
	Samples          int           `yaml:"samples"`           // Samples field of the channel header
	FileStart        time.Time     `yaml:"file_start"`        // Date/Time of the channel header
	FileDuration     time.Duration `yaml:"file_duration"`     // FileEnd - FileStart
	FileEnd          time.Time     `yaml:"file_end"`          // ReferenceTime + last X_Value
	MeasurementSteps float64       `yaml:"measurement_steps"` // Delta_X in seconds
	ReferenceTime    time.Time     `yaml:"reference_time"`
}

// Label is one annotated event from a label file.
type Label struct {
	Timestamp time.Time
	Label     string
	Phase     string
}
