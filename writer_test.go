// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package blued_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/blued"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.Close()
	})

	ref := time.Date(2011, 10, 20, 11, 58, 32, 211666000, time.UTC)
	hdr := blued.Header{
		ReferenceTime: ref,
		StartTime:     ref.Add(time.Second),
		Samples:       256,
		DeltaX:        1.0 / 12000,
	}

	bw, err := blued.Create(f, hdr)
	require.NoError(t, err)

	// Write a ramp at the nominal sampling interval
	step := 83 * time.Microsecond
	for i := 0; i < 256; i++ {
		err := bw.WriteSample(blued.Sample{
			Time:     ref.Add(time.Duration(i) * step),
			CurrentA: float64(i),
			CurrentB: float64(i) / 2,
			VoltageA: 120 - float64(i),
		})
		require.NoError(t, err)
	}

	require.NoError(t, bw.Close())
	require.NoError(t, f.Close())

	// Read the file back
	table, info, err := blued.LoadMeasurementFile(path, blued.WithPhase("all"))
	require.NoError(t, err)

	require.Equal(t, 256, table.Len())
	for i, s := range table.Raw {
		require.Truef(t, ref.Add(time.Duration(i)*step).Equal(s.Time), "sample %d at %s", i, s.Time)
		require.InDelta(t, float64(i), s.CurrentA, 1e-9)
		require.InDelta(t, float64(i)/2, s.CurrentB, 1e-9)
		require.InDelta(t, 120-float64(i), s.VoltageA, 1e-9)
	}

	assert.Equal(t, 256, info.Samples)
	assert.InDelta(t, hdr.DeltaX, info.MeasurementSteps, 1e-12)
	assertTime(t, ref, info.ReferenceTime)
	assertTime(t, hdr.StartTime, info.FileStart)
	assertTime(t, ref.Add(255*step), info.FileEnd)
	assert.Equal(t, 255*step-time.Second, info.FileDuration)
}

func TestWriterRejectsSamplesBeforeReference(t *testing.T) {
	ref := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	bw, err := blued.Create(&buf, blued.Header{ReferenceTime: ref, StartTime: ref, Samples: 1, DeltaX: 1})
	require.NoError(t, err)

	require.Error(t, bw.WriteSample(blued.Sample{Time: ref.Add(-time.Second)}))
	require.NoError(t, bw.Close())

	// Writer should now refuse further samples
	require.Error(t, bw.WriteSample(blued.Sample{Time: ref}))
}
