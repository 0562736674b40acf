// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const (
	measurementFixture = "../../testdata/measurement.txt"
	labelsFixture      = "../../testdata/labels.csv"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := loadConfig()
		require.NoError(t, err)

		assert.Equal(t, "b", cfg.Phase)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "text", cfg.Output)
		assert.Equal(t, "UTC", cfg.Location)
	})

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("BLUED_PHASE", "ALL")
		t.Setenv("BLUED_OUTPUT", "YAML")
		t.Setenv("BLUED_LOG_LEVEL", "debug")

		cfg, err := loadConfig()
		require.NoError(t, err)

		assert.Equal(t, "all", cfg.Phase)
		assert.Equal(t, "yaml", cfg.Output)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("InvalidPhase", func(t *testing.T) {
		t.Setenv("BLUED_PHASE", "c")

		_, err := loadConfig()
		require.Error(t, err)
	})

	t.Run("InvalidOutput", func(t *testing.T) {
		t.Setenv("BLUED_OUTPUT", "json")

		_, err := loadConfig()
		require.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
}

func TestRunText(t *testing.T) {
	cfg := &Config{Phase: "b", LogLevel: "info", Output: "text", Location: "UTC"}

	var buf bytes.Buffer
	require.NoError(t, run(&buf, cfg, zap.NewNop(), measurementFixture, labelsFixture))

	out := buf.String()
	assert.Contains(t, out, "file:      measurement.txt")
	assert.Contains(t, out, "reference: 2011-10-20 11:58:32.211666")
	assert.Contains(t, out, "duration:  500ms")
	assert.Contains(t, out, "samples:   6 declared, 5 loaded")
	assert.Contains(t, out, "phase:     b")
	assert.Contains(t, out, "labels:    2")
	assert.Contains(t, out, "B  113")
}

func TestRunYAML(t *testing.T) {
	cfg := &Config{Phase: "all", LogLevel: "info", Output: "yaml", Location: "UTC"}

	var buf bytes.Buffer
	require.NoError(t, run(&buf, cfg, zap.NewNop(), measurementFixture, ""))

	var got struct {
		File struct {
			Filename string  `yaml:"filename"`
			Samples  int     `yaml:"samples"`
			Steps    float64 `yaml:"measurement_steps"`
		} `yaml:"file"`
		Phase string `yaml:"phase"`
		Rows  int    `yaml:"rows"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "measurement.txt", got.File.Filename)
	assert.Equal(t, 6, got.File.Samples)
	assert.InDelta(t, 0.000083, got.File.Steps, 1e-12)
	assert.Equal(t, "all", got.Phase)
	assert.Equal(t, 5, got.Rows)
}

func TestRunErrors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		cfg := &Config{Phase: "b", Output: "text", Location: "UTC"}
		require.Error(t, run(&bytes.Buffer{}, cfg, zap.NewNop(), "does-not-exist.txt", ""))
	})

	t.Run("BadLocation", func(t *testing.T) {
		cfg := &Config{Phase: "b", Output: "text", Location: "Mars/Olympus_Mons"}
		require.Error(t, run(&bytes.Buffer{}, cfg, zap.NewNop(), measurementFixture, ""))
	})
}
