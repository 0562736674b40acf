// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Command bluedinfo prints the metadata of a BLUED measurement file and,
// optionally, the labels that fall within it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/OpenPSG/blued"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const displayTimeLayout = "2006-01-02 15:04:05.000000"

type report struct {
	File   *blued.FileInfo `yaml:"file"`
	Phase  blued.Phase     `yaml:"phase"`
	Rows   int             `yaml:"rows"`
	Labels []labelEntry    `yaml:"labels,omitempty"`
}

type labelEntry struct {
	Timestamp time.Time `yaml:"timestamp"`
	Label     string    `yaml:"label"`
	Phase     string    `yaml:"phase"`
}

func main() {
	labelsPath := flag.String("labels", "", "label file to align with the measurement file")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: bluedinfo [-labels labels.csv] <measurement file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(os.Stdout, cfg, logger, flag.Arg(0), *labelsPath); err != nil {
		logger.Error("Failed to load", zap.String("path", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func run(w io.Writer, cfg *Config, logger *zap.Logger, path, labelsPath string) error {
	loc, err := cfg.location()
	if err != nil {
		return err
	}

	opts := []blued.Option{
		blued.WithPhase(cfg.Phase),
		blued.WithLogger(logger),
		blued.WithLocation(loc),
	}

	table, info, err := blued.LoadMeasurementFile(path, opts...)
	if err != nil {
		return err
	}

	r := &report{File: info, Phase: table.Phase, Rows: table.Len()}

	if labelsPath != "" {
		labels, err := blued.LoadLabelFile(labelsPath, info.FileStart, info.FileEnd, opts...)
		if err != nil {
			return err
		}
		for _, l := range labels {
			r.Labels = append(r.Labels, labelEntry{Timestamp: l.Timestamp, Label: l.Label, Phase: l.Phase})
		}
	}

	logger.Info("Loaded measurement file",
		zap.String("path", path),
		zap.Int("rows", r.Rows),
		zap.Int("labels", len(r.Labels)))

	if cfg.Output == "yaml" {
		return writeYAML(w, r)
	}
	return writeText(w, r, labelsPath != "")
}

func writeYAML(w io.Writer, r *report) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func writeText(w io.Writer, r *report, withLabels bool) error {
	info := r.File

	rate := "unknown"
	if info.MeasurementSteps > 0 {
		rate = humanize.SIWithDigits(1/info.MeasurementSteps, 2, "Hz")
	}

	lines := []string{
		fmt.Sprintf("file:      %s", info.Filename),
		fmt.Sprintf("reference: %s", info.ReferenceTime.Format(displayTimeLayout)),
		fmt.Sprintf("start:     %s", info.FileStart.Format(displayTimeLayout)),
		fmt.Sprintf("end:       %s", info.FileEnd.Format(displayTimeLayout)),
		fmt.Sprintf("duration:  %s", info.FileDuration),
		fmt.Sprintf("samples:   %s declared, %s loaded", humanize.Comma(int64(info.Samples)), humanize.Comma(int64(r.Rows))),
		fmt.Sprintf("rate:      %s", rate),
		fmt.Sprintf("phase:     %s", r.Phase),
	}
	if withLabels {
		lines = append(lines, fmt.Sprintf("labels:    %s", humanize.Comma(int64(len(r.Labels)))))
		for _, l := range r.Labels {
			lines = append(lines, fmt.Sprintf("  %s  %s  %s", l.Timestamp.Format(displayTimeLayout), l.Phase, l.Label))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
