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
	"strconv"
	"strings"
	"time"
)

const (
	// EndOfHeader separates the file header, the channel header and the data block.
	EndOfHeader = "***End_of_Header***"

	// headerTimeLayout is the joined Date-Time form, e.g. 2011/10/20-11:58:32.211666.
	headerTimeLayout = "2006/01/02-15:04:05.999999"

	// Widths of the Date and Time fragments in the file header.
	headerDateWidth = 11
	headerTimeWidth = 15
)

// ParseHeader splits the text of a measurement file into its sections and
// parses the timing metadata from the first two. The returned sections are
// the raw segments between EndOfHeader markers; the last one holds the data
// block.
func ParseHeader(text string, loc *time.Location) (*Header, []string, error) {
	if loc == nil {
		loc = time.UTC
	}

	sections := strings.Split(text, EndOfHeader)
	if len(sections) < 2 {
		return nil, nil, newError(KindStructure, nil, "missing %s marker", EndOfHeader)
	}

	hdr := &Header{}

	var err error
	hdr.ReferenceTime, err = referenceTime(sections[0], loc)
	if err != nil {
		return nil, nil, err
	}

	hdr.StartTime, err = channelStartTime(sections[1], loc)
	if err != nil {
		return nil, nil, err
	}

	samples, err := firstToken(sections[1], "Samples,")
	if err != nil {
		return nil, nil, err
	}
	hdr.Samples, err = strconv.Atoi(samples)
	if err != nil {
		return nil, nil, newError(KindParse, err, "error parsing Samples")
	}

	hdr.DeltaX, err = deltaX(sections[1])
	if err != nil {
		return nil, nil, err
	}

	return hdr, sections, nil
}

// headerTimestamp joins a date and time fragment and parses them in loc.
func headerTimestamp(date, clock string, loc *time.Location) (time.Time, error) {
	s := date + "-" + clock
	// The fraction is mandatory, the layout alone would accept a bare HH:MM:SS.
	if !strings.Contains(clock, ".") {
		return time.Time{}, newError(KindParse, nil, "header timestamp %q has no fractional seconds", s)
	}
	t, err := time.ParseInLocation(headerTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, newError(KindParse, err, "error parsing header timestamp %q", s)
	}
	return t, nil
}

// referenceTime reads the fixed-width Date and Time fragments of the file
// header.
func referenceTime(section string, loc *time.Location) (time.Time, error) {
	_, date, ok := strings.Cut(section, "Date,")
	if !ok {
		return time.Time{}, newError(KindStructure, nil, "file header has no Date field")
	}
	_, clock, ok := strings.Cut(section, "Time,")
	if !ok {
		return time.Time{}, newError(KindStructure, nil, "file header has no Time field")
	}

	date = strings.NewReplacer("\n", "", "\r", "").Replace(prefix(date, headerDateWidth))
	clock = prefix(clock, headerTimeWidth)
	if i := strings.IndexAny(clock, "\r\n,\t"); i >= 0 {
		clock = clock[:i]
	}

	return headerTimestamp(date, clock, loc)
}

// channelStartTime reads the first Date and Time values of the channel header.
func channelStartTime(section string, loc *time.Location) (time.Time, error) {
	dates, ok := lineTokens(section, "Date,")
	if !ok {
		return time.Time{}, newError(KindStructure, nil, "channel header has no Date field")
	}
	clocks, ok := lineTokens(section, "Time,")
	if !ok {
		return time.Time{}, newError(KindStructure, nil, "channel header has no Time field")
	}

	return headerTimestamp(strings.TrimSpace(dates[0]), prefix(strings.TrimSpace(clocks[0]), headerTimeWidth), loc)
}

func deltaX(section string) (float64, error) {
	tokens, ok := lineTokens(section, "Delta_X")
	if !ok {
		return 0, newError(KindStructure, nil, "channel header has no Delta_X field")
	}

	var steps []float64
	for _, tok := range head(tokens, 3) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		step, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, newError(KindParse, err, "error parsing Delta_X")
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return 0, newError(KindParse, nil, "Delta_X has no value")
	}

	return steps[0], nil
}

// firstToken returns the first non-empty of the first three values after key.
func firstToken(section, key string) (string, error) {
	tokens, ok := lineTokens(section, key)
	if !ok {
		return "", newError(KindStructure, nil, "channel header has no %s field", strings.TrimSuffix(key, ","))
	}
	for _, tok := range head(tokens, 3) {
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok, nil
		}
	}
	return "", newError(KindParse, nil, "%s has no value", strings.TrimSuffix(key, ","))
}

// lineTokens splits the remainder of the line following the first occurrence
// of key on commas.
func lineTokens(section, key string) ([]string, bool) {
	_, rest, ok := strings.Cut(section, key)
	if !ok {
		return nil, false
	}
	rest, _, _ = strings.Cut(rest, "\n")
	return strings.Split(strings.TrimSuffix(rest, "\r"), ","), true
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

func head(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
