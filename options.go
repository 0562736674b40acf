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
	"time"

	"go.uber.org/zap"
)

type options struct {
	phase    string
	logger   *zap.Logger
	location *time.Location
}

// Option configures a load.
type Option func(*options)

// WithPhase selects the phase to return ("all", "a" or "b", any case).
func WithPhase(phase string) Option {
	return func(o *options) {
		o.phase = phase
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLocation sets the time zone that naive timestamps are interpreted in.
// Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		phase:    string(DefaultPhase),
		logger:   zap.NewNop(),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
