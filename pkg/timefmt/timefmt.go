/*
 * stream-gen is a project to resolve playable IPTV stream URLs from a live schedule.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package timefmt converts published UTC event times to the viewer's clock.
package timefmt

import (
	"strings"
	"time"

	"github.com/lucasduport/stream-gen/pkg/utils"
)

// Layouts accepted from the schedule and produced for display
const (
	layout24hIn  = "15:04"
	layout12hIn  = "3:04PM"
	layout24hOut = "15:04"
	layout12hOut = "3:04 PM"
)

// Formatter renders schedule times in a target location
type Formatter struct {
	use24Hour bool
	location  *time.Location
	now       func() time.Time
}

// New creates a formatter rendering in the process local timezone
func New(use24Hour bool) *Formatter {
	return &Formatter{
		use24Hour: use24Hour,
		location:  time.Local,
		now:       time.Now,
	}
}

// WithLocation returns a copy rendering in loc
func (f *Formatter) WithLocation(loc *time.Location) *Formatter {
	cp := *f
	cp.location = loc
	return &cp
}

// WithClock returns a copy using now as the current time
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	cp := *f
	cp.now = now
	return &cp
}

// Format converts a UTC "HH:MM" or "h:mmAM/PM" time on today's UTC date to
// the formatter's location. Unparseable input is returned unchanged.
func (f *Formatter) Format(raw string) string {
	t, err := f.parse(raw)
	if err != nil {
		utils.WarnLog("Time conversion failed for %q: %v", raw, err)
		return raw
	}

	if f.use24Hour {
		return t.Format(layout24hOut)
	}
	return t.Format(layout12hOut)
}

func (f *Formatter) parse(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)

	layout := layout24hIn
	lower := strings.ToLower(s)
	if strings.Contains(lower, "am") || strings.Contains(lower, "pm") {
		layout = layout12hIn
		// time.Parse only matches upper-case meridiem for "PM"
		s = strings.ToUpper(s)
	}

	clock, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, err
	}

	today := f.now().UTC()
	utc := time.Date(today.Year(), today.Month(), today.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	return utc.In(f.location), nil
}
