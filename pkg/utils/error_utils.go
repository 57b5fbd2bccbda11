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

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrorDetailLevel controls whether errors carry the location they were raised at
type ErrorDetailLevel int

const (
	// ErrorDetailNone leaves errors untouched and silent
	ErrorDetailNone ErrorDetailLevel = iota
	// ErrorDetailSimple prefixes file, line and function (default)
	ErrorDetailSimple
)

// getErrorDetailLevel reads ERROR_DETAIL_LEVEL
func getErrorDetailLevel() ErrorDetailLevel {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ERROR_DETAIL_LEVEL")), "none") {
		return ErrorDetailNone
	}
	return ErrorDetailSimple
}

// locate prefixes err with the position of the frame skip levels above locate.
// The original error stays reachable through errors.Is / errors.As.
func locate(err error, skip int) error {
	if getErrorDetailLevel() == ErrorDetailNone {
		return err
	}

	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return err
	}

	fnName := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		fnName = filepath.Base(fn.Name())
	}
	return fmt.Errorf("%s:%d [%s]: %w", filepath.Base(file), line, fnName, err)
}

// ErrorWithLocation wraps err with the file, line and function of the caller
func ErrorWithLocation(err error) error {
	if err == nil {
		return nil
	}
	return locate(err, 2)
}

// PrintErrorAndReturn is ErrorWithLocation that also reports the error on
// stderr, unless ERROR_DETAIL_LEVEL is none.
func PrintErrorAndReturn(err error) error {
	if err == nil {
		return nil
	}

	wrapped := locate(err, 2)
	if getErrorDetailLevel() != ErrorDetailNone {
		fmt.Fprintln(os.Stderr, wrapped)
	}
	return wrapped
}
