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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// debugDirName is the folder under os.TempDir() that receives raw upstream dumps
const debugDirName = "stream-gen-debug"

// PrettyPrintJSON returns a nicely formatted JSON string for debugging
func PrettyPrintJSON(data interface{}) string {
	if data == nil {
		return "null"
	}

	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling JSON: %v", err)
	}

	return string(jsonBytes)
}

// SaveRawResponse saves a raw upstream body to the debug directory and returns
// the file path, or "" when debug logging is off or the write failed.
func SaveRawResponse(action string, data []byte) string {
	if !Config.DebugLoggingEnabled {
		return ""
	}

	debugDir := filepath.Join(os.TempDir(), debugDirName)
	if err := os.MkdirAll(debugDir, 0755); err != nil {
		ErrorLog("Failed to create debug directory: %v", err)
		return ""
	}

	if action == "" {
		action = "response"
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(debugDir, fmt.Sprintf("%s_%s.txt", action, timestamp))

	if err := os.WriteFile(filename, data, 0644); err != nil {
		ErrorLog("Failed to save debug data: %v", err)
		return ""
	}

	// JSON bodies also get a pretty-printed twin
	var prettyData interface{}
	if json.Unmarshal(data, &prettyData) == nil {
		_ = os.WriteFile(filename+".pretty.json", []byte(PrettyPrintJSON(prettyData)), 0644)
	}

	DebugLog("Wrote %s response (%d bytes) to %s", action, len(data), filename)
	return filename
}

// DumpStructToLog dumps the content of a struct to the debug log
func DumpStructToLog(prefix string, v interface{}) {
	if !Config.DebugLoggingEnabled {
		return
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		DebugLog("%s: [error marshaling: %v]", prefix, err)
		return
	}

	const maxLen = 500
	if len(data) > maxLen {
		DebugLog("%s: %s... [truncated, full data in debug files]", prefix, Truncate(string(data), maxLen))
	} else {
		DebugLog("%s: %s", prefix, string(data))
	}

	SaveRawResponse(prefix, data)
}
