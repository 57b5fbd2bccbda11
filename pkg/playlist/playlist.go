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

// Package playlist writes resolved streams to M3U files.
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jamesnetherton/m3u"
	"github.com/lucasduport/stream-gen/pkg/utils"
	uuid "github.com/satori/go.uuid"
)

// AutoPath asks the exporter to pick a fresh file in the temp directory
const AutoPath = "auto"

// ChannelsGroup is the group given to channels picked outside an event
const ChannelsGroup = "24/7 Channels"

// cleaner keeps values from breaking the #EXTINF line on re-read
var cleaner = strings.NewReplacer(`"`, "'", ",", " ", "\n", " ", "\r", " ")

// Entry is one resolved stream
type Entry struct {
	StreamID string
	Name     string
	Group    string
	URL      string
}

// Track converts the entry to an M3U track keyed by its stream ID
func (e Entry) Track() m3u.Track {
	name := strings.TrimSpace(cleaner.Replace(e.Name))
	if name == "" {
		name = "stream-" + e.StreamID
	}

	track := m3u.Track{
		Name:   name,
		Length: -1,
		URI:    e.URL,
	}
	track.Tags = append(track.Tags, m3u.Tag{Name: "tvg-id", Value: e.StreamID})
	track.Tags = append(track.Tags, m3u.Tag{Name: "tvg-name", Value: name})
	if group := strings.TrimSpace(cleaner.Replace(e.Group)); group != "" {
		track.Tags = append(track.Tags, m3u.Tag{Name: "group-title", Value: group})
	}
	return track
}

// Exporter appends resolved streams to an M3U file, replacing any earlier
// track with the same stream ID.
type Exporter struct {
	mu   sync.Mutex
	path string
}

// NewExporter creates an exporter writing to path, or to a new temp file
// when path is AutoPath.
func NewExporter(path string) *Exporter {
	if path == AutoPath {
		path = filepath.Join(os.TempDir(), uuid.NewV4().String()+".stream-gen.m3u")
	}
	return &Exporter{path: path}
}

// Path returns the file the exporter writes to
func (e *Exporter) Path() string {
	return e.path
}

// Add writes entry to the playlist file
func (e *Exporter) Add(entry Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.load()
	if err != nil {
		return utils.PrintErrorAndReturn(err)
	}

	track := entry.Track()
	replaced := false
	for i := range p.Tracks {
		if tagValue(p.Tracks[i], "tvg-id") == entry.StreamID {
			p.Tracks[i] = track
			replaced = true
			break
		}
	}
	if !replaced {
		p.Tracks = append(p.Tracks, track)
	}

	f, err := os.Create(e.path)
	if err != nil {
		return utils.PrintErrorAndReturn(err)
	}
	defer f.Close()

	if err := Write(f, &p); err != nil {
		return utils.PrintErrorAndReturn(err)
	}
	utils.DebugLog("Exported stream-%s to %s (%d tracks)", entry.StreamID, e.path, len(p.Tracks))
	return f.Sync()
}

func (e *Exporter) load() (m3u.Playlist, error) {
	info, err := os.Stat(e.path)
	if os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		return m3u.Playlist{}, nil
	}
	if err != nil {
		return m3u.Playlist{}, err
	}

	p, err := m3u.Parse(e.path)
	if err != nil {
		return m3u.Playlist{}, fmt.Errorf("read playlist %s: %w", e.path, err)
	}
	return p, nil
}

// Write serializes p in extended M3U form
func Write(w io.Writer, p *m3u.Playlist) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("#EXTM3U\n") // nolint: errcheck
	for _, track := range p.Tracks {
		var tags []string
		for _, tag := range track.Tags {
			tags = append(tags, tag.Name+`="`+cleaner.Replace(tag.Value)+`"`)
		}

		fmt.Fprintf(bw, "#EXTINF:%d %s, %s\n%s\n", track.Length, strings.Join(tags, " "), track.Name, track.URI) // nolint: errcheck
	}

	return bw.Flush()
}

func tagValue(track m3u.Track, name string) string {
	for _, tag := range track.Tags {
		if tag.Name == name {
			return tag.Value
		}
	}
	return ""
}
