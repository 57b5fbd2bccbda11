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

// Package stream turns a channel link into a playable media URL.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/lucasduport/stream-gen/pkg/config"
	"github.com/lucasduport/stream-gen/pkg/upstream"
	"github.com/lucasduport/stream-gen/pkg/utils"
)

var (
	// ErrNoPlaylistEntry is returned when the playlist has no usable media line
	ErrNoPlaylistEntry = errors.New("no valid playlist entry found")
	// ErrNoStreamID is returned when a link carries no stream ID
	ErrNoStreamID = errors.New("could not extract stream ID")
)

var (
	streamIDPattern = regexp.MustCompile(`stream-(\d+)\.php`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

// ExtractStreamID returns the digits of the first "stream-<digits>.php" in href
func ExtractStreamID(href string) (string, bool) {
	m := streamIDPattern.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsStreamID reports whether s is a bare stream ID
func IsStreamID(s string) bool {
	return digitsPattern.MatchString(s)
}

// ParseRef accepts either a bare stream ID or a channel link
func ParseRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if IsStreamID(ref) {
		return ref, nil
	}
	if id, ok := ExtractStreamID(ref); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w from %q", ErrNoStreamID, ref)
}

// Resolver fetches stream playlists and composes player URLs
type Resolver struct {
	client *upstream.Client
	cfg    *config.Config
	header http.Header
	params []config.Param
}

// NewResolver creates a resolver using the playlist endpoint of cfg
func NewResolver(cfg *config.Config, client *upstream.Client) *Resolver {
	return &Resolver{
		client: client,
		cfg:    cfg,
		header: cfg.PlaylistHeaders(),
		params: cfg.PlayerParams(),
	}
}

// Resolve fetches the playlist for streamID and returns the first media URL
// with the player header suffix appended.
func (r *Resolver) Resolve(ctx context.Context, streamID string) (string, error) {
	playlistURL := r.cfg.PlaylistURL(streamID)
	utils.DebugLog("Resolving stream-%s via %s", streamID, playlistURL)

	res := r.client.Get(ctx, playlistURL, r.header)
	if !res.OK() {
		return "", fmt.Errorf("stream-%s: %w", streamID, res.Err)
	}
	utils.SaveRawResponse("playlist-"+streamID, res.Body)

	base, err := FirstMediaURL(res.Body)
	if err != nil {
		return "", fmt.Errorf("stream-%s: %w", streamID, err)
	}
	return PlayerURL(base, r.params), nil
}

// FirstMediaURL returns the first trimmed line of a playlist that starts with
// "http" and ends with ".m3u8".
func FirstMediaURL(body []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), len(body)+1)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "http") && strings.HasSuffix(line, ".m3u8") {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan playlist: %w", err)
	}
	return "", ErrNoPlaylistEntry
}

// PlayerURL appends params to base after a "|" delimiter, the form media
// players use to receive request headers they cannot otherwise set.
func PlayerURL(base string, params []config.Param) string {
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		pairs = append(pairs, p.Name+"="+escape(p.Value))
	}
	return base + "|" + strings.Join(pairs, "&")
}

// escape percent-encodes v, leaving "*" literal
func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "%2A", "*")
}
