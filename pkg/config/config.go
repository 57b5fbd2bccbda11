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

package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Time display formats
const (
	TimeFormat24h = "24"
	TimeFormat12h = "12"
)

// Default values
const (
	DefaultEventsURL           = "https://thedaddy.top/schedule/schedule-generated.php"
	DefaultChannelsURL         = "https://thedaddy.top/24-7-channels.php"
	DefaultPlaylistURLTemplate = "https://dad.multistreamz.com/streams/%s/mono.m3u8"

	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	DefaultSiteReferer   = "https://thedaddy.top/"
	DefaultSiteOrigin    = "https://thedaddy.top"
	DefaultPlayerReferer = "https://jxoplay.xyz/"
	DefaultPlayerOrigin  = "https://jxoplay.xyz"

	// DefaultPlayerUserAgent is the agent advertised to downstream players,
	// which is shorter than the one used for scraping.
	DefaultPlayerUserAgent = "Mozilla/5.0"
	DefaultPlayerEtag      = "multistreams"

	DefaultTimeout    = 10 * time.Second
	DefaultTimeFormat = TimeFormat24h

	// MinTimeout rejects unitless values such as "5", which parse as nanoseconds
	MinTimeout = time.Second

	// DefaultSentinelAnchor marks where the channel list starts on the
	// channel page. Anchors before it are navigation and are skipped.
	// The page layout is not under our control; this is the first thing
	// to revisit when the channel list comes back empty.
	DefaultSentinelAnchor = "ABC USA"
	DefaultPageMarker     = "php"
	DefaultAdultMarker    = "18+"
)

// Param is one name/value pair of the player header suffix
type Param struct {
	Name  string
	Value string
}

// Config is the immutable runtime configuration shared by every component.
type Config struct {
	EventsURL           string
	ChannelsURL         string
	PlaylistURLTemplate string

	UserAgent     string
	SiteReferer   string
	SiteOrigin    string
	PlayerReferer string
	PlayerOrigin  string

	Timeout    time.Duration
	TimeFormat string

	SentinelAnchor string
	PageMarker     string
	AdultMarker    string

	// ExportPath is the M3U file resolved streams are appended to ("" disables export)
	ExportPath string
}

// Default returns the configuration the program uses when nothing is overridden
func Default() *Config {
	return &Config{
		EventsURL:           DefaultEventsURL,
		ChannelsURL:         DefaultChannelsURL,
		PlaylistURLTemplate: DefaultPlaylistURLTemplate,
		UserAgent:           DefaultUserAgent,
		SiteReferer:         DefaultSiteReferer,
		SiteOrigin:          DefaultSiteOrigin,
		PlayerReferer:       DefaultPlayerReferer,
		PlayerOrigin:        DefaultPlayerOrigin,
		Timeout:             DefaultTimeout,
		TimeFormat:          DefaultTimeFormat,
		SentinelAnchor:      DefaultSentinelAnchor,
		PageMarker:          DefaultPageMarker,
		AdultMarker:         DefaultAdultMarker,
	}
}

// Validate reports the first setting that would make the pipeline misbehave
func (c *Config) Validate() error {
	switch c.TimeFormat {
	case TimeFormat24h, TimeFormat12h:
	default:
		return fmt.Errorf("invalid time format %q (want %q or %q)", c.TimeFormat, TimeFormat24h, TimeFormat12h)
	}
	if c.Timeout < MinTimeout {
		return fmt.Errorf("timeout must be at least %s, got %s", MinTimeout, c.Timeout)
	}
	if n := strings.Count(c.PlaylistURLTemplate, "%s"); n != 1 {
		return fmt.Errorf("playlist URL template must contain exactly one %%s, got %d", n)
	}
	for name, v := range map[string]string{
		"events URL":   c.EventsURL,
		"channels URL": c.ChannelsURL,
		"user agent":   c.UserAgent,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	return nil
}

// Use24Hour reports whether event times are shown on a 24-hour clock
func (c *Config) Use24Hour() bool {
	return c.TimeFormat != TimeFormat12h
}

// PlaylistURL returns the playlist endpoint for a stream ID
func (c *Config) PlaylistURL(streamID string) string {
	return fmt.Sprintf(c.PlaylistURLTemplate, streamID)
}

// ScheduleHeaders returns the headers sent to the schedule endpoint
func (c *Config) ScheduleHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.UserAgent)
	h.Set("Referer", c.SiteReferer)
	h.Set("Origin", c.SiteOrigin)
	h.Set("Accept", "application/json")
	h.Set("Connection", "keep-alive")
	return h
}

// ChannelHeaders returns the headers sent to the channel list page
func (c *Config) ChannelHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.UserAgent)
	return h
}

// PlaylistHeaders returns the media-client headers sent to the playlist endpoint
func (c *Config) PlaylistHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.UserAgent)
	h.Set("Referer", c.PlayerReferer)
	h.Set("Origin", c.PlayerOrigin)
	h.Set("Accept", "*/*")
	h.Set("Connection", "close")
	h.Set("Icy-MetaData", "1")
	h.Set("Etag", DefaultPlayerEtag)
	return h
}

// PlayerParams returns, in order, the headers a player must send when opening
// the resolved URL.
func (c *Config) PlayerParams() []Param {
	return []Param{
		{Name: "User-Agent", Value: DefaultPlayerUserAgent},
		{Name: "Accept", Value: "*/*"},
		{Name: "Connection", Value: "close"},
		{Name: "Icy-MetaData", Value: "1"},
		{Name: "Referer", Value: c.PlayerReferer},
		{Name: "Origin", Value: c.PlayerOrigin},
		{Name: "etag", Value: DefaultPlayerEtag},
	}
}
