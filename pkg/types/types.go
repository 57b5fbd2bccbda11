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

package types

import "strings"

// ChannelRef identifies one channel broadcasting an event
type ChannelRef struct {
	ID   string `json:"channel_id"`
	Name string `json:"channel_name"`
}

// Event is a single scheduled broadcast from the live schedule
type Event struct {
	Title    string       `json:"event"`
	Time     string       `json:"time"`     // raw UTC time as published ("18:00" or "6:00PM")
	Channels []ChannelRef `json:"channels"` // channels followed by channels2
}

// DisplayTitle returns the trimmed title, or "Untitled" when none was published
func (e Event) DisplayTitle() string {
	if t := strings.TrimSpace(e.Title); t != "" {
		return t
	}
	return "Untitled"
}

// RawTime returns the published time, or "Unknown" when none was published
func (e Event) RawTime() string {
	if e.Time == "" {
		return "Unknown"
	}
	return e.Time
}

// Category groups the events of one schedule section
type Category struct {
	Name   string  `json:"category"`
	Events []Event `json:"events"`
}

// ChannelEntry is one 24/7 channel scraped from the channel page
type ChannelEntry struct {
	Name string `json:"name"`
	Link string `json:"link"` // absolute URL or relative href
}

// APIResponse is a standardized API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
