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

// Package schedule fetches the live event schedule and flattens it into
// ordered categories.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/buger/jsonparser"
	"github.com/lucasduport/stream-gen/pkg/config"
	"github.com/lucasduport/stream-gen/pkg/types"
	"github.com/lucasduport/stream-gen/pkg/upstream"
	"github.com/lucasduport/stream-gen/pkg/utils"
)

// ErrParse is returned when the schedule body is not the expected JSON shape
var ErrParse = errors.New("malformed schedule")

// Fetcher retrieves the schedule from the events endpoint
type Fetcher struct {
	client *upstream.Client
	url    string
	header http.Header
}

// NewFetcher creates a schedule fetcher for cfg.EventsURL
func NewFetcher(cfg *config.Config, client *upstream.Client) *Fetcher {
	return &Fetcher{
		client: client,
		url:    cfg.EventsURL,
		header: cfg.ScheduleHeaders(),
	}
}

// Fetch returns the schedule as ordered categories. Any failure is logged and
// yields an empty result.
func (f *Fetcher) Fetch(ctx context.Context) []types.Category {
	res := f.client.Get(ctx, f.url, f.header)
	if !res.OK() {
		utils.ErrorLog("Failed to fetch live events: %v", res.Err)
		return []types.Category{}
	}
	utils.SaveRawResponse("schedule", res.Body)

	categories, err := Parse(res.Body)
	if err != nil {
		utils.ErrorLog("Failed to fetch live events: %v", err)
		return []types.Category{}
	}

	utils.DebugLog("Schedule has %d categories", len(categories))
	return categories
}

// Parse flattens {group: {category: [event, ...]}} into categories, keeping
// document order across groups. Group keys are ignored.
func Parse(body []byte) ([]types.Category, error) {
	_, dataType, _, err := jsonparser.Get(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if dataType != jsonparser.Object {
		return nil, fmt.Errorf("%w: top level is %s, want object", ErrParse, dataType)
	}

	categories := []types.Category{}
	err = jsonparser.ObjectEach(body, func(groupKey, group []byte, groupType jsonparser.ValueType, _ int) error {
		if groupType != jsonparser.Object {
			utils.WarnLog("Skipping schedule group %q: not an object (%s)", groupKey, groupType)
			return nil
		}
		return jsonparser.ObjectEach(group, func(nameKey, events []byte, eventsType jsonparser.ValueType, _ int) error {
			name, err := jsonparser.ParseString(nameKey)
			if err != nil {
				name = string(nameKey)
			}
			categories = append(categories, types.Category{
				Name:   name,
				Events: parseEvents(events, eventsType),
			})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return categories, nil
}

func parseEvents(data []byte, dataType jsonparser.ValueType) []types.Event {
	events := []types.Event{}
	if dataType != jsonparser.Array {
		return events
	}

	jsonparser.ArrayEach(data, func(value []byte, vt jsonparser.ValueType, _ int, err error) {
		if err != nil || vt != jsonparser.Object {
			return
		}
		events = append(events, parseEvent(value))
	})
	return events
}

func parseEvent(data []byte) types.Event {
	ev := types.Event{
		Title:    flexString(data, "event"),
		Time:     flexString(data, "time"),
		Channels: []types.ChannelRef{},
	}
	ev.Channels = append(ev.Channels, parseChannelRefs(data, "channels")...)
	ev.Channels = append(ev.Channels, parseChannelRefs(data, "channels2")...)
	return ev
}

// parseChannelRefs reads a channel list that is usually an array but is
// sometimes published as an object keyed by position.
func parseChannelRefs(data []byte, key string) []types.ChannelRef {
	value, dataType, _, err := jsonparser.Get(data, key)
	if err != nil {
		return nil
	}

	var refs []types.ChannelRef
	add := func(item []byte, vt jsonparser.ValueType) {
		if vt != jsonparser.Object {
			return
		}
		refs = append(refs, types.ChannelRef{
			ID:   flexString(item, "channel_id"),
			Name: flexString(item, "channel_name"),
		})
	}

	switch dataType {
	case jsonparser.Array:
		jsonparser.ArrayEach(value, func(item []byte, vt jsonparser.ValueType, _ int, err error) {
			if err == nil {
				add(item, vt)
			}
		})
	case jsonparser.Object:
		jsonparser.ObjectEach(value, func(_, item []byte, vt jsonparser.ValueType, _ int) error {
			add(item, vt)
			return nil
		})
	}
	return refs
}

// flexString reads a field that may be published as a string or a number.
// Anything else reads as "".
func flexString(data []byte, key string) string {
	value, dataType, _, err := jsonparser.Get(data, key)
	if err != nil {
		return ""
	}
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return string(value)
		}
		return s
	case jsonparser.Number:
		return string(value)
	default:
		return ""
	}
}
