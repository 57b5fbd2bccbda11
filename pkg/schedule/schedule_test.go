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

package schedule

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lucasduport/stream-gen/pkg/config"
	"github.com/lucasduport/stream-gen/pkg/upstream"
)

const twoGroupFixture = `{
  "Monday 10th Mar 2025 - Schedule Time UK GMT": {
    "Soccer": [
      {"time": "18:00", "event": "Arsenal vs Chelsea",
       "channels": [{"channel_name": "Sky Sports Main Event", "channel_id": "38"}],
       "channels2": [{"channel_name": "TNT Sports 1", "channel_id": 31}]}
    ],
    "Basketball": [
      {"time": "7:30PM", "event": "Lakers vs Celtics", "channels": []}
    ]
  },
  "Tuesday 11th Mar 2025 - Schedule Time UK GMT": {
    "Tennis": [],
    "Cricket": [
      {"time": "09:00", "event": "India vs Australia"},
      "not an event",
      {"time": "11:00", "event": "  Second Test  ",
       "channels": {"0": {"channel_name": "Willow", "channel_id": "346"}}}
    ]
  }
}`

func TestParsePreservesOrderAcrossGroups(t *testing.T) {
	categories, err := Parse([]byte(twoGroupFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantNames := []string{"Soccer", "Basketball", "Tennis", "Cricket"}
	if len(categories) != len(wantNames) {
		t.Fatalf("got %d categories, want %d", len(categories), len(wantNames))
	}
	for i, name := range wantNames {
		if categories[i].Name != name {
			t.Errorf("category[%d] = %q, want %q", i, categories[i].Name, name)
		}
	}

	wantCounts := []int{1, 1, 0, 2}
	for i, n := range wantCounts {
		if got := len(categories[i].Events); got != n {
			t.Errorf("category %q has %d events, want %d", categories[i].Name, got, n)
		}
	}
}

func TestParseConcatenatesChannelLists(t *testing.T) {
	categories, err := Parse([]byte(twoGroupFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ev := categories[0].Events[0]
	if ev.Title != "Arsenal vs Chelsea" || ev.Time != "18:00" {
		t.Errorf("unexpected event %+v", ev)
	}
	if len(ev.Channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(ev.Channels))
	}
	if ev.Channels[0].ID != "38" || ev.Channels[0].Name != "Sky Sports Main Event" {
		t.Errorf("channels[0] = %+v", ev.Channels[0])
	}
	if ev.Channels[1].ID != "31" {
		t.Errorf("numeric channel_id not normalised: %+v", ev.Channels[1])
	}
}

func TestParseDefaultsMissingFields(t *testing.T) {
	categories, err := Parse([]byte(twoGroupFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cricket := categories[3].Events
	if cricket[0].Channels == nil || len(cricket[0].Channels) != 0 {
		t.Errorf("missing channels should default to an empty list, got %#v", cricket[0].Channels)
	}
	if cricket[1].DisplayTitle() != "Second Test" {
		t.Errorf("DisplayTitle() = %q, want trimmed title", cricket[1].DisplayTitle())
	}
	if len(cricket[1].Channels) != 1 || cricket[1].Channels[0].ID != "346" {
		t.Errorf("object-shaped channels not read: %+v", cricket[1].Channels)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "html error page", body: "<html>blocked</html>"},
		{name: "top level array", body: `[{"Soccer": []}]`},
		{name: "truncated", body: `{"group": {"Soccer": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.body)); !errors.Is(err, ErrParse) {
				t.Errorf("Parse() error = %v, want ErrParse", err)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(twoGroupFixture))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.EventsURL = srv.URL

	categories := NewFetcher(cfg, upstream.New(time.Second)).Fetch(context.Background())
	if len(categories) != 4 {
		t.Errorf("Fetch() returned %d categories, want 4", len(categories))
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept header = %q, want application/json", gotAccept)
	}
}

func TestFetchFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			cfg := config.Default()
			cfg.EventsURL = srv.URL

			categories := NewFetcher(cfg, upstream.New(time.Second)).Fetch(context.Background())
			if categories == nil || len(categories) != 0 {
				t.Errorf("Fetch() = %#v, want empty non-nil slice", categories)
			}
		})
	}
}
