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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lucasduport/stream-gen/pkg/stream"
	"github.com/lucasduport/stream-gen/pkg/types"
	"github.com/lucasduport/stream-gen/pkg/upstream"
)

type fakeEvents []types.Category

func (f fakeEvents) Fetch(context.Context) []types.Category { return f }

type fakeChannels []types.ChannelEntry

func (f fakeChannels) Fetch(context.Context) []types.ChannelEntry { return f }

type fakeResolver map[string]error

func (f fakeResolver) Resolve(_ context.Context, id string) (string, error) {
	if err := f[id]; err != nil {
		return "", err
	}
	return "https://cdn.example/" + id + ".m3u8|etag=multistreams", nil
}

type prefixTimes struct{}

func (prefixTimes) Format(raw string) string { return "local " + raw }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	events := fakeEvents{
		{Name: "Soccer", Events: []types.Event{
			{Title: "Derby", Time: "19:45", Channels: []types.ChannelRef{{ID: "301", Name: "Sky"}}},
		}},
	}
	channels := fakeChannels{
		{Name: "ABC USA", Link: "/stream/stream-51.php"},
		{Name: "Odd", Link: "/watch/odd.php"},
	}
	resolver := fakeResolver{
		"404": fmt.Errorf("stream-404: %w", stream.ErrNoPlaylistEntry),
		"502": fmt.Errorf("stream-502: %w", upstream.ErrStatus),
	}

	return NewServer(0, events, channels, resolver, prefixTimes{}).Router()
}

func do(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) types.APIResponse {
	t.Helper()
	resp := types.APIResponse{Data: data}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestPing(t *testing.T) {
	w := do(t, newTestRouter(), "/api/ping")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decode(t, w, nil); !resp.Success {
		t.Errorf("ping not successful: %s", w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Errorf("missing %s header", requestIDHeader)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	newTestRouter().ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("%s = %q, want abc-123", requestIDHeader, got)
	}
}

func TestGetEvents(t *testing.T) {
	var views []categoryView
	w := do(t, newTestRouter(), "/api/events")
	decode(t, w, &views)

	if len(views) != 1 || len(views[0].Events) != 1 {
		t.Fatalf("unexpected events payload: %s", w.Body.String())
	}
	ev := views[0].Events[0]
	if ev.Title != "Derby" || ev.Time != "19:45" || ev.LocalTime != "local 19:45" || ev.Channels[0].ID != "301" {
		t.Errorf("event = %+v", ev)
	}
}

func TestGetChannels(t *testing.T) {
	var views []channelView
	w := do(t, newTestRouter(), "/api/channels")
	decode(t, w, &views)

	if len(views) != 2 {
		t.Fatalf("got %d channels", len(views))
	}
	if views[0].StreamID != "51" || views[1].StreamID != "" {
		t.Errorf("stream IDs = %q, %q", views[0].StreamID, views[1].StreamID)
	}
}

func TestResolveStream(t *testing.T) {
	tests := []struct {
		path string
		code int
	}{
		{"/api/resolve/482", http.StatusOK},
		{"/api/resolve/abc", http.StatusBadRequest},
		{"/api/resolve/404", http.StatusNotFound},
		{"/api/resolve/502", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var view resolvedView
			w := do(t, newTestRouter(), tt.path)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.code, w.Body.String())
			}
			resp := decode(t, w, &view)
			if resp.Success != (tt.code == http.StatusOK) {
				t.Errorf("success = %v for status %d", resp.Success, w.Code)
			}
			if tt.code == http.StatusOK && view.URL != "https://cdn.example/482.m3u8|etag=multistreams" {
				t.Errorf("url = %q", view.URL)
			}
		})
	}
}

func TestPlayStream(t *testing.T) {
	w := do(t, newTestRouter(), "/play/482?name=ESPN&group=Soccer")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/x-mpegurl" {
		t.Errorf("Content-Type = %q", ct)
	}

	want := "#EXTM3U\n" +
		`#EXTINF:-1 tvg-id="482" tvg-name="ESPN" group-title="Soccer", ESPN` + "\n" +
		"https://cdn.example/482.m3u8|etag=multistreams\n"
	if w.Body.String() != want {
		t.Errorf("body =\n%s\nwant\n%s", w.Body.String(), want)
	}
}

func TestPlayStreamErrors(t *testing.T) {
	tests := []struct {
		path string
		code int
	}{
		{"/play/x1", http.StatusBadRequest},
		{"/play/404", http.StatusNotFound},
		{"/play/502", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, newTestRouter(), tt.path)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			if strings.Contains(w.Body.String(), "#EXTM3U") {
				t.Errorf("error response should not be a playlist")
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(recovery())
	r.GET("/boom", func(*gin.Context) { panic(errors.New("boom")) })

	w := do(t, r, "/boom")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decode(t, w, nil); resp.Success || !strings.Contains(resp.Error, "boom") {
		t.Errorf("unexpected response %s", w.Body.String())
	}
}
