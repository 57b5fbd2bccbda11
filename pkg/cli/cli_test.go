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

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/lucasduport/stream-gen/pkg/playlist"
	"github.com/lucasduport/stream-gen/pkg/stream"
	"github.com/lucasduport/stream-gen/pkg/types"
)

type fakeEvents []types.Category

func (f fakeEvents) Fetch(context.Context) []types.Category { return f }

type fakeChannels []types.ChannelEntry

func (f fakeChannels) Fetch(context.Context) []types.ChannelEntry { return f }

type fakeResolver struct {
	calls []string
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, id string) (string, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example/" + id + ".m3u8|etag=multistreams", nil
}

type upperTimes struct{}

func (upperTimes) Format(raw string) string { return "T" + raw }

type fakeExporter struct {
	added []playlist.Entry
}

func (f *fakeExporter) Add(e playlist.Entry) error {
	f.added = append(f.added, e)
	return nil
}

var testChannels = fakeChannels{
	{Name: "ABC USA", Link: "/stream/stream-51.php"},
	{Name: "ESPN", Link: "/stream/stream-44.php"},
	{Name: "Mystery", Link: "/watch/mystery.php"},
}

var testEvents = fakeEvents{
	{Name: "Soccer", Events: []types.Event{
		{Title: " Arsenal vs Chelsea ", Time: "19:45", Channels: []types.ChannelRef{
			{ID: "301", Name: "Sky Sports"},
			{ID: "302", Name: "TNT"},
		}},
		{Title: "No Coverage", Time: "20:00"},
	}},
	{Name: "Tennis", Events: []types.Event{}},
}

func run(t *testing.T, input string, r *fakeResolver) string {
	t.Helper()
	var out bytes.Buffer
	app := New(strings.NewReader(input), &out, testEvents, testChannels, r, upperTimes{})
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestChannelSelectionResolvesOnce(t *testing.T) {
	r := &fakeResolver{}
	out := run(t, "2\n2\n00\n", r)

	if len(r.calls) != 1 || r.calls[0] != "44" {
		t.Fatalf("resolver calls = %v, want [44]", r.calls)
	}
	for _, want := range []string{
		"\n📺 Available Channels (Deduplicated & Sorted):\n",
		"2. ESPN\n",
		"0. Back to Main Menu",
		"🔗 Selected: ESPN → /stream/stream-44.php",
		"🔗 Final Stream URL:\nhttps://cdn.example/44.m3u8|etag=multistreams\n",
		goodbye,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestEventSelection(t *testing.T) {
	r := &fakeResolver{}
	out := run(t, "1\n1\n1\n2\n0\n3\n", r)

	if len(r.calls) != 1 || r.calls[0] != "302" {
		t.Fatalf("resolver calls = %v, want [302]", r.calls)
	}
	for _, want := range []string{
		"📚 Available Event Categories:",
		"1. Soccer\n2. Tennis\n",
		"\n📅 Soccer\n",
		"  1. 🕒 T19:45 — 🎬 Arsenal vs Chelsea\n",
		"  2. 🕒 T20:00 — 🎬 No Coverage\n",
		"  2. 📺 TNT (ID: 302)\n",
		goodbye,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestMenuDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"non numeric main", "abc\n3\n", "❌ Please enter a valid number."},
		{"unknown option", "7\n3\n", "❌ Invalid menu option."},
		{"bad category", "1\n9\n3\n", "❌ Invalid category."},
		{"bad event", "1\n1\n5\n3\n", "❌ Invalid event."},
		{"event without channels", "1\n1\n2\n3\n", "❌ No channels listed."},
		{"bad channel in event", "1\n1\n1\n4\n3\n", "❌ Invalid channel."},
		{"non numeric in event", "1\nx\n3\n", "❌ Invalid input."},
		{"channel out of range", "2\n8\n0\n3\n", "❌ Invalid selection."},
		{"channel not a number", "2\nfoo\n0\n3\n", "❌ Please enter a valid number."},
		{"link without id", "2\n3\n0\n3\n", "❌ Could not extract stream ID."},
		{"continue prompt", "2\n1\n5\n0\n0\n3\n", "❌ Invalid input. Please enter 0 or 00."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, tt.input, &fakeResolver{})
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q\n%s", tt.want, out)
			}
			if !strings.Contains(out, goodbye) {
				t.Errorf("expected menu to exit cleanly\n%s", out)
			}
		})
	}
}

func TestZeroGoesBack(t *testing.T) {
	r := &fakeResolver{}
	out := run(t, "1\n0\n1\n1\n0\n3\n", r)
	if len(r.calls) != 0 {
		t.Errorf("resolver should not be called, got %v", r.calls)
	}
	if strings.Contains(out, "❌") {
		t.Errorf("going back should not print a diagnostic\n%s", out)
	}
}

func TestResolveFailuresKeepMenu(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no entry", fmt.Errorf("stream-44: %w", stream.ErrNoPlaylistEntry), "❌ No valid .m3u8 link found."},
		{"upstream", errors.New("stream-44: unexpected HTTP status: 403 Forbidden"), "❌ Failed to fetch .m3u8 for stream-44: unexpected HTTP status: 403 Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, "2\n2\n0\n3\n", &fakeResolver{err: tt.err})
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q\n%s", tt.want, out)
			}
			if strings.Contains(out, "Final Stream URL") {
				t.Errorf("no URL should be printed on failure")
			}
		})
	}
}

func TestEmptySources(t *testing.T) {
	var out bytes.Buffer
	app := New(strings.NewReader("1\n2\n3\n"), &out, fakeEvents{}, fakeChannels{}, &fakeResolver{}, upperTimes{})
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, want := range []string{"❌ No live events found.", "❌ No channels found or all were filtered out."} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestEOFEndsSession(t *testing.T) {
	r := &fakeResolver{}
	out := run(t, "2\n1\n", r)
	if len(r.calls) != 1 {
		t.Errorf("resolver calls = %v", r.calls)
	}
	if strings.Contains(out, goodbye) {
		t.Errorf("EOF should end quietly")
	}
}

func TestExportAfterResolve(t *testing.T) {
	exp := &fakeExporter{}
	var out bytes.Buffer
	app := New(strings.NewReader("1\n1\n1\n1\n00\n"), &out, testEvents, testChannels, &fakeResolver{}, upperTimes{}).WithExporter(exp)
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(exp.added) != 1 {
		t.Fatalf("exported %d entries, want 1", len(exp.added))
	}
	got := exp.added[0]
	if got.StreamID != "301" || got.Name != "Sky Sports" || got.Group != "Soccer" || !strings.HasPrefix(got.URL, "https://cdn.example/301.m3u8") {
		t.Errorf("exported %+v", got)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	app := New(strings.NewReader("3\n"), &out, testEvents, testChannels, &fakeResolver{}, upperTimes{})
	if err := app.Run(ctx); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if !strings.Contains(out.String(), goodbye) {
		t.Errorf("cancellation should say goodbye\n%s", out.String())
	}
}

func TestCancelInterruptsWaitingPrompt(t *testing.T) {
	// stdin that never delivers a line
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	app := New(r, &out, testEvents, testChannels, &fakeResolver{}, upperTimes{})

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() kept waiting for input after cancellation")
	}
	if !strings.Contains(out.String(), "Select an option: ") {
		t.Errorf("expected the main prompt before cancellation\n%s", out.String())
	}
}
