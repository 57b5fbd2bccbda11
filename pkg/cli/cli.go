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

// Package cli implements the interactive menus over any reader and writer.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/lucasduport/stream-gen/pkg/playlist"
	"github.com/lucasduport/stream-gen/pkg/stream"
	"github.com/lucasduport/stream-gen/pkg/types"
	"github.com/lucasduport/stream-gen/pkg/utils"
)

const goodbye = "\n👋 Exiting Daddy Live Stream Gen. See you next time!"

// errExit unwinds the menus when the user asks to quit
var errExit = errors.New("exit requested")

type inputLine struct {
	text string
	err  error
}

// EventSource provides the live schedule
type EventSource interface {
	Fetch(ctx context.Context) []types.Category
}

// ChannelSource provides the 24/7 channel list
type ChannelSource interface {
	Fetch(ctx context.Context) []types.ChannelEntry
}

// Resolver turns a stream ID into a playable URL
type Resolver interface {
	Resolve(ctx context.Context, streamID string) (string, error)
}

// TimeFormatter renders raw schedule times for display
type TimeFormatter interface {
	Format(raw string) string
}

// Exporter records resolved streams
type Exporter interface {
	Add(entry playlist.Entry) error
}

// App is the interactive menu session
type App struct {
	in          *bufio.Scanner
	out         io.Writer
	lines       chan inputLine
	startReader sync.Once

	events   EventSource
	channels ChannelSource
	resolver Resolver
	times    TimeFormatter
	exporter Exporter
}

// New creates a menu session reading choices from in and printing to out
func New(in io.Reader, out io.Writer, events EventSource, channels ChannelSource, resolver Resolver, times TimeFormatter) *App {
	return &App{
		in:       bufio.NewScanner(in),
		lines:    make(chan inputLine),
		out:      out,
		events:   events,
		channels: channels,
		resolver: resolver,
		times:    times,
	}
}

// WithExporter makes the session record every resolved stream with e
func (a *App) WithExporter(e Exporter) *App {
	a.exporter = e
	return a
}

// Run shows the main menu until the user exits, input ends or ctx is
// cancelled. A pending prompt does not delay cancellation.
func (a *App) Run(ctx context.Context) error {
	err := a.mainMenu(ctx)
	switch {
	case errors.Is(err, errExit), errors.Is(err, context.Canceled):
		a.println(goodbye)
		return nil
	case errors.Is(err, io.EOF):
		utils.DebugLog("Input closed, leaving menu")
		return nil
	}
	return err
}

func (a *App) mainMenu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.println("\n🛰️  Daddy Live Stream Gen")
		a.println("1. Live Events")
		a.println("2. Live Channels")
		a.println("3. Exit")

		choice, ok, err := a.readNumber(ctx, "\nSelect an option: ")
		if err != nil {
			return err
		}
		if !ok {
			a.println("❌ Please enter a valid number.")
			continue
		}

		switch choice {
		case 1:
			err = a.eventsMenu(ctx)
		case 2:
			err = a.channelsMenu(ctx)
		case 3:
			return errExit
		default:
			a.println("❌ Invalid menu option.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) eventsMenu(ctx context.Context) error {
	categories := a.events.Fetch(ctx)
	if len(categories) == 0 {
		a.println("❌ No live events found.")
		return nil
	}

	a.println("\n📚 Available Event Categories:\n")
	for i, c := range categories {
		a.printf("%d. %s\n", i+1, c.Name)
	}
	idx, back, err := a.pick(ctx, "\nSelect category number: ", len(categories), "❌ Invalid category.")
	if err != nil || back {
		return err
	}
	category := categories[idx]

	a.printf("\n📅 %s\n", category.Name)
	for i, ev := range category.Events {
		a.printf("  %d. 🕒 %s — 🎬 %s\n", i+1, a.times.Format(ev.RawTime()), ev.DisplayTitle())
	}
	idx, back, err = a.pick(ctx, "\nSelect event number: ", len(category.Events), "❌ Invalid event.")
	if err != nil || back {
		return err
	}
	event := category.Events[idx]

	if len(event.Channels) == 0 {
		a.println("❌ No channels listed.")
		return nil
	}
	a.printf("\n🎬 %s\n", event.DisplayTitle())
	for i, ch := range event.Channels {
		a.printf("  %d. 📺 %s (ID: %s)\n", i+1, ch.Name, ch.ID)
	}
	idx, back, err = a.pick(ctx, "\nSelect channel number: ", len(event.Channels), "❌ Invalid channel.")
	if err != nil || back {
		return err
	}
	ch := event.Channels[idx]

	if !stream.IsStreamID(ch.ID) {
		a.println("❌ Could not extract stream ID.")
		return nil
	}
	return a.resolve(ctx, playlist.Entry{StreamID: ch.ID, Name: ch.Name, Group: category.Name})
}

// pick reads a 1-based index into a list of n items. Zero means back.
// Bad input prints a diagnostic and also goes back.
func (a *App) pick(ctx context.Context, prompt string, n int, invalid string) (int, bool, error) {
	choice, ok, err := a.readNumber(ctx, prompt)
	if err != nil {
		return 0, true, err
	}
	if !ok {
		a.println("❌ Invalid input.")
		return 0, true, nil
	}
	if choice == 0 {
		return 0, true, nil
	}
	if choice < 1 || choice > n {
		a.println(invalid)
		return 0, true, nil
	}
	return choice - 1, false, nil
}

func (a *App) channelsMenu(ctx context.Context) error {
	entries := a.channels.Fetch(ctx)
	if len(entries) == 0 {
		a.println("❌ No channels found or all were filtered out.")
		return nil
	}

	for {
		a.println("\n📺 Available Channels (Deduplicated & Sorted):\n")
		for i, e := range entries {
			a.printf("%d. %s\n", i+1, e.Name)
		}
		a.println("0. Back to Main Menu")

		choice, ok, err := a.readNumber(ctx, "\nEnter channel number: ")
		if err != nil {
			return err
		}
		switch {
		case !ok:
			a.println("❌ Please enter a valid number.")
		case choice == 0:
			return nil
		case choice >= 1 && choice <= len(entries):
			entry := entries[choice-1]
			a.printf("\n🔗 Selected: %s → %s\n", entry.Name, entry.Link)

			id, found := stream.ExtractStreamID(entry.Link)
			if !found {
				a.println("❌ Could not extract stream ID.")
				continue
			}
			err = a.resolve(ctx, playlist.Entry{StreamID: id, Name: entry.Name, Group: playlist.ChannelsGroup})
			if err != nil {
				return err
			}
		default:
			a.println("❌ Invalid selection.")
		}
	}
}

// resolve prints the playable URL for entry and waits for the user to
// continue. Resolution failures are reported and never end the session.
func (a *App) resolve(ctx context.Context, entry playlist.Entry) error {
	url, err := a.resolver.Resolve(ctx, entry.StreamID)
	switch {
	case errors.Is(err, stream.ErrNoPlaylistEntry):
		a.println("❌ No valid .m3u8 link found.")
		return nil
	case err != nil:
		a.printf("❌ Failed to fetch .m3u8 for %v\n", err)
		return nil
	}

	a.printf("\n🔗 Final Stream URL:\n%s\n", url)

	if a.exporter != nil {
		entry.URL = url
		if err := a.exporter.Add(entry); err != nil {
			utils.ErrorLog("Failed to export stream-%s: %v", entry.StreamID, err)
		}
	}
	return a.promptContinue(ctx)
}

func (a *App) promptContinue(ctx context.Context) error {
	for {
		line, err := a.readLine(ctx, "\nEnter 0 to continue or 00 to exit: ")
		if err != nil {
			return err
		}
		switch strings.TrimSpace(line) {
		case "0":
			return nil
		case "00":
			return errExit
		default:
			a.println("❌ Invalid input. Please enter 0 or 00.")
		}
	}
}

// readLine prints prompt and waits for the next input line or for ctx to end
func (a *App) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	a.startReader.Do(func() { go a.readLines() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-a.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// readLines feeds input lines to readLine until the input ends
func (a *App) readLines() {
	defer close(a.lines)
	for a.in.Scan() {
		a.lines <- inputLine{text: a.in.Text()}
	}
	if err := a.in.Err(); err != nil {
		a.lines <- inputLine{err: err}
	}
}

// readNumber reads an integer. ok is false when the line is not a number.
func (a *App) readNumber(ctx context.Context, prompt string) (n int, ok bool, err error) {
	line, err := a.readLine(ctx, prompt)
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) printf(format string, v ...interface{}) {
	fmt.Fprintf(a.out, format, v...)
}
