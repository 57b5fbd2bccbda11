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

// Package channels scrapes the 24/7 channel page into a clean channel list.
package channels

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/lucasduport/stream-gen/pkg/config"
	"github.com/lucasduport/stream-gen/pkg/types"
	"github.com/lucasduport/stream-gen/pkg/upstream"
	"github.com/lucasduport/stream-gen/pkg/utils"
	"golang.org/x/net/html"
)

// Rules decide which anchors on the channel page are channels
type Rules struct {
	// Sentinel is the anchor text where the channel list begins. Earlier
	// anchors are site navigation. This mirrors the current page layout
	// and is the rule most likely to break when the site changes. An empty
	// Sentinel collects from the first anchor.
	Sentinel string
	// PageMarker must appear in the href of a stream page link
	PageMarker string
	// AdultMarker excludes any entry whose text contains it (case-sensitive)
	AdultMarker string
}

// RulesFromConfig builds the scraping rules from the runtime configuration
func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		Sentinel:    cfg.SentinelAnchor,
		PageMarker:  cfg.PageMarker,
		AdultMarker: cfg.AdultMarker,
	}
}

// Fetcher retrieves the channel page
type Fetcher struct {
	client *upstream.Client
	url    string
	header http.Header
	rules  Rules
}

// NewFetcher creates a channel list fetcher for cfg.ChannelsURL
func NewFetcher(cfg *config.Config, client *upstream.Client) *Fetcher {
	return &Fetcher{
		client: client,
		url:    cfg.ChannelsURL,
		header: cfg.ChannelHeaders(),
		rules:  RulesFromConfig(cfg),
	}
}

// Fetch returns the deduplicated, sorted channel list. Any failure is logged
// and yields an empty list.
func (f *Fetcher) Fetch(ctx context.Context) []types.ChannelEntry {
	res := f.client.Get(ctx, f.url, f.header)
	if !res.OK() {
		utils.ErrorLog("Failed to fetch channel list: %v", res.Err)
		return []types.ChannelEntry{}
	}
	utils.SaveRawResponse("channels", res.Body)

	entries, err := Parse(bytes.NewReader(res.Body), f.rules)
	if err != nil {
		utils.ErrorLog("Failed to fetch channel list: %v", err)
		return []types.ChannelEntry{}
	}

	utils.DebugLog("Channel page yielded %d channels", len(entries))
	return entries
}

// Parse scans the anchors of an HTML document in order and returns the
// channels found after the sentinel, unique by lowercased name and sorted
// case-insensitively.
func Parse(r io.Reader, rules Rules) ([]types.ChannelEntry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse channel page: %w", err)
	}

	entries := []types.ChannelEntry{}
	seen := make(map[string]bool)
	collecting := false

	for _, a := range anchors(doc) {
		href, ok := attr(a, "href")
		if !ok {
			continue
		}
		name := visibleText(a)
		if !rules.eligible(name, href) {
			continue
		}

		if strings.Contains(name, rules.Sentinel) {
			collecting = true
		}
		if !collecting {
			continue
		}

		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, types.ChannelEntry{Name: name, Link: href})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

func (r Rules) eligible(name, href string) bool {
	if name == "" || !strings.Contains(href, r.PageMarker) {
		return false
	}
	if r.AdultMarker != "" && strings.Contains(name, r.AdultMarker) {
		return false
	}
	return true
}

// anchors returns every <a> element in document order
func anchors(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// visibleText joins the trimmed text nodes under n
func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
