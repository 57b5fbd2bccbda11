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
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jamesnetherton/m3u"
	"github.com/lucasduport/stream-gen/pkg/playlist"
	"github.com/lucasduport/stream-gen/pkg/stream"
	"github.com/lucasduport/stream-gen/pkg/types"
	"github.com/lucasduport/stream-gen/pkg/utils"
)

type eventView struct {
	Title     string             `json:"event"`
	Time      string             `json:"time"`
	LocalTime string             `json:"local_time"`
	Channels  []types.ChannelRef `json:"channels"`
}

type categoryView struct {
	Name   string      `json:"category"`
	Events []eventView `json:"events"`
}

type channelView struct {
	Name     string `json:"name"`
	Link     string `json:"link"`
	StreamID string `json:"stream_id,omitempty"`
}

type resolvedView struct {
	StreamID string `json:"stream_id"`
	URL      string `json:"url"`
}

func (c *Config) ping(ctx *gin.Context) {
	utils.DebugLog("API ping received")
	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Message: "API is running",
		Data: map[string]interface{}{
			"time": time.Now().String(),
		},
	})
}

// getEvents returns the schedule with display times
func (c *Config) getEvents(ctx *gin.Context) {
	categories := c.events.Fetch(ctx.Request.Context())

	views := make([]categoryView, 0, len(categories))
	for _, cat := range categories {
		events := make([]eventView, 0, len(cat.Events))
		for _, ev := range cat.Events {
			events = append(events, eventView{
				Title:     ev.DisplayTitle(),
				Time:      ev.RawTime(),
				LocalTime: c.times.Format(ev.RawTime()),
				Channels:  ev.Channels,
			})
		}
		views = append(views, categoryView{Name: cat.Name, Events: events})
	}

	utils.DebugLog("API: returning %d categories", len(views))
	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    views,
	})
}

// getChannels returns the channel list with extracted stream IDs
func (c *Config) getChannels(ctx *gin.Context) {
	entries := c.channels.Fetch(ctx.Request.Context())

	views := make([]channelView, 0, len(entries))
	for _, e := range entries {
		id, _ := stream.ExtractStreamID(e.Link)
		views = append(views, channelView{Name: e.Name, Link: e.Link, StreamID: id})
	}

	utils.DebugLog("API: returning %d channels", len(views))
	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    views,
	})
}

func (c *Config) resolveStream(ctx *gin.Context) {
	id := ctx.Param("id")
	if !stream.IsStreamID(id) {
		ctx.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid stream ID %q", id),
		})
		return
	}

	url, err := c.resolver.Resolve(ctx.Request.Context(), id)
	if err != nil {
		utils.WarnLog("API: resolve failed: %v", err)
		ctx.JSON(resolveStatus(err), types.APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    resolvedView{StreamID: id, URL: url},
	})
}

// playStream serves a one-track playlist so players can open the stream directly
func (c *Config) playStream(ctx *gin.Context) {
	id := ctx.Param("id")
	if !stream.IsStreamID(id) {
		ctx.String(http.StatusBadRequest, "invalid stream ID")
		return
	}

	url, err := c.resolver.Resolve(ctx.Request.Context(), id)
	if err != nil {
		utils.WarnLog("API: play failed: %v", err)
		ctx.String(resolveStatus(err), err.Error())
		return
	}

	entry := playlist.Entry{
		StreamID: id,
		Name:     ctx.Query("name"),
		Group:    ctx.Query("group"),
		URL:      url,
	}
	p := &m3u.Playlist{Tracks: []m3u.Track{entry.Track()}}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="stream-%s.m3u"`, id))
	ctx.Header("Content-Type", "audio/x-mpegurl")
	ctx.Status(http.StatusOK)
	if err := playlist.Write(ctx.Writer, p); err != nil {
		utils.ErrorLog("API: writing playlist for stream-%s: %v", id, err)
	}
}
