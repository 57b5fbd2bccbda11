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

// Package server exposes the resolution pipeline over HTTP.
package server

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lucasduport/stream-gen/pkg/types"
	"github.com/lucasduport/stream-gen/pkg/utils"
)

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

// Config represent the server configuration
type Config struct {
	port int

	events   EventSource
	channels ChannelSource
	resolver Resolver
	times    TimeFormatter
}

// NewServer wires the pipeline components into an HTTP server listening on port
func NewServer(port int, events EventSource, channels ChannelSource, resolver Resolver, times TimeFormatter) *Config {
	return &Config{
		port:     port,
		events:   events,
		channels: channels,
		resolver: resolver,
		times:    times,
	}
}

// Router builds the gin engine with middleware and routes
func (c *Config) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(requestID())
	router.Use(recovery())
	router.Use(cors.Default())

	c.routes(router)
	return router
}

// Serve the stream-gen api
func (c *Config) Serve() error {
	utils.InfoLog("[stream-gen] Server is starting...")
	gin.SetMode(utils.GetEnvOrDefault("GIN_MODE", gin.ReleaseMode))
	router := c.Router()

	utils.InfoLog("[stream-gen] Server is ready and listening on :%d", c.port)
	return router.Run(fmt.Sprintf(":%d", c.port))
}
