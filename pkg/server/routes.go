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
	"github.com/gin-gonic/gin"
)

func (c *Config) routes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/ping", c.ping)
	api.GET("/events", c.getEvents)
	api.GET("/channels", c.getChannels)
	api.GET("/resolve/:id", c.resolveStream)

	r.GET("/play/:id", c.playStream)
}
