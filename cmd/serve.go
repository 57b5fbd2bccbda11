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

package cmd

import (
	"github.com/lucasduport/stream-gen/pkg/server"
	"github.com/lucasduport/stream-gen/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schedule, channel list and resolver over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := newPipeline(cfg)
		srv := server.NewServer(viper.GetInt("port"), p.events, p.channels, p.resolver, p.times)
		return srv.Serve()
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Listening port")
	if err := viper.BindPFlag("port", serveCmd.Flags().Lookup("port")); err != nil {
		utils.ErrorLog("Error binding port flag to viper: %v", err)
	}
	rootCmd.AddCommand(serveCmd)
}
