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
	"context"
	"fmt"

	"github.com/lucasduport/stream-gen/pkg/playlist"
	"github.com/lucasduport/stream-gen/pkg/stream"
	"github.com/lucasduport/stream-gen/pkg/utils"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <stream-id | link>",
	Short: "Print the playable URL of one stream",
	Long: `Resolve a stream without the menus. The argument is either a bare
stream ID such as 51 or a channel link such as /stream/stream-51.php.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		id, err := stream.ParseRef(args[0])
		if err != nil {
			return err
		}

		p := newPipeline(cfg)
		url, err := p.resolver.Resolve(context.Background(), id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)

		if exp := p.exporter(); exp != nil {
			if err := exp.Add(playlist.Entry{StreamID: id, URL: url}); err != nil {
				utils.ErrorLog("Failed to export stream-%s: %v", id, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
