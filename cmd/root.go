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
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lucasduport/stream-gen/pkg/channels"
	"github.com/lucasduport/stream-gen/pkg/cli"
	"github.com/lucasduport/stream-gen/pkg/config"
	"github.com/lucasduport/stream-gen/pkg/playlist"
	"github.com/lucasduport/stream-gen/pkg/schedule"
	"github.com/lucasduport/stream-gen/pkg/stream"
	"github.com/lucasduport/stream-gen/pkg/timefmt"
	"github.com/lucasduport/stream-gen/pkg/upstream"
	"github.com/lucasduport/stream-gen/pkg/utils"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stream-gen",
	Short: "Resolve playable IPTV stream URLs from a live schedule",
	Long: `stream-gen browses a live sports schedule and a list of 24/7 channels
and resolves the playable .m3u8 URL of the channel you pick.

The resolved URL carries the request headers players need after a "|"
delimiter, so it can be opened directly in VLC, Kodi or any player that
understands that form.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p := newPipeline(cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := cli.New(os.Stdin, os.Stdout, p.events, p.channels, p.resolver, p.times)
		if exp := p.exporter(); exp != nil {
			app.WithExporter(exp)
		}
		return app.Run(ctx)
	},
}

// pipeline holds the components shared by every command
type pipeline struct {
	cfg      *config.Config
	events   *schedule.Fetcher
	channels *channels.Fetcher
	resolver *stream.Resolver
	times    *timefmt.Formatter
}

func newPipeline(cfg *config.Config) *pipeline {
	client := upstream.New(cfg.Timeout)
	return &pipeline{
		cfg:      cfg,
		events:   schedule.NewFetcher(cfg, client),
		channels: channels.NewFetcher(cfg, client),
		resolver: stream.NewResolver(cfg, client),
		times:    timefmt.New(cfg.Use24Hour()),
	}
}

// exporter returns the configured playlist exporter, or nil when export is off
func (p *pipeline) exporter() *playlist.Exporter {
	if p.cfg.ExportPath == "" {
		return nil
	}
	exp := playlist.NewExporter(p.cfg.ExportPath)
	utils.InfoLog("Exporting resolved streams to %s", exp.Path())
	return exp
}

// loadConfig builds the runtime configuration from flags, environment and
// config file, on top of the defaults.
func loadConfig() (*config.Config, error) {
	if viper.GetBool("debug-logging") {
		utils.SetDebug(true)
	}

	cfg := config.Default()
	cfg.EventsURL = viper.GetString("events-url")
	cfg.ChannelsURL = viper.GetString("channels-url")
	cfg.PlaylistURLTemplate = viper.GetString("playlist-url-template")
	cfg.UserAgent = viper.GetString("user-agent")
	cfg.Timeout = viper.GetDuration("timeout")
	cfg.TimeFormat = viper.GetString("time-format")
	cfg.ExportPath = viper.GetString("export")

	if err := cfg.Validate(); err != nil {
		return nil, utils.ErrorWithLocation(fmt.Errorf("invalid configuration: %w", err))
	}
	utils.DumpStructToLog("config", cfg)
	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	defer utils.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.stream-gen.yaml)")

	// Upstream flags
	flags := rootCmd.PersistentFlags()
	flags.String("events-url", config.DefaultEventsURL, "Live schedule JSON URL")
	flags.String("channels-url", config.DefaultChannelsURL, "24/7 channel page URL")
	flags.String("playlist-url-template", config.DefaultPlaylistURLTemplate, "Playlist URL template (%s is the stream ID)")
	flags.String("user-agent", config.DefaultUserAgent, "User agent sent upstream")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout of each upstream request")

	// Output flags
	flags.String("time-format", config.DefaultTimeFormat, `Event time format: "24" or "12"`)
	flags.String("export", "", `Append resolved streams to this M3U file ("auto" for a temp file)`)
	flags.Bool("debug-logging", false, "Enable debug logging")

	// Bind all flags to viper
	if err := viper.BindPFlags(flags); err != nil {
		utils.ErrorLog("Error binding PFlags to viper: %v", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory and current directory
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".stream-gen")
	}

	// Environment variables are STREAM_GEN_<FLAG>, hyphens replaced with underscores
	viper.SetEnvPrefix("STREAM_GEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Read environment variables
	viper.AutomaticEnv()

	// Read in config file if found
	if err := viper.ReadInConfig(); err == nil {
		utils.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}
