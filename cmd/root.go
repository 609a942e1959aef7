/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/carlmjohnson/versioninfo"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"tweetsite/config"
	"tweetsite/metrics"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:    "tweetsite",
		Usage:   "Turn an exported post archive into a static website",
		Version: versioninfo.Short(),
		Description: `Reads one or more unpacked archive exports of the same account
		and writes a browsable static site: an index of posts, one page
		per post, a plain text digest and copies of the attached media
		with thumbnails.

		Settings come from an optional TOML file and can be overridden by
		flags, which can generally be set via environment variables, e.g.:

		--out => TWEETSITE_OUT=site
		--timezone => TWEETSITE_TIMEZONE=UTC
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				EnvVars: []string{"TWEETSITE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level: debug, info, warn or error",
				EnvVars: []string{"TWEETSITE_LOG_LEVEL"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// stdout is reserved for the print command
			log.SetOutput(os.Stderr)
			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			buildCmd(),
			printCmd(),
			exportCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

// renderFlags are shared by every command that reads archives
func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "timezone",
			Usage:   "Timezone post timestamps are shown in",
			EnvVars: []string{"TWEETSITE_TIMEZONE"},
		},
		&cli.StringFlag{
			Name:    "index-unit",
			Usage:   "Unit the archive counted entity indices in: codepoint or utf16",
			EnvVars: []string{"TWEETSITE_INDEX_UNIT"},
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output directory",
			EnvVars: []string{"TWEETSITE_OUT"},
		},
		&cli.StringFlag{
			Name:    "sqlite",
			Usage:   "Also export posts to this SQLite database, relative to the output directory",
			EnvVars: []string{"TWEETSITE_SQLITE"},
		},
		&cli.StringFlag{
			Name:    "metrics-file",
			Usage:   "Write run counters to this file in Prometheus text format",
			EnvVars: []string{"TWEETSITE_METRICS_FILE"},
		},
	}
}

// loadConfig reads the configured file, or the defaults when there is none,
// and applies any flags that were set.
func loadConfig(ctx *cli.Context) (*config.TomlConfig, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if ctx.IsSet("out") {
		cfg.Output.Dir = ctx.String("out")
	}
	if ctx.IsSet("timezone") {
		cfg.Render.Timezone = ctx.String("timezone")
	}
	if ctx.IsSet("index-unit") {
		cfg.Render.IndexUnit = ctx.String("index-unit")
	}
	if ctx.IsSet("thumb-size") {
		cfg.Render.ThumbSize = ctx.Int("thumb-size")
	}
	if ctx.IsSet("sqlite") {
		cfg.Export.SQLite = ctx.String("sqlite")
	}
	if ctx.IsSet("metrics-file") {
		cfg.Export.MetricsFile = ctx.String("metrics-file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func archiveDirs(ctx *cli.Context) ([]string, error) {
	if ctx.NArg() == 0 {
		return nil, fmt.Errorf("no archive directories given")
	}
	return ctx.Args().Slice(), nil
}

func writeMetrics(cfg *config.TomlConfig, m *metrics.Metrics) error {
	if cfg.Export.MetricsFile == "" {
		return nil
	}
	if err := m.WriteTextfile(cfg.Export.MetricsFile); err != nil {
		return err
	}
	log.WithFields(log.Fields{"file": cfg.Export.MetricsFile}).Info("Wrote metrics")
	return nil
}
