/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"tweetsite/archive"
	"tweetsite/db"
	"tweetsite/metrics"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export the posts of archive directories to SQLite",
		ArgsUsage: "<archive dir> [archive dir...]",
		Description: `Writes every post, with its links, mentions and media, to a SQLite
database without building the site. An existing database at the same path
is replaced. The schema is created with embedded migrations.`,
		Flags: append(renderFlags(), outputFlags()...),
		Action: func(ctx *cli.Context) error {
			dirs, err := archiveDirs(ctx)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			path := cfg.SQLitePath()
			if path == "" {
				return errors.New("no SQLite database configured, use --sqlite")
			}
			opts, err := cfg.PostOptions()
			if err != nil {
				return err
			}

			m := metrics.New()
			collection, err := archive.Collate(dirs, opts, m)
			if err != nil {
				return err
			}
			if err := db.Export(ctx.Context, path, collection.Posts.Sorted(), m); err != nil {
				return err
			}

			reader, err := db.NewReader(path)
			if err != nil {
				return err
			}
			defer reader.Close()

			years, err := reader.PostCountPerYear(ctx.Context)
			if err != nil {
				return err
			}
			for _, y := range years {
				log.WithFields(log.Fields{
					"year":  y.Year,
					"posts": y.Count,
				}).Info("Exported year")
			}

			return writeMetrics(cfg, m)
		},
	}
}
