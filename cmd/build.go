/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"tweetsite/archive"
	"tweetsite/db"
	"tweetsite/metrics"
	"tweetsite/posts"
	"tweetsite/site"
)

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Build the static site from archive directories",
		ArgsUsage: "<archive dir> [archive dir...]",
		Description: `Reads every archive directory given, checks they belong to the same
account and writes the site to the output directory:

  tweets.txt          plain text digest
  index.html          list of posts
  status/<id>.html    one page per post
  media/              copies of attached media
  media_thumbs/       thumbnails of attached media

Reposts, quote posts and @-messages are left out of the digest and the
index by default but still get their own page.`,
		Flags: append(append(renderFlags(), outputFlags()...),
			&cli.IntFlag{
				Name:    "thumb-size",
				Usage:   "Largest thumbnail width or height in pixels",
				EnvVars: []string{"TWEETSITE_THUMB_SIZE"},
			},
		),
		Action: func(ctx *cli.Context) error {
			dirs, err := archiveDirs(ctx)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
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

			writer, err := site.New(cfg.Site(), m)
			if err != nil {
				return err
			}
			all := collection.Posts.Sorted()
			if err := writer.Build(collection.Account, all, cfg.PostFilter(), collection); err != nil {
				return err
			}

			if path := cfg.SQLitePath(); path != "" {
				if err := db.Export(ctx.Context, path, all, m); err != nil {
					return err
				}
			}

			log.WithFields(log.Fields{
				"dir":     cfg.Output.Dir,
				"posts":   len(all),
				"replies": lo.CountBy(all, func(p *posts.Post) bool { return p.IsReply() }),
			}).Info("Site built")

			return writeMetrics(cfg, m)
		},
	}
}
