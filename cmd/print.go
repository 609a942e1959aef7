/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"tweetsite/archive"
	"tweetsite/metrics"
	"tweetsite/posts"
)

// printedPost is the JSON shape of one post on stdout
type printedPost struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Text       string    `json:"text"`
	Source     string    `json:"source,omitempty"`
	Favourites int       `json:"favourites"`
	Reposts    int       `json:"reposts"`
	ReplyTo    *int64    `json:"reply_to,omitempty"`
	Links      []string  `json:"links,omitempty"`
	Mentions   []string  `json:"mentions,omitempty"`
	Media      []string  `json:"media,omitempty"`
}

func printCmd() *cli.Command {
	return &cli.Command{
		Name:      "print",
		Usage:     "Print the posts of archive directories to stdout",
		ArgsUsage: "<archive dir> [archive dir...]",
		Description: `Prints the repaired text of every post the filter keeps, newest
first, without writing a site.

With --format json each post is a JSON object on a single line. Use a tool
like jq to process the output.

Prints all log messages to stderr.`,
		Flags: append(renderFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text or json",
				EnvVars: []string{"TWEETSITE_FORMAT"},
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include reposts, quote posts and @-messages",
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

			collection, err := archive.Collate(dirs, opts, metrics.New())
			if err != nil {
				return err
			}

			ps := collection.Posts.Sorted()
			if !ctx.Bool("all") {
				ps = cfg.PostFilter().Apply(ps)
			}

			switch ctx.String("format") {
			case "text":
				return printText(ctx.App.Writer, ps)
			case "json":
				return printJSON(ctx.App.Writer, ps)
			default:
				return fmt.Errorf("unknown format %q", ctx.String("format"))
			}
		},
	}
}

func printText(w io.Writer, ps []*posts.Post) error {
	for i, p := range ps {
		s, err := p.RenderText()
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, s)
	}
	return nil
}

func printJSON(w io.Writer, ps []*posts.Post) error {
	enc := json.NewEncoder(w)
	for _, p := range ps {
		text, err := p.RepairedText()
		if err != nil {
			return err
		}
		out := printedPost{
			ID:         p.ID,
			CreatedAt:  p.CreatedAt,
			Text:       text,
			Source:     p.Source,
			Favourites: p.Favourites,
			Reposts:    p.Reposts,
			ReplyTo:    p.ReplyToPostID,
		}
		for _, l := range p.Links() {
			out.Links = append(out.Links, l.TargetURL)
		}
		for _, m := range p.Mentions() {
			out.Mentions = append(out.Mentions, m.Handle)
		}
		for _, m := range p.Media() {
			out.Media = append(out.Media, m.OriginURL)
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
