package site

import (
	"embed"
	"fmt"
	"os"

	"github.com/flosch/pongo2/v6"
	log "github.com/sirupsen/logrus"

	"tweetsite/entities"
	"tweetsite/models"
	"tweetsite/posts"
)

//go:embed templates/*
var templateFS embed.FS

type pageTemplates struct {
	index *pongo2.Template
	post  *pongo2.Template
	style string
}

func loadTemplates() (*pageTemplates, error) {
	read := func(name string) (string, error) {
		b, err := templateFS.ReadFile("templates/" + name)
		if err != nil {
			return "", fmt.Errorf("error reading template %s: %w", name, err)
		}
		return string(b), nil
	}

	t := &pageTemplates{}
	for name, dst := range map[string]**pongo2.Template{"index.html": &t.index, "post.html": &t.post} {
		src, err := read(name)
		if err != nil {
			return nil, err
		}
		tpl, err := pongo2.FromString(src)
		if err != nil {
			return nil, fmt.Errorf("error parsing template %s: %w", name, err)
		}
		*dst = tpl
	}

	style, err := read("style.css")
	if err != nil {
		return nil, err
	}
	t.style = style
	return t, nil
}

// WriteIndex writes the list page at the site root
func (w *Writer) WriteIndex(account models.Account, ps []*posts.Post) error {
	rc := w.renderContext(".")
	blocks := make([]string, 0, len(ps))
	for _, p := range ps {
		s, err := p.RenderMarkupString(rc)
		if err != nil {
			return err
		}
		blocks = append(blocks, s)
		w.metrics.PostsRendered.WithLabelValues("index").Inc()
	}

	title := w.cfg.Title
	if title == "" {
		title = "@" + account.Username
	}

	target := w.dir(w.cfg.IndexFile)
	if err := w.execute(w.pages.index, target, pongo2.Context{
		"title":        title,
		"style":        w.pages.style,
		"username":     account.Username,
		"display_name": account.AccountDisplayName,
		"profile_url":  entities.ProfileURL(account.Username),
		"posts":        blocks,
	}); err != nil {
		return err
	}

	log.WithFields(log.Fields{"file": target, "posts": len(ps)}).Info("Wrote index")
	return nil
}

// WritePages writes one page per post under the posts directory
func (w *Writer) WritePages(account models.Account, ps []*posts.Post) error {
	rc := w.renderContext(w.cfg.Paths.Posts)
	for _, p := range ps {
		markup, err := p.RenderMarkupString(rc)
		if err != nil {
			return err
		}

		target := w.dir(p.PagePath(w.cfg.Paths))
		if err := w.execute(w.pages.post, target, pongo2.Context{
			"title":      "@" + account.Username + ": " + posts.FormatTimestamp(p.CreatedAt),
			"style":      w.pages.style,
			"username":   account.Username,
			"index_url":  rc.Rel("", w.cfg.IndexFile),
			"permalink":  entities.PermalinkURL(account.Username, p.ID),
			"post":       markup,
			"source":     p.Source,
			"favourites": p.Favourites,
			"reposts":    p.Reposts,
		}); err != nil {
			return fmt.Errorf("post %d: %w", p.ID, err)
		}
		w.metrics.PostsRendered.WithLabelValues("page").Inc()
	}

	log.WithFields(log.Fields{"dir": w.dir(w.cfg.Paths.Posts), "pages": len(ps)}).Info("Wrote post pages")
	return nil
}

func (w *Writer) execute(tpl *pongo2.Template, target string, ctx pongo2.Context) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", target, err)
	}
	if err := tpl.ExecuteWriter(ctx, f); err != nil {
		f.Close()
		return fmt.Errorf("error rendering %s: %w", target, err)
	}
	return f.Close()
}
