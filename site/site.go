// Package site writes the static output: a plain text digest, an index page,
// one page per post, and copies of the archive's media with thumbnails.
package site

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"tweetsite/entities"
	"tweetsite/metrics"
	"tweetsite/models"
	"tweetsite/posts"
)

type Config struct {
	Dir       string
	Paths     entities.Paths
	TextFile  string
	IndexFile string
	// Title heads the index page. Defaults to the account's handle.
	Title     string
	ThumbSize int
}

// MediaLocator finds the archive copy of a media entity
type MediaLocator interface {
	MediaSource(m *entities.Media) (string, bool)
}

type Writer struct {
	cfg     Config
	metrics *metrics.Metrics
	pages   *pageTemplates
}

func New(cfg Config, m *metrics.Metrics) (*Writer, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("output directory not set")
	}
	pages, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Writer{cfg: cfg, metrics: m, pages: pages}, nil
}

// Build writes the whole site. Every post gets a page; only posts the
// filter keeps appear in the digest and the index.
func (w *Writer) Build(account models.Account, all []*posts.Post, filter posts.Filter, media MediaLocator) error {
	for _, dir := range []string{w.cfg.Dir, w.dir(w.cfg.Paths.Posts), w.dir(w.cfg.Paths.Media), w.dir(w.cfg.Paths.Thumbs)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	if err := w.CopyMedia(all, media); err != nil {
		return err
	}

	listed := make([]*posts.Post, 0, len(all))
	for _, p := range all {
		if reason := filter.Reason(p); reason != "" {
			w.metrics.PostsFiltered.WithLabelValues(reason).Inc()
			continue
		}
		listed = append(listed, p)
	}

	log.WithFields(log.Fields{
		"posts":  len(all),
		"listed": len(listed),
		"dir":    w.cfg.Dir,
	}).Info("Writing site")

	if err := w.WriteText(listed); err != nil {
		return err
	}
	if err := w.WriteIndex(account, listed); err != nil {
		return err
	}
	return w.WritePages(account, all)
}

// WriteText writes the plain text digest: one block per post, separated by
// blank lines.
func (w *Writer) WriteText(ps []*posts.Post) error {
	blocks := make([]string, 0, len(ps))
	for _, p := range ps {
		s, err := p.RenderText()
		if err != nil {
			return err
		}
		blocks = append(blocks, s)
		w.metrics.PostsRendered.WithLabelValues("text").Inc()
	}

	target := w.dir(w.cfg.TextFile)
	if err := os.WriteFile(target, []byte(strings.Join(blocks, "\n\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("error writing text digest: %w", err)
	}
	log.WithFields(log.Fields{"file": target, "posts": len(ps)}).Info("Wrote text digest")
	return nil
}

// renderContext returns the context for a page in dir, relative to the
// site root.
func (w *Writer) renderContext(dir string) entities.RenderContext {
	depth := 0
	if dir = path.Clean(dir); dir != "." && dir != "" {
		depth = strings.Count(dir, "/") + 1
	}
	return entities.RenderContext{Depth: depth, Paths: w.cfg.Paths}
}

func (w *Writer) dir(rel string) string {
	return filepath.Join(w.cfg.Dir, filepath.FromSlash(rel))
}
