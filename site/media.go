package site

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"

	"tweetsite/posts"
)

// CopyMedia copies every media file the posts reference into the site and
// generates its thumbnail. Missing sources are skipped and files already in
// place are left alone, so repeated builds only do new work.
func (w *Writer) CopyMedia(ps []*posts.Post, media MediaLocator) error {
	for _, p := range ps {
		for _, m := range p.Media() {
			logger := log.WithFields(log.Fields{
				"post":  p.ID,
				"media": m.LocalFilename(),
			})

			src, ok := media.MediaSource(m)
			if !ok {
				logger.Warn("Media file not found in archive")
				w.metrics.MediaMissing.Inc()
				continue
			}

			dst := filepath.Join(w.dir(w.cfg.Paths.Media), m.LocalFilename())
			copied, err := copyIfMissing(src, dst)
			if err != nil {
				return err
			}
			if copied {
				w.metrics.MediaCopied.Inc()
				logger.Debug("Copied media")
			}

			thumb := filepath.Join(w.dir(w.cfg.Paths.Thumbs), m.ThumbnailFilename())
			if exists(thumb) {
				continue
			}
			if err := writeThumbnail(src, thumb, w.cfg.ThumbSize); err != nil {
				// Videos and animated GIF stand-ins have no decodable still.
				logger.WithError(err).Warn("Could not generate thumbnail")
				w.metrics.ThumbsFailed.Inc()
				continue
			}
			w.metrics.ThumbsWritten.Inc()
		}
	}
	return nil
}

// writeThumbnail scales src to fit a size by size box, keeping its aspect
// ratio, and saves it in the format dst's extension names.
func writeThumbnail(src, dst string, size int) error {
	if _, err := imaging.FormatFromFilename(dst); err != nil {
		return err
	}
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	return imaging.Save(imaging.Fit(img, size, size, imaging.Lanczos), dst)
}

func copyIfMissing(src, dst string) (bool, error) {
	if exists(dst) {
		return false, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("error opening media: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return false, fmt.Errorf("error creating media copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, fmt.Errorf("error copying media: %w", err)
	}
	return true, out.Close()
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return !errors.Is(err, fs.ErrNotExist)
}
