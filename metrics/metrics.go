// Package metrics counts what a run did and can leave the totals behind as a
// Prometheus textfile for node_exporter to pick up.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	registry *prometheus.Registry

	ArchivesLoaded prometheus.Counter
	PostsLoaded    prometheus.Counter
	PostsDuplicate prometheus.Counter
	// PostsRendered is labelled by output: text, index or page.
	PostsRendered *prometheus.CounterVec
	// PostsFiltered is labelled by the reason a post left the digest.
	PostsFiltered *prometheus.CounterVec
	MediaCopied   prometheus.Counter
	MediaMissing  prometheus.Counter
	ThumbsWritten prometheus.Counter
	ThumbsFailed  prometheus.Counter
	// RowsExported is labelled by table.
	RowsExported *prometheus.CounterVec
}

// New registers a fresh set of counters on their own registry so separate
// runs in one process never share totals.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ArchivesLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "tweetsite_archives_loaded_total",
			Help: "The total number of archive directories read",
		}),
		PostsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "tweetsite_posts_loaded_total",
			Help: "The total number of posts decoded from archive files",
		}),
		PostsDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Name: "tweetsite_posts_duplicate_total",
			Help: "Posts seen in more than one archive and kept once",
		}),
		PostsRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tweetsite_posts_rendered_total",
			Help: "Posts rendered, by output",
		}, []string{"output"}),
		PostsFiltered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tweetsite_posts_filtered_total",
			Help: "Posts left out of the digest and index, by reason",
		}, []string{"reason"}),
		MediaCopied: factory.NewCounter(prometheus.CounterOpts{
			Name: "tweetsite_media_copied_total",
			Help: "Media files copied into the site",
		}),
		MediaMissing: factory.NewCounter(prometheus.CounterOpts{
			Name: "tweetsite_media_missing_total",
			Help: "Media referenced by a post but absent from the archive",
		}),
		ThumbsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "tweetsite_thumbnails_written_total",
			Help: "Thumbnails generated",
		}),
		ThumbsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "tweetsite_thumbnails_failed_total",
			Help: "Media files that could not be decoded for a thumbnail",
		}),
		RowsExported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tweetsite_rows_exported_total",
			Help: "Rows written to the SQLite export, by table",
		}, []string{"table"}),
	}
}

// WriteTextfile writes every counter to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("error writing metrics textfile: %w", err)
	}
	return nil
}
