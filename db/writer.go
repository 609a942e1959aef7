package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"tweetsite/entities"
	"tweetsite/metrics"
	"tweetsite/posts"
)

// Export writes posts and their entities to a fresh SQLite database at
// path, replacing any earlier export.
func Export(ctx context.Context, path string, ps []*posts.Post, m *metrics.Metrics) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error removing old export: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating export directory: %w", err)
	}
	if err := Migrate(path); err != nil {
		return err
	}

	db, err := connection(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var entityRows, mediaRows int
	for _, p := range ps {
		if err := insertPost(ctx, tx, p); err != nil {
			return fmt.Errorf("post %d: %w", p.ID, err)
		}
		n, err := insertEntities(ctx, tx, p)
		if err != nil {
			return fmt.Errorf("post %d: %w", p.ID, err)
		}
		entityRows += n
		n, err = insertMedia(ctx, tx, p)
		if err != nil {
			return fmt.Errorf("post %d: %w", p.ID, err)
		}
		mediaRows += n
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing export: %w", err)
	}

	m.RowsExported.WithLabelValues("posts").Add(float64(len(ps)))
	m.RowsExported.WithLabelValues("entities").Add(float64(entityRows))
	m.RowsExported.WithLabelValues("media").Add(float64(mediaRows))

	log.WithFields(log.Fields{
		"database": path,
		"posts":    len(ps),
		"entities": entityRows,
		"media":    mediaRows,
	}).Info("Exported posts")

	return nil
}

func insertPost(ctx context.Context, tx *sql.Tx, p *posts.Post) error {
	text, err := p.RepairedText()
	if err != nil {
		return err
	}

	var replyTo, replyUsername any
	if p.ReplyToPostID != nil {
		replyTo = *p.ReplyToPostID
	}
	if p.ReplyToUsername != "" {
		replyUsername = p.ReplyToUsername
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("posts").
		Cols("id", "created_at", "text", "repaired_text", "source", "favourites", "reposts",
			"reply_to_post_id", "reply_to_username", "is_repost", "is_quote", "is_at_message").
		Values(p.ID, p.CreatedAt.Unix(), p.RawText, text, p.Source, p.Favourites, p.Reposts,
			replyTo, replyUsername, flag(p.IsRepost()), flag(p.IsQuotePost()), flag(p.IsAtMessage()))

	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert error: %w", err)
	}
	return nil
}

func insertEntities(ctx context.Context, tx *sql.Tx, p *posts.Post) (int, error) {
	if len(p.Entities) == 0 {
		return 0, nil
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("entities").Cols("post_id", "position", "kind", "start_index", "end_index", "value", "display")
	for i, e := range p.Entities {
		value, display := e.Text(), ""
		switch v := e.(type) {
		case *entities.Link:
			display = v.DisplayText
		case *entities.Mention:
			display = v.DisplayName
		case *entities.Media:
			value = v.OriginURL
		}
		ib.Values(p.ID, i, e.Kind().String(), e.Span().Start, e.Span().End, value, display)
	}

	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert entities error: %w", err)
	}
	return len(p.Entities), nil
}

func insertMedia(ctx context.Context, tx *sql.Tx, p *posts.Post) (int, error) {
	media := p.Media()
	if len(media) == 0 {
		return 0, nil
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("media").Cols("post_id", "position", "media_id", "origin_url", "local_file", "thumb_file")
	for i, m := range media {
		ib.Values(p.ID, i, m.ID, m.OriginURL, m.LocalFilename(), m.ThumbnailFilename())
	}

	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert media error: %w", err)
	}
	return len(media), nil
}

func flag(b bool) int {
	return lo.Ternary(b, 1, 0)
}
