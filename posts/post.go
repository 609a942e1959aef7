// Package posts models archived posts: their classification, rendering and
// the collection that de-duplicates and orders them.
package posts

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"

	"tweetsite/entities"
	"tweetsite/models"
)

const repostMarker = "RT @"

// Options controls how archive records become posts
type Options struct {
	// Location is the timezone timestamps are shown in.
	Location *time.Location
	// Unit is the unit entity indices were counted in by the exporter.
	Unit entities.IndexUnit
	// PermalinkPrefixes identify links that point at another post of the
	// archive's own service; a trailing one makes a quote post.
	PermalinkPrefixes []string
}

func DefaultOptions() Options {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}
	return Options{
		Location:          loc,
		Unit:              entities.CodePoints,
		PermalinkPrefixes: []string{"https://twitter.com/", "https://x.com/"},
	}
}

// Post is one archived message. It is immutable once built and identified
// by ID alone.
type Post struct {
	ID              int64
	RawText         string
	CreatedAt       time.Time
	Source          string
	Favourites      int
	Reposts         int
	ReplyToPostID   *int64
	ReplyToUsername string
	ReplyToUserID   *int64
	// Entities are ordered by span start.
	Entities []entities.Entity

	textLen  int
	lastLink *entities.Link
	quote    bool
}

// New builds a post from a decoded archive record
func New(t models.Tweet, opts Options) (*Post, error) {
	id, err := t.PostID()
	if err != nil {
		return nil, err
	}

	createdAt, err := parseTime(t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	if opts.Location != nil {
		createdAt = createdAt.In(opts.Location)
	}

	ents, err := entities.Extractor{Unit: opts.Unit}.Extract(id, t.FullText, entities.Annotations{
		Links:    t.Entities.URLs,
		Mentions: t.Entities.UserMentions,
		Media:    t.MediaList(),
	})
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}

	p := &Post{
		ID:         id,
		RawText:    t.FullText,
		CreatedAt:  createdAt,
		Source:     SourceLabel(t.Source),
		Favourites: int(t.FavoriteCount),
		Reposts:    int(t.RetweetCount),
		Entities:   ents,
		textLen:    len([]rune(t.FullText)),
	}
	if t.InReplyToStatusID != nil {
		p.ReplyToPostID = lo.ToPtr(t.InReplyToStatusID.Int64())
	}
	if t.InReplyToUserID != nil {
		p.ReplyToUserID = lo.ToPtr(t.InReplyToUserID.Int64())
	}
	if t.InReplyToScreenName != nil {
		p.ReplyToUsername = *t.InReplyToScreenName
	}

	links := p.Links()
	if len(links) > 0 {
		p.lastLink = links[len(links)-1]
	}
	p.quote = p.lastLink != nil &&
		p.lastLink.Span().End == p.textLen &&
		lo.SomeBy(opts.PermalinkPrefixes, func(prefix string) bool {
			return strings.HasPrefix(p.lastLink.TargetURL, prefix)
		})

	return p, nil
}

// IsRepost handles both old-style manual and new-style native reposts
func (p *Post) IsRepost() bool {
	return strings.Contains(p.RawText, repostMarker)
}

// IsReply is true for posts answering a specific post
func (p *Post) IsReply() bool {
	return p.ReplyToPostID != nil
}

// IsAtMessage is true for any post addressed to another user, whether or
// not it answers a specific post.
func (p *Post) IsAtMessage() bool {
	return p.ReplyToUserID != nil
}

// IsQuotePost is true when the text ends with a link to another post
func (p *Post) IsQuotePost() bool {
	return p.quote
}

func (p *Post) Links() []*entities.Link {
	return lo.FilterMap(p.Entities, func(e entities.Entity, _ int) (*entities.Link, bool) {
		l, ok := e.(*entities.Link)
		return l, ok
	})
}

func (p *Post) Mentions() []*entities.Mention {
	return lo.FilterMap(p.Entities, func(e entities.Entity, _ int) (*entities.Mention, bool) {
		m, ok := e.(*entities.Mention)
		return m, ok
	})
}

func (p *Post) Media() []*entities.Media {
	return lo.FilterMap(p.Entities, func(e entities.Entity, _ int) (*entities.Media, bool) {
		m, ok := e.(*entities.Media)
		return m, ok
	})
}

// parseTime reads the archive's RubyDate timestamps and falls back to
// dateparse for exports that used other layouts.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RubyDate, s); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_at %q: %w", s, err)
	}
	return t, nil
}
