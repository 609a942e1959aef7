package entities

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"tweetsite/models"
)

// IndexUnit is the unit the archive exporter counted entity indices in
type IndexUnit int

const (
	CodePoints IndexUnit = iota
	UTF16Units
)

func ParseIndexUnit(s string) (IndexUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "codepoint", "codepoints", "rune", "runes":
		return CodePoints, nil
	case "utf16", "utf-16":
		return UTF16Units, nil
	default:
		return CodePoints, fmt.Errorf("unknown index unit %q", s)
	}
}

func (u IndexUnit) String() string {
	if u == UTF16Units {
		return "utf16"
	}
	return "codepoint"
}

// Annotations are the three independent annotation lists of one post. Any
// of them may be nil.
type Annotations struct {
	Links    []models.URL
	Mentions []models.UserMention
	Media    []models.Media
}

// Extractor turns raw annotations into entities with code point spans
type Extractor struct {
	Unit IndexUnit
}

// Extract builds the entities of post postID, ordered by span start. Ties
// keep input order: links, then mentions, then media.
func (x Extractor) Extract(postID int64, text string, ann Annotations) ([]Entity, error) {
	conv := x.converter(text)
	out := make([]Entity, 0, len(ann.Links)+len(ann.Mentions)+len(ann.Media))

	for i, u := range ann.Links {
		span, err := conv(u.Indices)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		out = append(out, NewLink(span, u.ExpandedURL, u.URL, u.DisplayURL))
	}

	for i, m := range ann.Mentions {
		span, err := conv(m.Indices)
		if err != nil {
			return nil, fmt.Errorf("mention %d: %w", i, err)
		}
		if m.ScreenName == "" {
			return nil, fmt.Errorf("mention %d: %w: missing screen name", i, ErrMalformedEntity)
		}
		out = append(out, NewMention(span, m.ScreenName, m.ID.Int64(), m.Name))
	}

	for i, m := range ann.Media {
		span, err := conv(m.Indices)
		if err != nil {
			return nil, fmt.Errorf("media %d: %w", i, err)
		}
		if m.MediaURLHTTPS == "" {
			return nil, fmt.Errorf("media %d: %w: missing media url", i, ErrMalformedEntity)
		}
		out = append(out, NewMedia(span, m.ID.Int64(), m.MediaURLHTTPS, postID))
	}

	slices.SortStableFunc(out, func(a, b Entity) int {
		return cmp.Compare(a.Span().Start, b.Span().Start)
	})
	return out, nil
}

type spanConverter func(indices []models.FlexInt) (Span, error)

func (x Extractor) converter(text string) spanConverter {
	if x.Unit != UTF16Units {
		return func(indices []models.FlexInt) (Span, error) {
			return SpanFromIndices(models.Ints(indices))
		}
	}

	// Map every UTF-16 offset to the code point offset it falls on; offsets
	// inside a surrogate pair map to -1.
	runes := []rune(text)
	toRune := make([]int, 0, len(runes)+1)
	for i, r := range runes {
		toRune = append(toRune, i)
		if r > 0xFFFF {
			toRune = append(toRune, -1)
		}
	}
	toRune = append(toRune, len(runes))

	return func(indices []models.FlexInt) (Span, error) {
		raw, err := SpanFromIndices(models.Ints(indices))
		if err != nil {
			return Span{}, err
		}
		if raw.End >= len(toRune) {
			return Span{}, fmt.Errorf("%w: %s exceeds %d UTF-16 units", ErrIndexOutOfRange, raw, len(toRune)-1)
		}
		start, end := toRune[raw.Start], toRune[raw.End]
		if start < 0 || end < 0 {
			return Span{}, fmt.Errorf("%w: %s splits a surrogate pair", ErrMalformedEntity, raw)
		}
		return Span{Start: start, End: end}, nil
	}
}
