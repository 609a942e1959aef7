package entities

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Repairer substitutes entities into the original text of a post.
//
// Every span points into the original text, so substitutions run from the
// rightmost span to the leftmost: a replacement only ever changes the part of
// the string to the right of the spans still waiting to be applied.
//
// Media spans are always cut. The assets are rendered after the text, one
// block per media entity.
type Repairer struct{}

// Text returns the text with links expanded, mentions normalised and media
// references removed.
func (r Repairer) Text(text string, ents []Entity) (string, error) {
	runes := []rune(text)
	ordered, err := prepare(runes, ents)
	if err != nil {
		return "", err
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		sp := ordered[i].Span()
		repl := []rune(ordered[i].Text())
		joined := make([]rune, 0, sp.Start+len(repl)+len(runes)-sp.End)
		joined = append(joined, runes[:sp.Start]...)
		joined = append(joined, repl...)
		runes = append(joined, runes[sp.End:]...)
	}
	return string(runes), nil
}

// Markup returns the text as a list of sibling nodes with every entity
// replaced by its markup. Character references already present in the
// archive text (&amp; and friends) are decoded so that rendering escapes
// each character exactly once.
func (r Repairer) Markup(text string, ents []Entity, rc RenderContext) ([]*html.Node, error) {
	head := []rune(text)
	ordered, err := prepare(head, ents)
	if err != nil {
		return nil, err
	}

	var tail []*html.Node
	for i := len(ordered) - 1; i >= 0; i-- {
		e := ordered[i]
		sp := e.Span()

		var frag []*html.Node
		if _, isMedia := e.(*Media); !isMedia {
			frag = e.Markup(rc)
		}
		frag = append(frag, textNodes(string(head[sp.End:]))...)
		tail = append(frag, tail...)
		head = head[:sp.Start]
	}
	return append(textNodes(string(head)), tail...), nil
}

// MarkupString is Markup serialised to a string
func (r Repairer) MarkupString(text string, ents []Entity, rc RenderContext) (string, error) {
	nodes, err := r.Markup(text, ents, rc)
	if err != nil {
		return "", err
	}
	return RenderNodes(nodes...)
}

// prepare orders a copy of ents by span and checks that every span fits the
// text and that no two spans overlap. Media entities sharing one span (the
// photos of a multi-photo post all point at the same link) are kept once.
func prepare(text []rune, ents []Entity) ([]Entity, error) {
	sorted := slices.Clone(ents)
	slices.SortStableFunc(sorted, func(a, b Entity) int {
		if n := cmp.Compare(a.Span().Start, b.Span().Start); n != 0 {
			return n
		}
		return cmp.Compare(a.Span().End, b.Span().End)
	})

	ordered := make([]Entity, 0, len(sorted))
	mediaSpans := make(map[Span]bool)
	var widest Entity
	for _, e := range sorted {
		sp := e.Span()
		if sp.Start < 0 || sp.Start > sp.End {
			return nil, fmt.Errorf("%w: %s %s", ErrMalformedEntity, e.Kind(), sp)
		}
		if sp.End > len(text) {
			return nil, fmt.Errorf("%w: %s %s exceeds text length %d", ErrIndexOutOfRange, e.Kind(), sp, len(text))
		}
		if _, isMedia := e.(*Media); isMedia {
			if mediaSpans[sp] {
				continue
			}
			mediaSpans[sp] = true
		}
		if widest != nil && widest.Span().Overlaps(sp) {
			return nil, fmt.Errorf("%w: %s %s and %s %s", ErrOverlappingEntity, widest.Kind(), widest.Span(), e.Kind(), sp)
		}
		if widest == nil || sp.End >= widest.Span().End {
			widest = e
		}
		ordered = append(ordered, e)
	}
	return ordered, nil
}

// textNodes turns left-over archive text into text nodes, with line breaks
// as <br> elements.
func textNodes(s string) []*html.Node {
	if s == "" {
		return nil
	}
	s = html.UnescapeString(s)
	var nodes []*html.Node
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			nodes = append(nodes, Element(atom.Br))
		}
		if line != "" {
			nodes = append(nodes, TextNode(line))
		}
	}
	return nodes
}
