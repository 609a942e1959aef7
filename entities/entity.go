// Package entities holds the annotated spans of a post's text and the
// machinery that substitutes them when rendering plain text or markup.
package entities

import (
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ProfileBaseURL is the prefix of every profile and permalink URL the
// archive refers to.
const ProfileBaseURL = "https://twitter.com/"

type Kind int

const (
	KindLink Kind = iota
	KindMention
	KindMedia
)

func (k Kind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindMention:
		return "mention"
	case KindMedia:
		return "media"
	default:
		return "unknown"
	}
}

// Entity is one annotated span of a post's text. The set of implementations
// is closed: Link, Mention and Media.
type Entity interface {
	Kind() Kind
	Span() Span
	// Text is the plain text that replaces the span.
	Text() string
	// Markup returns freshly built nodes that replace the span.
	Markup(rc RenderContext) []*html.Node

	sealed()
}

// Paths names the output directories, relative to the site root.
type Paths struct {
	Posts  string
	Media  string
	Thumbs string
}

func DefaultPaths() Paths {
	return Paths{
		Posts:  "status",
		Media:  "media",
		Thumbs: "media_thumbs",
	}
}

// RenderContext tells markup rendering where the page being built lives.
// Depth is the number of parent-directory steps from the page to the site
// root: 0 for the index, 1 for a page under Paths.Posts.
type RenderContext struct {
	Depth int
	Paths Paths
}

// Rel returns a link from the current page to file inside dir.
func (rc RenderContext) Rel(dir, file string) string {
	return strings.Repeat("../", max(rc.Depth, 0)) + path.Join(dir, file)
}

// ProfileURL returns the profile page of a handle
func ProfileURL(handle string) string {
	return ProfileBaseURL + handle
}

// PermalinkURL returns the canonical URL of a post by handle
func PermalinkURL(handle string, postID int64) string {
	return ProfileBaseURL + handle + "/status/" + itoa(postID)
}

// Element builds an element node; attrs are key/value pairs.
func Element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// TextNode builds a text node. Escaping happens when the tree is rendered.
func TextNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// RenderNodes serialises nodes to a markup string
func RenderNodes(nodes ...*html.Node) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
