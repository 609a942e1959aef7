package entities

import (
	"path"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is a shortened URL annotated with its expansion
type Link struct {
	span        Span
	TargetURL   string
	ShortURL    string
	DisplayText string
}

func NewLink(span Span, target, short, display string) *Link {
	return &Link{span: span, TargetURL: target, ShortURL: short, DisplayText: display}
}

func (l *Link) Kind() Kind   { return KindLink }
func (l *Link) Span() Span   { return l.span }
func (l *Link) Text() string { return l.TargetURL }
func (l *Link) sealed()      {}

func (l *Link) Markup(RenderContext) []*html.Node {
	a := Element(atom.A, "href", l.TargetURL)
	a.AppendChild(TextNode(l.DisplayText))
	return []*html.Node{a}
}

// Mention is an @-reference to another account
type Mention struct {
	span        Span
	Handle      string
	UserID      int64
	DisplayName string
}

func NewMention(span Span, handle string, userID int64, displayName string) *Mention {
	return &Mention{span: span, Handle: handle, UserID: userID, DisplayName: displayName}
}

func (m *Mention) Kind() Kind   { return KindMention }
func (m *Mention) Span() Span   { return m.span }
func (m *Mention) Text() string { return "@" + m.Handle }
func (m *Mention) sealed()      {}

func (m *Mention) Markup(RenderContext) []*html.Node {
	a := Element(atom.A, "href", ProfileURL(m.Handle), "class", "at_handle")
	a.AppendChild(TextNode(m.Text()))
	return []*html.Node{a}
}

// Media is an embedded image or video. Its span holds the shortened link the
// archive appends to the text; the asset itself is shown separately.
type Media struct {
	span      Span
	ID        int64
	OriginURL string
	PostID    int64
	// Name and Ext are the stem and lowercased suffix (with dot) of the
	// origin URL's path.
	Name string
	Ext  string
}

func NewMedia(span Span, id int64, originURL string, postID int64) *Media {
	name, ext := splitAssetName(originURL)
	return &Media{
		span:      span,
		ID:        id,
		OriginURL: originURL,
		PostID:    postID,
		Name:      name,
		Ext:       ext,
	}
}

func (m *Media) Kind() Kind   { return KindMedia }
func (m *Media) Span() Span   { return m.span }
func (m *Media) Text() string { return "" }
func (m *Media) sealed()      {}

// LocalFilename is the name of the full-size copy in the media directory.
// The copier uses the same name, so the two must never disagree.
func (m *Media) LocalFilename() string {
	return itoa(m.PostID) + "-" + m.Name + m.Ext
}

// ThumbnailFilename is the name of the resized copy in the thumbs directory
func (m *Media) ThumbnailFilename() string {
	return itoa(m.PostID) + "-" + m.Name + "-thumb" + m.Ext
}

func (m *Media) Markup(rc RenderContext) []*html.Node {
	img := Element(atom.Img, "src", rc.Rel(rc.Paths.Thumbs, m.ThumbnailFilename()), "class", "thumb")
	a := Element(atom.A, "href", rc.Rel(rc.Paths.Media, m.LocalFilename()))
	a.AppendChild(img)
	container := Element(atom.Div, "class", "media-container")
	container.AppendChild(a)
	return []*html.Node{container}
}

// splitAssetName returns the stem and lowercased extension of a URL's path
func splitAssetName(rawURL string) (string, string) {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	base := path.Base(p)
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext), strings.ToLower(ext)
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}

var _ Entity = (*Link)(nil)
var _ Entity = (*Mention)(nil)
var _ Entity = (*Media)(nil)
