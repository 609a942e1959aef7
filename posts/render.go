package posts

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"tweetsite/entities"
)

// RepairedText is the post text with links expanded and media references
// removed
func (p *Post) RepairedText() (string, error) {
	s, err := entities.Repairer{}.Text(p.RawText, p.Entities)
	if err != nil {
		return "", fmt.Errorf("post %d: %w", p.ID, err)
	}
	return s, nil
}

// RenderText returns the repaired text followed by a metadata line
func (p *Post) RenderText() (string, error) {
	body, err := p.RepairedText()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n(")
	b.WriteString(FormatTimestamp(p.CreatedAt))
	if p.IsReply() {
		fmt.Fprintf(&b, ", in reply to %s: %d", p.ReplyToUsername, *p.ReplyToPostID)
	}
	b.WriteString(")")
	return b.String(), nil
}

// PagePath is the post's own page relative to the site root
func (p *Post) PagePath(paths entities.Paths) string {
	return paths.Posts + "/" + strconv.FormatInt(p.ID, 10) + ".html"
}

// RenderMarkup builds the post block for a page rc.Depth levels below the
// site root.
func (p *Post) RenderMarkup(rc entities.RenderContext) (*html.Node, error) {
	body, err := entities.Repairer{}.Markup(p.RawText, p.Entities, rc)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", p.ID, err)
	}

	post := entities.Element(atom.Div, "class", "tweet", "id", "tweet"+strconv.FormatInt(p.ID, 10))

	date := entities.Element(atom.Div, "class", "timestamp")
	link := entities.Element(atom.A, "href", rc.Rel(rc.Paths.Posts, strconv.FormatInt(p.ID, 10)+".html"))
	link.AppendChild(entities.TextNode(FormatTimestamp(p.CreatedAt)))
	date.AppendChild(link)
	post.AppendChild(date)

	// Bare @-messages get no note; only answers to a specific post do.
	if p.IsReply() {
		note := entities.Element(atom.Div, "class", "reply-note")
		para := entities.Element(atom.P)
		para.AppendChild(entities.TextNode("In reply to "))
		to := entities.Element(atom.A, "href", entities.PermalinkURL(p.ReplyToUsername, *p.ReplyToPostID))
		to.AppendChild(entities.TextNode("@" + p.ReplyToUsername))
		para.AppendChild(to)
		note.AppendChild(para)
		post.AppendChild(note)
	}

	text := entities.Element(atom.P)
	for _, n := range body {
		text.AppendChild(n)
	}
	post.AppendChild(text)

	for _, m := range p.Media() {
		for _, n := range m.Markup(rc) {
			post.AppendChild(n)
		}
	}
	return post, nil
}

// RenderMarkupString is RenderMarkup serialised
func (p *Post) RenderMarkupString(rc entities.RenderContext) (string, error) {
	n, err := p.RenderMarkup(rc)
	if err != nil {
		return "", err
	}
	return entities.RenderNodes(n)
}
