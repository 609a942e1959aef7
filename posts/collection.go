package posts

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// Collection holds posts gathered from one or more archives, keeping the
// first copy of each id.
type Collection struct {
	byID map[int64]*Post
}

func NewCollection() *Collection {
	return &Collection{byID: make(map[int64]*Post)}
}

// Add stores posts not seen before and returns how many were new
func (c *Collection) Add(ps ...*Post) int {
	added := 0
	for _, p := range ps {
		if _, ok := c.byID[p.ID]; ok {
			continue
		}
		c.byID[p.ID] = p
		added++
	}
	return added
}

func (c *Collection) Len() int {
	return len(c.byID)
}

func (c *Collection) Get(id int64) (*Post, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Sorted returns every post, newest first. Equal timestamps fall back to
// descending id so the order is stable across runs.
func (c *Collection) Sorted() []*Post {
	out := lo.Values(c.byID)
	slices.SortFunc(out, func(a, b *Post) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

// Filter selects which posts belong in the digest and the index
type Filter struct {
	ExcludeReposts    bool
	ExcludeQuotes     bool
	ExcludeAtMessages bool
}

// Reason names why p is excluded, or returns "" when it is kept
func (f Filter) Reason(p *Post) string {
	switch {
	case f.ExcludeReposts && p.IsRepost():
		return "repost"
	case f.ExcludeQuotes && p.IsQuotePost():
		return "quote"
	case f.ExcludeAtMessages && p.IsAtMessage():
		return "at_message"
	default:
		return ""
	}
}

func (f Filter) Apply(ps []*Post) []*Post {
	return lo.Filter(ps, func(p *Post, _ int) bool {
		return f.Reason(p) == ""
	})
}
