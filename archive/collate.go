package archive

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"tweetsite/entities"
	"tweetsite/metrics"
	"tweetsite/models"
	"tweetsite/posts"
)

// Collection is the union of one account's archives
type Collection struct {
	Account  models.Account
	Posts    *posts.Collection
	Archives []*Archive
}

// Collate loads every directory, checks they belong to the same account and
// merges their posts. Nothing is written, so a mismatch leaves no output.
func Collate(dirs []string, opts posts.Options, m *metrics.Metrics) (*Collection, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w: no archive directories given", ErrNoTweetData)
	}

	c := &Collection{Posts: posts.NewCollection()}
	for i, dir := range dirs {
		a, err := Load(dir)
		if err != nil {
			return nil, err
		}
		m.ArchivesLoaded.Inc()

		if i == 0 {
			c.Account = a.Account
		} else if a.Account.AccountID != c.Account.AccountID {
			return nil, fmt.Errorf("%w: %s is %s (%s), expected %s (%s)", ErrUserMismatch,
				dir, a.Account.Username, a.Account.AccountID,
				c.Account.Username, c.Account.AccountID)
		}
		c.Archives = append(c.Archives, a)

		for _, t := range a.Tweets {
			p, err := posts.New(t, opts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", dir, err)
			}
			m.PostsLoaded.Inc()
			if c.Posts.Add(p) == 0 {
				m.PostsDuplicate.Inc()
			}
		}
	}

	log.WithFields(log.Fields{
		"archives": len(c.Archives),
		"posts":    c.Posts.Len(),
		"account":  c.Account.Username,
	}).Info("Collated archives")

	return c, nil
}

// MediaSource looks for m in each archive in the order they were given
func (c *Collection) MediaSource(m *entities.Media) (string, bool) {
	for _, a := range c.Archives {
		if p, ok := a.MediaSource(m); ok {
			return p, true
		}
	}
	return "", false
}
