package models

import (
	"bytes"
	"fmt"
	"strconv"
)

// FlexInt decodes integers the archive writes either as JSON numbers or as
// numeric strings
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", b, err)
	}
	*f = FlexInt(v)
	return nil
}

func (f FlexInt) Int64() int64 {
	return int64(f)
}

// Ints converts an index list to plain ints
func Ints(values []FlexInt) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}

// TweetRecord is one element of the tweets.js array
type TweetRecord struct {
	Tweet Tweet `json:"tweet"`
}

// Tweet is a decoded archive post with key fields from the export
type Tweet struct {
	ID                  FlexInt           `json:"id"`
	IDStr               string            `json:"id_str"`
	FullText            string            `json:"full_text"`
	CreatedAt           string            `json:"created_at"`
	Source              string            `json:"source"`
	FavoriteCount       FlexInt           `json:"favorite_count"`
	RetweetCount        FlexInt           `json:"retweet_count"`
	InReplyToStatusID   *FlexInt          `json:"in_reply_to_status_id,omitempty"`
	InReplyToScreenName *string           `json:"in_reply_to_screen_name,omitempty"`
	InReplyToUserID     *FlexInt          `json:"in_reply_to_user_id,omitempty"`
	Entities            Entities          `json:"entities"`
	ExtendedEntities    *ExtendedEntities `json:"extended_entities,omitempty"`
}

// PostID prefers id_str and falls back to id
func (t Tweet) PostID() (int64, error) {
	if t.IDStr != "" {
		id, err := strconv.ParseInt(t.IDStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid id_str %q: %w", t.IDStr, err)
		}
		return id, nil
	}
	if t.ID == 0 {
		return 0, fmt.Errorf("tweet has no id")
	}
	return t.ID.Int64(), nil
}

// MediaList returns the extended media annotations, which carry every
// attached asset, or nil when the post has none
func (t Tweet) MediaList() []Media {
	if t.ExtendedEntities == nil {
		return nil
	}
	return t.ExtendedEntities.Media
}

type Entities struct {
	URLs         []URL         `json:"urls"`
	UserMentions []UserMention `json:"user_mentions"`
	Media        []Media       `json:"media,omitempty"`
}

type ExtendedEntities struct {
	Media []Media `json:"media"`
}

type URL struct {
	URL         string    `json:"url"`
	ExpandedURL string    `json:"expanded_url"`
	DisplayURL  string    `json:"display_url"`
	Indices     []FlexInt `json:"indices"`
}

type UserMention struct {
	ID         FlexInt   `json:"id"`
	ScreenName string    `json:"screen_name"`
	Name       string    `json:"name"`
	Indices    []FlexInt `json:"indices"`
}

type Media struct {
	ID            FlexInt   `json:"id"`
	MediaURLHTTPS string    `json:"media_url_https"`
	URL           string    `json:"url"`
	ExpandedURL   string    `json:"expanded_url"`
	DisplayURL    string    `json:"display_url"`
	Type          string    `json:"type"`
	Indices       []FlexInt `json:"indices"`
}

// AccountRecord is one element of the account.js array
type AccountRecord struct {
	Account Account `json:"account"`
}

type Account struct {
	AccountID          string `json:"accountId"`
	Username           string `json:"username"`
	AccountDisplayName string `json:"accountDisplayName"`
	CreatedAt          string `json:"createdAt"`
}
