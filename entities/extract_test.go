package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetsite/entities"
	"tweetsite/models"
)

func idx(a, b int) []models.FlexInt {
	return []models.FlexInt{models.FlexInt(a), models.FlexInt(b)}
}

func TestExtractOrdersByStartThenKind(t *testing.T) {
	text := "@zed https://t.co/l https://t.co/m"
	ann := entities.Annotations{
		Links: []models.URL{
			{URL: "https://t.co/l", ExpandedURL: "https://example.com", DisplayURL: "example.com", Indices: idx(5, 19)},
		},
		Mentions: []models.UserMention{
			{ID: 11, ScreenName: "zed", Name: "Zed", Indices: idx(0, 4)},
		},
		Media: []models.Media{
			{ID: 5, MediaURLHTTPS: "https://pbs.twimg.com/media/FooBar.PNG", Indices: idx(20, 34)},
		},
	}

	got, err := entities.Extractor{}.Extract(1234, text, ann)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, entities.KindMention, got[0].Kind())
	assert.Equal(t, entities.KindLink, got[1].Kind())
	assert.Equal(t, entities.KindMedia, got[2].Kind())

	media := got[2].(*entities.Media)
	assert.Equal(t, "FooBar", media.Name)
	assert.Equal(t, ".png", media.Ext)
	assert.Equal(t, "1234-FooBar.png", media.LocalFilename())
	assert.Equal(t, "1234-FooBar-thumb.png", media.ThumbnailFilename())
}

func TestExtractTiesKeepCollectionOrder(t *testing.T) {
	ann := entities.Annotations{
		Links:    []models.URL{{ExpandedURL: "https://x", Indices: idx(0, 0)}},
		Mentions: []models.UserMention{{ScreenName: "m", Indices: idx(0, 0)}},
		Media:    []models.Media{{MediaURLHTTPS: "https://pbs.twimg.com/media/a.jpg", Indices: idx(0, 0)}},
	}

	got, err := entities.Extractor{}.Extract(1, "", ann)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []entities.Kind{entities.KindLink, entities.KindMention, entities.KindMedia},
		[]entities.Kind{got[0].Kind(), got[1].Kind(), got[2].Kind()})
}

func TestExtractMissingCollections(t *testing.T) {
	got, err := entities.Extractor{}.Extract(1, "plain", entities.Annotations{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractMalformed(t *testing.T) {
	tests := []struct {
		name string
		ann  entities.Annotations
	}{
		{
			name: "one index",
			ann:  entities.Annotations{Links: []models.URL{{Indices: []models.FlexInt{3}}}},
		},
		{
			name: "three indices",
			ann:  entities.Annotations{Mentions: []models.UserMention{{ScreenName: "a", Indices: []models.FlexInt{1, 2, 3}}}},
		},
		{
			name: "start after end",
			ann:  entities.Annotations{Media: []models.Media{{MediaURLHTTPS: "https://a/b.jpg", Indices: idx(4, 1)}}},
		},
		{
			name: "media without url",
			ann:  entities.Annotations{Media: []models.Media{{Indices: idx(0, 1)}}},
		},
		{
			name: "mention without handle",
			ann:  entities.Annotations{Mentions: []models.UserMention{{Indices: idx(0, 1)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := entities.Extractor{}.Extract(1, "some text here", tt.ann)
			assert.ErrorIs(t, err, entities.ErrMalformedEntity)
		})
	}
}

func TestExtractUTF16Units(t *testing.T) {
	// The emoji is one code point but two UTF-16 units.
	text := "😀 @bob"
	ann := entities.Annotations{
		Mentions: []models.UserMention{{ScreenName: "bob", Indices: idx(3, 7)}},
	}

	got, err := entities.Extractor{Unit: entities.UTF16Units}.Extract(1, text, ann)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entities.Span{Start: 2, End: 6}, got[0].Span())

	_, err = entities.Extractor{Unit: entities.UTF16Units}.Extract(1, text, entities.Annotations{
		Mentions: []models.UserMention{{ScreenName: "bob", Indices: idx(1, 7)}},
	})
	assert.ErrorIs(t, err, entities.ErrMalformedEntity)

	_, err = entities.Extractor{Unit: entities.UTF16Units}.Extract(1, text, entities.Annotations{
		Mentions: []models.UserMention{{ScreenName: "bob", Indices: idx(3, 9)}},
	})
	assert.ErrorIs(t, err, entities.ErrIndexOutOfRange)
}

func TestParseIndexUnit(t *testing.T) {
	unit, err := entities.ParseIndexUnit("UTF-16")
	require.NoError(t, err)
	assert.Equal(t, entities.UTF16Units, unit)

	unit, err = entities.ParseIndexUnit("")
	require.NoError(t, err)
	assert.Equal(t, entities.CodePoints, unit)

	_, err = entities.ParseIndexUnit("bytes")
	assert.Error(t, err)
}

func TestSpan(t *testing.T) {
	_, err := entities.SpanFromIndices([]int{1})
	assert.ErrorIs(t, err, entities.ErrMalformedEntity)

	a, err := entities.NewSpan(0, 5)
	require.NoError(t, err)
	b, err := entities.NewSpan(3, 8)
	require.NoError(t, err)
	c, err := entities.NewSpan(5, 8)
	require.NoError(t, err)

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
	assert.Equal(t, 5, a.Len())
	assert.Equal(t, "[0, 5)", a.String())
}
