package site_test

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetsite/entities"
	"tweetsite/metrics"
	"tweetsite/models"
	"tweetsite/posts"
	"tweetsite/site"
)

type locator map[string]string

func (l locator) MediaSource(m *entities.Media) (string, bool) {
	p, ok := l[m.LocalFilename()]
	return p, ok
}

func idx(a, b int) []models.FlexInt {
	return []models.FlexInt{models.FlexInt(a), models.FlexInt(b)}
}

func build(t *testing.T, tw models.Tweet) *posts.Post {
	t.Helper()
	o := posts.DefaultOptions()
	o.Location = time.UTC
	p, err := posts.New(tw, o)
	require.NoError(t, err)
	return p
}

func fixture(t *testing.T) []*posts.Post {
	withMedia := models.Tweet{
		IDStr:     "200",
		FullText:  "sunset & sea\nlook https://t.co/img1",
		CreatedAt: "Thu Nov 03 09:29:00 +0000 2022",
		Source:    `<a href="https://mobile.twitter.com" rel="nofollow">Twitter Web App</a>`,
		ExtendedEntities: &models.ExtendedEntities{Media: []models.Media{
			{ID: 1, MediaURLHTTPS: "https://pbs.twimg.com/media/Sun.png", Indices: idx(18, 35)},
		}},
	}
	missingMedia := models.Tweet{
		IDStr:     "201",
		FullText:  "gone https://t.co/img2",
		CreatedAt: "Wed Nov 02 09:29:00 +0000 2022",
		ExtendedEntities: &models.ExtendedEntities{Media: []models.Media{
			{ID: 2, MediaURLHTTPS: "https://pbs.twimg.com/media/Gone.jpg", Indices: idx(5, 22)},
		}},
	}
	repost := models.Tweet{
		IDStr:     "202",
		FullText:  "RT @other: hi",
		CreatedAt: "Tue Nov 01 09:29:00 +0000 2022",
	}
	return []*posts.Post{build(t, withMedia), build(t, missingMedia), build(t, repost)}
}

func config(dir string) site.Config {
	return site.Config{
		Dir:       dir,
		Paths:     entities.DefaultPaths(),
		TextFile:  "tweets.txt",
		IndexFile: "index.html",
		ThumbSize: 16,
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestBuild(t *testing.T) {
	src := filepath.Join(t.TempDir(), "200-Sun.png")
	require.NoError(t, imaging.Save(imaging.New(64, 32, color.NRGBA{R: 255, A: 255}), src))

	out := t.TempDir()
	m := metrics.New()
	w, err := site.New(config(out), m)
	require.NoError(t, err)

	account := models.Account{AccountID: "1", Username: "me", AccountDisplayName: "Me"}
	filter := posts.Filter{ExcludeReposts: true, ExcludeQuotes: true, ExcludeAtMessages: true}
	require.NoError(t, w.Build(account, fixture(t), filter, locator{"200-Sun.png": src}))

	text := read(t, filepath.Join(out, "tweets.txt"))
	assert.Equal(t,
		"sunset & sea\nlook \n(Thursday 3rd November 2022, at 9:29 am)\n\n"+
			"gone \n(Wednesday 2nd November 2022, at 9:29 am)\n",
		text)

	index := read(t, filepath.Join(out, "index.html"))
	assert.Contains(t, index, "<title>@me</title>")
	assert.Contains(t, index, `<p>sunset &amp; sea<br/>look </p>`)
	assert.Contains(t, index, `<a href="media/200-Sun.png"><img src="media_thumbs/200-Sun-thumb.png" class="thumb"/></a>`)
	assert.Contains(t, index, `<a href="status/200.html">`)
	assert.NotContains(t, index, "RT @other")

	page := read(t, filepath.Join(out, "status", "200.html"))
	assert.Contains(t, page, `<a href="../index.html">`)
	assert.Contains(t, page, `<img src="../media_thumbs/200-Sun-thumb.png" class="thumb"/>`)
	assert.Contains(t, page, "via Twitter Web App")
	assert.Contains(t, page, "https://twitter.com/me/status/200")

	// Reposts are left out of the list but still get a page.
	assert.FileExists(t, filepath.Join(out, "status", "202.html"))

	assert.Equal(t, read(t, src), read(t, filepath.Join(out, "media", "200-Sun.png")))
	thumb, err := imaging.Open(filepath.Join(out, "media_thumbs", "200-Sun-thumb.png"))
	require.NoError(t, err)
	assert.Equal(t, 16, thumb.Bounds().Dx())
	assert.Equal(t, 8, thumb.Bounds().Dy())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MediaCopied))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MediaMissing))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ThumbsWritten))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PostsFiltered.WithLabelValues("repost")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PostsRendered.WithLabelValues("page")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PostsRendered.WithLabelValues("index")))
}

func TestCopyMediaKeepsExistingFiles(t *testing.T) {
	src := filepath.Join(t.TempDir(), "200-Sun.png")
	require.NoError(t, imaging.Save(imaging.New(4, 4, color.White), src))

	out := t.TempDir()
	cfg := config(out)
	require.NoError(t, os.MkdirAll(filepath.Join(out, "media"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(out, "media_thumbs"), 0o755))
	existing := filepath.Join(out, "media", "200-Sun.png")
	require.NoError(t, os.WriteFile(existing, []byte("already here"), 0o644))

	m := metrics.New()
	w, err := site.New(cfg, m)
	require.NoError(t, err)
	ps := fixture(t)[:1]
	require.NoError(t, w.CopyMedia(ps, locator{"200-Sun.png": src}))

	assert.Equal(t, "already here", read(t, existing))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.MediaCopied))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ThumbsWritten))

	require.NoError(t, w.CopyMedia(ps, locator{"200-Sun.png": src}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ThumbsWritten))
}

func TestThumbnailFailureIsNotFatal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "200-Sun.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o644))

	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "media"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(out, "media_thumbs"), 0o755))

	m := metrics.New()
	w, err := site.New(config(out), m)
	require.NoError(t, err)
	require.NoError(t, w.CopyMedia(fixture(t)[:1], locator{"200-Sun.png": src}))

	assert.FileExists(t, filepath.Join(out, "media", "200-Sun.png"))
	assert.NoFileExists(t, filepath.Join(out, "media_thumbs", "200-Sun-thumb.png"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ThumbsFailed))
}

func TestNewRequiresDir(t *testing.T) {
	_, err := site.New(site.Config{}, metrics.New())
	assert.Error(t, err)
}

func TestBuildMultiPhotoPost(t *testing.T) {
	srcDir := t.TempDir()
	sources := locator{}
	for name, size := range map[string]int{"300-One.png": 40, "300-Two.jpg": 20} {
		src := filepath.Join(srcDir, name)
		require.NoError(t, imaging.Save(imaging.New(size, size, color.NRGBA{B: 255, A: 255}), src))
		sources[name] = src
	}

	p := build(t, models.Tweet{
		IDStr:     "300",
		FullText:  "pics https://t.co/abcdefghij",
		CreatedAt: "Thu Nov 03 09:29:00 +0000 2022",
		ExtendedEntities: &models.ExtendedEntities{Media: []models.Media{
			{ID: 1, MediaURLHTTPS: "https://pbs.twimg.com/media/One.png", Indices: idx(5, 28)},
			{ID: 2, MediaURLHTTPS: "https://pbs.twimg.com/media/Two.jpg", Indices: idx(5, 28)},
		}},
	})

	out := t.TempDir()
	m := metrics.New()
	w, err := site.New(config(out), m)
	require.NoError(t, err)

	account := models.Account{AccountID: "1", Username: "me"}
	require.NoError(t, w.Build(account, []*posts.Post{p}, posts.Filter{}, sources))

	assert.Equal(t, "pics \n(Thursday 3rd November 2022, at 9:29 am)\n", read(t, filepath.Join(out, "tweets.txt")))

	index := read(t, filepath.Join(out, "index.html"))
	assert.Contains(t, index, `<a href="media/300-One.png"><img src="media_thumbs/300-One-thumb.png" class="thumb"/></a>`)
	assert.Contains(t, index, `<a href="media/300-Two.jpg"><img src="media_thumbs/300-Two-thumb.jpg" class="thumb"/></a>`)

	page := read(t, filepath.Join(out, "status", "300.html"))
	assert.Contains(t, page, `<img src="../media_thumbs/300-One-thumb.png" class="thumb"/>`)
	assert.Contains(t, page, `<img src="../media_thumbs/300-Two-thumb.jpg" class="thumb"/>`)

	for name, src := range sources {
		assert.Equal(t, read(t, src), read(t, filepath.Join(out, "media", name)))
	}
	for _, name := range []string{"300-One-thumb.png", "300-Two-thumb.jpg"} {
		thumb, err := imaging.Open(filepath.Join(out, "media_thumbs", name))
		require.NoError(t, err)
		assert.Equal(t, 16, thumb.Bounds().Dx())
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MediaCopied))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ThumbsWritten))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.MediaMissing))
}
