package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetsite/config"
	"tweetsite/entities"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tweetsite.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Validate())

	opts, err := c.PostOptions()
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", opts.Location.String())
	assert.Equal(t, entities.CodePoints, opts.Unit)
	assert.Equal(t, entities.DefaultPaths(), c.Paths())
	assert.True(t, c.PostFilter().ExcludeReposts)
	assert.Equal(t, "", c.SQLitePath())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[output]
dir = "site"
posts_dir = "p"

[render]
timezone = "UTC"
index_unit = "utf16"
thumb_size = 128
title = "My posts"

[filter]
exclude_quotes = false

[export]
sqlite = "archive.db"
`)

	c, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "site", c.Output.Dir)
	assert.Equal(t, "media", c.Output.MediaDir, "unset keys keep their defaults")
	assert.Equal(t, "p", c.Paths().Posts)
	assert.False(t, c.PostFilter().ExcludeQuotes)
	assert.True(t, c.PostFilter().ExcludeAtMessages)
	assert.Equal(t, filepath.Join("site", "archive.db"), c.SQLitePath())

	opts, err := c.PostOptions()
	require.NoError(t, err)
	assert.Equal(t, entities.UTF16Units, opts.Unit)
	assert.Equal(t, "UTC", opts.Location.String())

	s := c.Site()
	assert.Equal(t, "site", s.Dir)
	assert.Equal(t, 128, s.ThumbSize)
	assert.Equal(t, "My posts", s.Title)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{name: "syntax", content: "[output\n"},
		{name: "unknown key", content: "[output]\nfolder = \"x\"\n", invalid: true},
		{name: "bad unit", content: "[render]\nindex_unit = \"bytes\"\n", invalid: true},
		{name: "bad timezone", content: "[render]\ntimezone = \"Mars/Olympus\"\n", invalid: true},
		{name: "zero thumbs", content: "[render]\nthumb_size = 0\n", invalid: true},
		{name: "absolute media dir", content: "[output]\nmedia_dir = \"/tmp/media\"\n", invalid: true},
		{name: "empty output dir", content: "[output]\ndir = \"\"\n", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
			}
		})
	}

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
