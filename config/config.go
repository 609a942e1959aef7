package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"tweetsite/entities"
	"tweetsite/posts"
	"tweetsite/site"
)

var ErrInvalidConfig = errors.New("invalid config")

// TomlOutput names the files and directories written under Dir
type TomlOutput struct {
	Dir       string `toml:"dir"`
	PostsDir  string `toml:"posts_dir"`
	MediaDir  string `toml:"media_dir"`
	ThumbsDir string `toml:"thumbs_dir"`
	TextFile  string `toml:"text_file"`
	IndexFile string `toml:"index_file"`
}

// TomlRender controls how posts are interpreted and shown
type TomlRender struct {
	Timezone string `toml:"timezone"`
	// IndexUnit is the unit entity indices are counted in: codepoint or utf16.
	IndexUnit         string   `toml:"index_unit"`
	PermalinkPrefixes []string `toml:"permalink_prefixes"`
	ThumbSize         int      `toml:"thumb_size"`
	Title             string   `toml:"title"`
}

// TomlFilter selects which posts are left out of the digest and index
type TomlFilter struct {
	ExcludeReposts    bool `toml:"exclude_reposts"`
	ExcludeQuotes     bool `toml:"exclude_quotes"`
	ExcludeAtMessages bool `toml:"exclude_at_messages"`
}

// TomlExport holds the optional extra outputs
type TomlExport struct {
	// SQLite is relative to the output directory unless absolute.
	SQLite      string `toml:"sqlite"`
	MetricsFile string `toml:"metrics_file"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Output TomlOutput `toml:"output"`
	Render TomlRender `toml:"render"`
	Filter TomlFilter `toml:"filter"`
	Export TomlExport `toml:"export"`
}

func Default() *TomlConfig {
	return &TomlConfig{
		Output: TomlOutput{
			Dir:       "out",
			PostsDir:  "status",
			MediaDir:  "media",
			ThumbsDir: "media_thumbs",
			TextFile:  "tweets.txt",
			IndexFile: "index.html",
		},
		Render: TomlRender{
			Timezone:          "Europe/London",
			IndexUnit:         entities.CodePoints.String(),
			PermalinkPrefixes: []string{"https://twitter.com/", "https://x.com/"},
			ThumbSize:         256,
		},
		Filter: TomlFilter{
			ExcludeReposts:    true,
			ExcludeQuotes:     true,
			ExcludeAtMessages: true,
		},
	}
}

// LoadConfig reads path over the defaults, so a file only needs the keys it
// changes.
func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Default()
	meta, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalidConfig, undecoded)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that cannot be caught while decoding
func (c *TomlConfig) Validate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is empty", ErrInvalidConfig)
	}
	for key, v := range map[string]string{
		"output.posts_dir":  c.Output.PostsDir,
		"output.media_dir":  c.Output.MediaDir,
		"output.thumbs_dir": c.Output.ThumbsDir,
		"output.text_file":  c.Output.TextFile,
		"output.index_file": c.Output.IndexFile,
	} {
		if v == "" || filepath.IsAbs(v) {
			return fmt.Errorf("%w: %s must be a relative path", ErrInvalidConfig, key)
		}
	}
	if c.Render.ThumbSize <= 0 {
		return fmt.Errorf("%w: render.thumb_size must be positive", ErrInvalidConfig)
	}
	if _, err := entities.ParseIndexUnit(c.Render.IndexUnit); err != nil {
		return fmt.Errorf("%w: render.index_unit: %v", ErrInvalidConfig, err)
	}
	if _, err := time.LoadLocation(c.Render.Timezone); err != nil {
		return fmt.Errorf("%w: render.timezone: %v", ErrInvalidConfig, err)
	}
	return nil
}

// PostOptions converts the render section for post construction
func (c *TomlConfig) PostOptions() (posts.Options, error) {
	if err := c.Validate(); err != nil {
		return posts.Options{}, err
	}
	loc, _ := time.LoadLocation(c.Render.Timezone)
	unit, _ := entities.ParseIndexUnit(c.Render.IndexUnit)
	return posts.Options{
		Location: loc,
		Unit:     unit,
		PermalinkPrefixes: lo.Filter(c.Render.PermalinkPrefixes, func(p string, _ int) bool {
			return p != ""
		}),
	}, nil
}

func (c *TomlConfig) Paths() entities.Paths {
	return entities.Paths{
		Posts:  filepath.ToSlash(c.Output.PostsDir),
		Media:  filepath.ToSlash(c.Output.MediaDir),
		Thumbs: filepath.ToSlash(c.Output.ThumbsDir),
	}
}

func (c *TomlConfig) PostFilter() posts.Filter {
	return posts.Filter{
		ExcludeReposts:    c.Filter.ExcludeReposts,
		ExcludeQuotes:     c.Filter.ExcludeQuotes,
		ExcludeAtMessages: c.Filter.ExcludeAtMessages,
	}
}

func (c *TomlConfig) Site() site.Config {
	return site.Config{
		Dir:       c.Output.Dir,
		Paths:     c.Paths(),
		TextFile:  c.Output.TextFile,
		IndexFile: c.Output.IndexFile,
		Title:     c.Render.Title,
		ThumbSize: c.Render.ThumbSize,
	}
}

// SQLitePath resolves the export database, or returns "" when disabled
func (c *TomlConfig) SQLitePath() string {
	if c.Export.SQLite == "" || filepath.IsAbs(c.Export.SQLite) {
		return c.Export.SQLite
	}
	return filepath.Join(c.Output.Dir, c.Export.SQLite)
}
