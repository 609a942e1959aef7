// Package archive reads exported account archives from disk.
package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"tweetsite/entities"
	"tweetsite/models"
)

var (
	ErrNoTweetData  = errors.New("no tweet data in archive")
	ErrUserMismatch = errors.New("archives belong to different accounts")
)

const (
	dataDirName     = "data"
	accountFileName = "account.js"
)

// Post data moved from tweet.js to tweets.js over the years; large exports
// are split into numbered parts.
var (
	tweetFileNames  = []string{"tweets.js", "tweet.js"}
	tweetPartGlob   = "tweets-part*.js"
	mediaDirNames   = []string{"tweets_media", "tweet_media"}
	assignSeparator = []byte("=")
)

// Archive is one unpacked export
type Archive struct {
	Dir     string
	Account models.Account
	Tweets  []models.Tweet
}

// Load reads the account and every post file under dir/data
func Load(dir string) (*Archive, error) {
	data := filepath.Join(dir, dataDirName)

	var accounts []models.AccountRecord
	if err := decodeJS(filepath.Join(data, accountFileName), &accounts); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%s: no account record", filepath.Join(data, accountFileName))
	}

	files, err := tweetFiles(data)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTweetData, data)
	}

	a := &Archive{Dir: dir, Account: accounts[0].Account}
	for _, f := range files {
		var records []models.TweetRecord
		if err := decodeJS(f, &records); err != nil {
			return nil, err
		}
		a.Tweets = append(a.Tweets, lo.Map(records, func(r models.TweetRecord, _ int) models.Tweet {
			return r.Tweet
		})...)

		log.WithFields(log.Fields{
			"file":  f,
			"posts": len(records),
		}).Debug("Read post file")
	}

	log.WithFields(log.Fields{
		"dir":       dir,
		"account":   a.Account.Username,
		"accountId": a.Account.AccountID,
		"posts":     len(a.Tweets),
	}).Info("Loaded archive")

	return a, nil
}

// MediaSource finds the archive's copy of m. Exported files are named
// <post id>-<asset name><ext>, though the extension case is not reliable.
func (a *Archive) MediaSource(m *entities.Media) (string, bool) {
	for _, dirName := range mediaDirNames {
		dir := filepath.Join(a.Dir, dataDirName, dirName)
		candidate := filepath.Join(dir, m.LocalFilename())
		if fileExists(candidate) {
			return candidate, true
		}

		stem := strings.TrimSuffix(m.LocalFilename(), m.Ext)
		pattern := filepath.Join(dir, globEscape(stem)+".*")
		matches, err := filepath.Glob(pattern)
		if err != nil {
			log.WithFields(log.Fields{
				"pattern": pattern,
				"error":   err,
			}).Debug("Could not search for media file")
			continue
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0], true
		}
	}
	return "", false
}

func tweetFiles(data string) ([]string, error) {
	var files []string
	for _, name := range tweetFileNames {
		p := filepath.Join(data, name)
		if fileExists(p) {
			files = append(files, p)
		}
	}

	parts, err := filepath.Glob(filepath.Join(data, tweetPartGlob))
	if err != nil {
		return nil, err
	}
	sort.Strings(parts)
	return append(files, parts...), nil
}

// decodeJS reads a `window.YTD.<name>.part0 = [...]` file into v
func decodeJS(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading archive file: %w", err)
	}

	if i := bytes.Index(raw, assignSeparator); i >= 0 && !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		raw = raw[i+1:]
	}
	raw = bytes.TrimSuffix(bytes.TrimSpace(raw), []byte(";"))

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("error parsing archive file %s: %w", path, err)
	}
	return nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func globEscape(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', '\\':
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	return string(b)
}
