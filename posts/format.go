package posts

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// FormatTimestamp renders t as "Thursday 3rd November 2022, at 9:29 am"
func FormatTimestamp(t time.Time) string {
	day := t.Day()
	return t.Format("Monday") + " " +
		strconv.Itoa(day) + ordinal(day) + " " +
		t.Format("January 2006, at 3:04 pm")
}

func ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// SourceLabel extracts the visible text of the archive's source markup,
// e.g. `<a href="..." rel="nofollow">Twitter Web App</a>`.
func SourceLabel(source string) string {
	z := html.NewTokenizer(strings.NewReader(source))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
