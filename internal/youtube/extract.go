// Package youtube reads the channel's public pages: the per-day search listing and
// each video's watch page.
package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrMalformedMarkup is yielded when a document cannot be scanned at all.
var ErrMalformedMarkup = errors.New("listing markup is not valid UTF-8")

// Record is a candidate video found in a listing.
type Record struct {
	Hash  string
	Title string
}

// recordPattern finds a content id followed, possibly much later, by the entry's
// display text. Escaped quotes inside the text are allowed.
var recordPattern = regexp.MustCompile(`"videoId":"([^"]*?)".*?"text":"((?:[^"\\]|\\.)*)"`)

// ExtractRecords scans markup once and yields the entries whose text names the
// given day/month, e.g. "5/3". Entries for other days are skipped. The sequence
// ends early with ErrMalformedMarkup if the document cannot be scanned.
func ExtractRecords(markup string, day, month int) iter.Seq2[Record, error] {
	token := fmt.Sprintf("%d/%d", day, month)

	return func(yield func(Record, error) bool) {
		if !utf8.ValidString(markup) {
			yield(Record{}, ErrMalformedMarkup)
			return
		}

		rest := markup
		for {
			loc := recordPattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				return
			}
			hash := rest[loc[2]:loc[3]]
			rawTitle := rest[loc[4]:loc[5]]
			rest = rest[loc[1]:]

			title := unescape(rawTitle)
			if hash == "" || !containsDayToken(title, token) {
				continue
			}
			if !yield(Record{Hash: hash, Title: title}, nil) {
				return
			}
		}
	}
}

// containsDayToken reports whether token appears in s without a digit directly
// before or after it, so "5/3" does not match "15/3" or "5/30". The channel
// search returns neighbouring days too, and a plain substring check would
// ingest "15/3" when asked for "5/3".
func containsDayToken(s, token string) bool {
	for offset := 0; ; {
		i := strings.Index(s[offset:], token)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(token)
		if (start == 0 || !isDigit(s[start-1])) && (end == len(s) || !isDigit(s[end])) {
			return true
		}
		offset = start + 1
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// unescape decodes a JSON string body. Sequences JSON rejects are handled by
// dropping the backslashes.
func unescape(raw string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &out); err != nil {
		out = strings.ReplaceAll(raw, `\`, "")
	}
	return strings.TrimSpace(out)
}
