package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrCaptionsUnavailable is returned when a watch page carries no description block.
var ErrCaptionsUnavailable = errors.New("video page has no time-coded description")

// Cut is a labelled start offset parsed from a video's description.
type Cut struct {
	Label string
	Start string
}

var (
	descriptionPattern = regexp.MustCompile(`"shortDescription":"((?:[^"\\]|\\.)*)"`)
	timestampPattern   = regexp.MustCompile(`\d+(?::\d+)+`)
)

// labelTrim is stripped from both ends of a label once its timestamp is removed.
const labelTrim = " \t-–—|:•·()[]"

// ParseCuts reads the description embedded in a watch page and returns one Cut per
// line carrying a timestamp, in document order. Duplicates are kept.
func ParseCuts(page string) ([]Cut, error) {
	m := descriptionPattern.FindStringSubmatch(page)
	if m == nil {
		return nil, ErrCaptionsUnavailable
	}

	var description string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &description); err != nil {
		return nil, fmt.Errorf("failed to decode video description: %w", err)
	}

	var cuts []Cut
	for _, line := range strings.Split(description, "\n") {
		if cut, ok := parseLine(line); ok {
			cuts = append(cuts, cut)
		}
	}
	return cuts, nil
}

// parseLine turns "Intro 00:00:10" or "0:10 - Intro" into a Cut. The first
// timestamp on the line is the start; any others are dropped from the label.
func parseLine(line string) (Cut, bool) {
	var start string
	var label strings.Builder
	prev := 0
	for _, loc := range timestampPattern.FindAllStringIndex(line, -1) {
		ts := line[loc[0]:loc[1]]
		if !isTimestamp(ts) {
			continue
		}
		if start == "" {
			start = NormalizeTimestamp(ts)
		}
		label.WriteString(line[prev:loc[0]])
		label.WriteString(" ")
		prev = loc[1]
	}
	if start == "" {
		return Cut{}, false
	}
	label.WriteString(line[prev:])

	text := strings.Join(strings.Fields(label.String()), " ")
	text = strings.Trim(text, labelTrim)
	if text == "" {
		return Cut{}, false
	}
	return Cut{Label: text, Start: start}, true
}

// isTimestamp accepts M:SS, MM:SS, H:MM:SS and HH:MM:SS.
func isTimestamp(ts string) bool {
	parts := strings.Split(ts, ":")
	if len(parts) > 3 {
		return false
	}
	for i, p := range parts {
		if len(p) > 2 {
			return false
		}
		if i > 0 && (len(p) != 2 || p[0] > '5') {
			return false
		}
	}
	return true
}

// NormalizeTimestamp zero-pads every component, so "1:02:03" becomes "01:02:03"
// and "0:10" becomes "00:10".
func NormalizeTimestamp(ts string) string {
	parts := strings.Split(ts, ":")
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return strings.Join(parts, ":")
}
