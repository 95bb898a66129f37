// Package calendar holds the day index: the ordered universe of broadcast days the
// external source can be queried for. Offsets into the index are what the backfill
// driver iterates over.
package calendar

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Layout is the ISO-8601 date layout used by the day table and by the store.
const Layout = "2006-01-02"

var (
	// ErrNotFound is returned when a literal date is absent from the index.
	ErrNotFound = errors.New("this day is not on the list of days")
	// ErrIndexOutOfRange is returned for offsets outside the index.
	ErrIndexOutOfRange = errors.New("day index out of range")
)

//go:embed days.txt
var days string

// DayIndex is an immutable, strictly ascending list of dates.
type DayIndex struct {
	dates []time.Time
	pos   map[string]int
}

// Default returns the index generated into days.txt.
func Default() *DayIndex {
	idx, err := Load(strings.NewReader(days))
	if err != nil {
		panic(fmt.Sprintf("embedded day table is invalid: %v", err))
	}
	return idx
}

// Load reads one ISO date per line. Blank lines and lines starting with '#' are
// skipped. Dates must be strictly ascending.
func Load(r io.Reader) (*DayIndex, error) {
	idx := &DayIndex{pos: make(map[string]int)}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		d, err := time.Parse(Layout, text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if n := len(idx.dates); n > 0 && !d.After(idx.dates[n-1]) {
			return nil, fmt.Errorf("line %d: %s is not after %s", line, text, idx.dates[n-1].Format(Layout))
		}
		idx.pos[text] = len(idx.dates)
		idx.dates = append(idx.dates, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read day table: %w", err)
	}
	return idx, nil
}

// Len returns the number of days in the index.
func (idx *DayIndex) Len() int {
	return len(idx.dates)
}

// DateForIndex returns the date at offset i.
func (idx *DayIndex) DateForIndex(i int) (time.Time, error) {
	if i < 0 || i >= len(idx.dates) {
		return time.Time{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return idx.dates[i], nil
}

// IndexForDate returns the offset of d. The time of day is ignored.
func (idx *DayIndex) IndexForDate(d time.Time) (int, error) {
	key := d.UTC().Format(Layout)
	i, ok := idx.pos[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return i, nil
}

// MonthRange returns the first and last indexed dates in the given month.
func (idx *DayIndex) MonthRange(year int, month time.Month) (time.Time, time.Time, error) {
	start := Date(1, int(month), year)
	end := start.AddDate(0, 1, 0)

	lo := sort.Search(len(idx.dates), func(i int) bool { return !idx.dates[i].Before(start) })
	hi := sort.Search(len(idx.dates), func(i int) bool { return !idx.dates[i].Before(end) })
	if lo == hi {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: no days in %04d-%02d", ErrNotFound, year, int(month))
	}
	return idx.dates[lo], idx.dates[hi-1], nil
}

// Date builds the UTC midnight date for a day/month/year triple.
func Date(day, month, year int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// IsValid reports whether the triple names a real calendar date.
func IsValid(day, month, year int) bool {
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return false
	}
	d := Date(day, month, year)
	return d.Day() == day && int(d.Month()) == month && d.Year() == year
}

// Generate writes every date in [from, to] to w, one per line. Weekends are skipped
// unless includeWeekends is set.
func Generate(w io.Writer, from, to time.Time, includeWeekends bool) (int, error) {
	n := 0
	for d := from.UTC(); !d.After(to.UTC()); d = d.AddDate(0, 0, 1) {
		if !includeWeekends && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		if _, err := fmt.Fprintln(w, d.Format(Layout)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
