// Package show maps free-text video titles onto the fixed set of programs the
// channel publishes.
package show

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Show string

const (
	SoneQueVolaba            Show = "sone-que-volaba"
	SeriaIncreible           Show = "seria-increible"
	SeExtranaALaNona         Show = "se-extrana-a-la-nona"
	GeneracionDorada         Show = "generacion-dorada"
	CuandoEricConocioAMilton Show = "cuando-eric-conocio-a-milton"
	ParaisoFiscal            Show = "paraiso-fiscal"
	MiPrimoEsAsi             Show = "mi-primo-es-asi"
)

// rule pairs a show with its distinguishing token and the full phrase that must
// appear in a folded title. Rules are evaluated in table order and every rule is
// always evaluated, so the result never depends on which rule matched first.
type rule struct {
	show   Show
	token  string
	phrase *regexp.Regexp
}

var rules = []rule{
	{SoneQueVolaba, "volaba", regexp.MustCompile(`\bsone?\s+que\s+volaba\b`)},
	{SeriaIncreible, "incre", regexp.MustCompile(`\bseria\s+increible\b`)},
	{MiPrimoEsAsi, "primo", regexp.MustCompile(`\bmi\s+primo\s+es\s+asi\b`)},
	{ParaisoFiscal, "fiscal", regexp.MustCompile(`\bparaiso\s+fiscal\b`)},
	{SeExtranaALaNona, "nona", regexp.MustCompile(`\bse\s+extrana\s+a\s+la\s+nona\b`)},
	{GeneracionDorada, "dorada", regexp.MustCompile(`\bgeneracion\s+dorada\b`)},
	{CuandoEricConocioAMilton, "milton", regexp.MustCompile(`\bcuando\s+eric\s+conocio\s+a\s+milton\b`)},
}

// ClassificationError is returned when a title does not resolve to exactly one show.
type ClassificationError struct {
	Title   string
	Matches []Show
}

func (e *ClassificationError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("the title %q does not contain a known show name", e.Title)
	}
	return fmt.Sprintf("the title %q matches more than one show: %v", e.Title, e.Matches)
}

// Classify returns the single show named in title.
func Classify(title string) (Show, error) {
	folded := Fold(title)

	var matches []Show
	for _, r := range rules {
		if strings.Contains(folded, r.token) && r.phrase.MatchString(folded) {
			matches = append(matches, r.show)
		}
	}
	if len(matches) != 1 {
		return "", &ClassificationError{Title: title, Matches: matches}
	}
	return matches[0], nil
}

// Fold lower-cases s and strips diacritics, so "Soñé" and "SONE" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// All returns every show in rule order.
func All() []Show {
	shows := make([]Show, len(rules))
	for i, r := range rules {
		shows[i] = r.show
	}
	return shows
}

// Parse validates a stored show identifier.
func Parse(s string) (Show, error) {
	for _, r := range rules {
		if string(r.show) == s {
			return r.show, nil
		}
	}
	return "", fmt.Errorf("unknown show %q, expected one of %v", s, All())
}

func (s Show) String() string {
	return string(s)
}

// Scan rejects stored values that are not a known show.
func (s *Show) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into a show", src)
	}

	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Show) Value() (driver.Value, error) {
	return string(s), nil
}
