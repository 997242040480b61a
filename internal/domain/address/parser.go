// internal/domain/address/parser.go
package address

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// level describes one administrative level and the keywords that introduce it.
type level struct {
	pattern  *regexp.Regexp
	keywords []string
}

var (
	houseNumberPattern = regexp.MustCompile(`\d+`)

	wardLevel = level{
		pattern:  regexp.MustCompile(`(xã|phường|thị trấn)\s+([^,]+)`),
		keywords: []string{"xã", "phường", "thị trấn"},
	}
	districtLevel = level{
		pattern:  regexp.MustCompile(`(quận|huyện|thị xã)\s+([^,]+)`),
		keywords: []string{"quận", "huyện", "thị xã"},
	}
	provinceLevel = level{
		pattern:  regexp.MustCompile(`(thành phố|tỉnh)\s+([^,]+)`),
		keywords: []string{"thành phố", "tỉnh"},
	}

	provinceAbbreviations = []string{"tp.", "tp ", "t."}
)

// Normalize NFC-normalises, lowercases and trims an address. Lowercasing is
// done rune by rune so the result has exactly as many runes as the input,
// which lets offsets found in the normalized text be mapped back.
func Normalize(s string) string {
	return strings.TrimSpace(lowerRunes(norm.NFC.String(s)))
}

// Parse extracts house number, ward, district and province from a free-text
// address. It is a pure function; unmatched fields are left empty.
func Parse(raw string) Components {
	normalized := Normalize(raw)

	c := Components{
		Original:    raw,
		Normalized:  normalized,
		HouseNumber: houseNumberPattern.FindString(normalized),
	}

	if fragment, ok := wardLevel.match(normalized); ok {
		c.Ward = recoverCasing(raw, fragment, wardLevel.keywords)
	}

	if fragment, ok := districtLevel.match(normalized); ok {
		c.District = recoverCasing(raw, fragment, districtLevel.keywords)
		if n, err := strconv.Atoi(c.District); err == nil && n >= 1 && n <= 12 {
			c.District = "Quận " + c.District
		}
	}

	if fragment, ok := provinceLevel.match(normalized); ok {
		c.Province = recoverCasing(raw, fragment, provinceLevel.keywords)
	} else {
		c.Province = trailingProvince(raw)
	}

	return c
}

// match returns the text following the first keyword occurrence, up to the
// next comma. A ward "xã" that is really the tail of "thị xã" is skipped.
func (l level) match(normalized string) (string, bool) {
	for _, m := range l.pattern.FindAllStringSubmatchIndex(normalized, -1) {
		keywordStart := m[2]
		keyword := normalized[m[2]:m[3]]
		if keyword == "xã" && strings.HasSuffix(normalized[:keywordStart], "thị ") {
			continue
		}
		fragment := strings.TrimSpace(normalized[m[4]:m[5]])
		if fragment == "" {
			continue
		}
		return fragment, true
	}
	return "", false
}

// recoverCasing finds the comma segment of raw that contains both the matched
// fragment and one of the level keywords and returns the fragment as the
// customer typed it. The lowercase fragment is returned when no segment fits.
func recoverCasing(raw, fragment string, keywords []string) string {
	for _, segment := range strings.Split(raw, ",") {
		original := []rune(norm.NFC.String(segment))
		lowered := string(lowerRunesSlice(original))

		idx := strings.Index(lowered, fragment)
		if idx < 0 || !containsAny(lowered, keywords) {
			continue
		}

		start := utf8.RuneCountInString(lowered[:idx])
		end := start + utf8.RuneCountInString(fragment)
		return strings.TrimSpace(string(original[start:end]))
	}
	return fragment
}

// trailingProvince treats the last comma segment as the province when no
// province keyword was found, e.g. "..., Quận Long Biên, Hà Nội".
func trailingProvince(raw string) string {
	segments := strings.Split(raw, ",")
	if len(segments) < 2 {
		return ""
	}

	last := strings.TrimSpace(norm.NFC.String(segments[len(segments)-1]))
	lowered := lowerRunes(last)
	if last == "" || containsAny(lowered, wardLevel.keywords) || containsAny(lowered, districtLevel.keywords) {
		return ""
	}
	if strings.IndexFunc(last, unicode.IsDigit) >= 0 {
		return ""
	}

	for _, abbr := range provinceAbbreviations {
		if strings.HasPrefix(lowered, abbr) {
			last = strings.TrimSpace(string([]rune(last)[utf8.RuneCountInString(abbr):]))
			break
		}
	}
	return last
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func lowerRunes(s string) string {
	return string(lowerRunesSlice([]rune(s)))
}

func lowerRunesSlice(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}
