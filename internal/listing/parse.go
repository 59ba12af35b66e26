package listing

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	digitsRegexp    = regexp.MustCompile(`(\d+)`)
	plusCountRegexp = regexp.MustCompile(`^(\d+)\s*\+$`)
	bareIntRegexp   = regexp.MustCompile(`^(\d+)$`)
	signedIntRegexp = regexp.MustCompile(`^-?\d+$`)
)

// Count is the result of a tolerant numeric parse. Raw keeps the original
// text whenever it carries more than the bare number (e.g. "5+", "5 locali"),
// so display code can show the source's wording instead of a lossy digit.
type Count struct {
	Value *int
	Raw   *string
}

// ParseNumber extracts a number from a value that may arrive as a JSON number
// or as free text ("350 m²" -> 350). Returns nil when nothing parseable is
// found. Never panics: the input domain is total.
func ParseNumber(value any) *float64 {
	if value == nil {
		return nil
	}

	if n, ok := asFloat(value); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		return &n
	}

	match := digitsRegexp.FindString(toString(value))
	if match == "" {
		return nil
	}

	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ParseCount parses room-like counts. Already-numeric input passes through
// with no raw; "N+" keeps both the integer and a normalized "N+" raw; text
// with extra words keeps the integer plus the full raw string; text with no
// digits keeps only the raw.
func ParseCount(value any) Count {
	if value == nil {
		return Count{}
	}

	if n, ok := asFloat(value); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Count{}
		}
		v := int(n)
		return Count{Value: &v}
	}

	s := strings.TrimSpace(toString(value))
	if s == "" {
		return Count{}
	}

	if m := plusCountRegexp.FindStringSubmatch(s); m != nil {
		v, _ := strconv.Atoi(m[1])
		raw := m[1] + "+"
		return Count{Value: &v, Raw: &raw}
	}

	if m := bareIntRegexp.FindStringSubmatch(s); m != nil {
		v, _ := strconv.Atoi(m[1])
		return Count{Value: &v}
	}

	m := digitsRegexp.FindStringSubmatch(s)
	if m == nil {
		return Count{Raw: &s}
	}

	v, _ := strconv.Atoi(m[1])
	return Count{Value: &v, Raw: &s}
}

// ParseFloor parses floor labels. Unlike ParseCount it never extracts digits
// out of non-numeric text: "R" (ground) and "T" (mezzanine) are discrete
// codes, not measurements, and survive only as raw. Signed integers are
// accepted ("-1" for basements).
func ParseFloor(value any) Count {
	if value == nil {
		return Count{}
	}

	if n, ok := asFloat(value); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Count{}
		}
		v := int(n)
		return Count{Value: &v}
	}

	s := strings.TrimSpace(toString(value))
	if s == "" {
		return Count{}
	}

	if signedIntRegexp.MatchString(s) {
		v, _ := strconv.Atoi(s)
		return Count{Value: &v}
	}

	return Count{Raw: &s}
}

// NormalizeTags lowercases, trims, deduplicates and sorts a free-form feature
// tag list. Returns nil when nothing usable remains, so "no tags" and "tags
// unknown" stay distinguishable from an empty list.
func NormalizeTags(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	tags := make([]string, 0, len(values))

	for _, v := range values {
		t := strings.ToLower(strings.TrimSpace(v))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}

	if len(tags) == 0 {
		return nil
	}

	sort.Strings(tags)
	return tags
}

// TagsContainAny reports whether any tag contains any of the needles as a
// substring. A nil tag set always reports false: absence of the tag list is
// not proof of absence of the amenity.
func TagsContainAny(tags []string, needles []string) bool {
	for _, tag := range tags {
		for _, needle := range needles {
			if strings.Contains(tag, needle) {
				return true
			}
		}
	}
	return false
}

func asFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
