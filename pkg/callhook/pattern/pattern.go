package pattern

import (
	"regexp"
	"strings"
)

// Wildcard tokens.
const (
	// WildcardSegment matches one or more characters inside one segment.
	WildcardSegment = "*"

	// GroupOpen starts a brace alternation.
	GroupOpen = "{"

	// GroupClose ends a brace alternation.
	GroupClose = "}"

	// Separator separates event-name segments.
	Separator = "."
)

// segmentChars is the expansion of WildcardSegment.
const segmentChars = `[^.]+`

// Matcher is a compiled event-name pattern.
// It is immutable and safe for concurrent use.
type Matcher struct {
	pattern string
	re      *regexp.Regexp
}

// IsWildcard reports whether p contains any wildcard syntax.
// Patterns that are not wildcards are matched by string equality.
func IsWildcard(p string) bool {
	return strings.Contains(p, WildcardSegment) || strings.Contains(p, GroupOpen)
}

// Compile turns a pattern into a Matcher.
// Every literal fragment is quoted, so compilation cannot fail.
func Compile(p string) *Matcher {
	var b strings.Builder
	b.WriteString("^")

	rest := p
	for len(rest) > 0 {
		switch {
		case strings.HasPrefix(rest, WildcardSegment):
			b.WriteString(segmentChars)
			rest = rest[len(WildcardSegment):]

		case strings.HasPrefix(rest, GroupOpen):
			members, n, ok := parseGroup(rest)
			if !ok {
				// Not a well-formed group; keep the brace as literal text.
				b.WriteString(regexp.QuoteMeta(GroupOpen))
				rest = rest[len(GroupOpen):]
				continue
			}
			b.WriteString("(?:")
			for i, m := range members {
				if i > 0 {
					b.WriteString("|")
				}
				b.WriteString(regexp.QuoteMeta(m))
			}
			b.WriteString(")")
			rest = rest[n:]

		default:
			next := strings.IndexAny(rest, WildcardSegment+GroupOpen)
			if next < 0 {
				next = len(rest)
			}
			b.WriteString(regexp.QuoteMeta(rest[:next]))
			rest = rest[next:]
		}
	}

	b.WriteString("$")
	return &Matcher{
		pattern: p,
		re:      regexp.MustCompile(b.String()),
	}
}

// parseGroup reads a "{a,b}" group at the start of s.
// It returns the members and the number of bytes consumed.
func parseGroup(s string) ([]string, int, bool) {
	end := strings.Index(s, GroupClose)
	if end <= len(GroupOpen) {
		return nil, 0, false
	}
	body := s[len(GroupOpen):end]
	return strings.Split(body, ","), end + len(GroupClose), true
}

// Matches reports whether name matches the whole pattern.
func (m *Matcher) Matches(name string) bool {
	if m == nil {
		return false
	}
	return m.re.MatchString(name)
}

// Pattern returns the source pattern.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// String returns the source pattern.
func (m *Matcher) String() string {
	return m.pattern
}

// Match compiles p and tests name against it.
// Callers matching the same pattern repeatedly should keep the Matcher.
func Match(p, name string) bool {
	if !IsWildcard(p) {
		return p == name
	}
	return Compile(p).Matches(name)
}
