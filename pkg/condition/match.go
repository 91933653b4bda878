package condition

import (
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single MATCH/LIKE evaluation so a pathological
// pattern/value pair cannot hang a scan, grounded on the pack's ReDoS
// protection pattern (regexp2.MatchTimeout with a pattern cache).
const matchTimeout = 500 * time.Millisecond

var (
	patternCacheMu sync.RWMutex
	patternCache   = make(map[string]*regexp2.Regexp)
)

func compiledPattern(key, goRegex string) (*regexp2.Regexp, error) {
	patternCacheMu.RLock()
	re, ok := patternCache[key]
	patternCacheMu.RUnlock()
	if ok {
		return re, nil
	}

	patternCacheMu.Lock()
	defer patternCacheMu.Unlock()
	if re, ok := patternCache[key]; ok {
		return re, nil
	}

	re, err := regexp2.Compile(goRegex, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = matchTimeout
	patternCache[key] = re
	return re, nil
}

// matchWildcard implements MATCH 'pat': '*' matches any run of characters,
// '?' matches exactly one, anchored at both ends.
func matchWildcard(value, pattern string) bool {
	regex := wildcardToRegex(pattern)
	re, err := compiledPattern("match:"+pattern, regex)
	if err != nil {
		return false
	}
	ok, err := re.MatchString(value)
	return err == nil && ok
}

// matchLike implements SQL LIKE 'pat': '%' matches any run, '_' matches
// exactly one, anchored at both ends.
func matchLike(value, pattern string) bool {
	regex := likeToRegex(pattern)
	re, err := compiledPattern("like:"+pattern, regex)
	if err != nil {
		return false
	}
	ok, err := re.MatchString(value)
	return err == nil && ok
}

func wildcardToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp2EscapeRune(r))
		}
	}
	b.WriteString("$")
	return b.String()
}

func likeToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp2EscapeRune(r))
		}
	}
	b.WriteString("$")
	return b.String()
}

var regexSpecial = ".^$*+?()[]{}|\\"

func regexp2EscapeRune(r rune) string {
	if strings.ContainsRune(regexSpecial, r) {
		return "\\" + string(r)
	}
	return string(r)
}
