package core

import "strings"

// URIScheme is the literal prefix of every agent URI.
const URIScheme = "agent://"

const (
	minNameLen = 2
	maxNameLen = 50
)

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-':
		return true
	case r >= 0x80:
		// Internationalized names are allowed verbatim.
		return true
	}
	return false
}

// ValidateName reports whether name is a valid agent name after lowercasing:
// 2-50 characters, lowercase alphanumeric, hyphens or non-ASCII code points,
// with no leading or trailing hyphen.
func ValidateName(name string) bool {
	name = strings.ToLower(name)
	n := len([]rune(name))
	if n < minNameLen || n > maxNameLen {
		return false
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return false
	}
	for _, r := range name {
		if !isNameRune(r) {
			return false
		}
	}
	return true
}

// ParseURI parses an agent:// URI and returns the canonical (lowercase)
// agent name. The second result is false when the URI is invalid.
func ParseURI(uri string) (string, bool) {
	if !strings.HasPrefix(uri, URIScheme) {
		return "", false
	}
	name := strings.ToLower(uri[len(URIScheme):])
	if !ValidateName(name) {
		return "", false
	}
	return name, true
}

// IsValidURI reports whether uri is a well-formed agent:// URI.
func IsValidURI(uri string) bool {
	_, ok := ParseURI(uri)
	return ok
}

// ToURI converts an agent name to its canonical agent:// URI.
func ToURI(name string) string {
	return URIScheme + strings.ToLower(name)
}
