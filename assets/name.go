package assets

import (
	"crypto/rand"
	"io"
	"regexp"
	"strings"
)

const (
	// RandomNameLength is the length of generated asset names.
	RandomNameLength = 8

	nameFirstLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	nameAlphanum     = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	whitespaceRegexp = regexp.MustCompile(`\s+`)
	separatorRegexp  = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// NormalizeName turns a display name into an asset name: whitespace runs
// become underscores, the first token of [A-Za-z0-9_] characters that starts
// with a letter is kept, and its first letter is upper-cased.
// It returns "" when nothing usable is left.
func NormalizeName(s string) string {
	s = whitespaceRegexp.ReplaceAllString(strings.TrimSpace(s), "_")
	for _, token := range separatorRegexp.Split(s, -1) {
		if token == "" || !isLetter(token[0]) {
			continue
		}
		return strings.ToUpper(token[:1]) + token[1:]
	}
	return ""
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// RandomName returns a name of length n whose first character is an
// upper-case letter and whose rest is lower-case alphanumeric.
// A nil r reads from crypto/rand. Bytes that would bias the choice of a
// character are skipped.
func RandomName(r io.Reader, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	if r == nil {
		r = rand.Reader
	}

	name := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(name) < n {
		chunk := buf[:n-len(name)]
		if _, err := io.ReadFull(r, chunk); err != nil {
			return "", err
		}
		for _, b := range chunk {
			alphabet := nameAlphanum
			if len(name) == 0 {
				alphabet = nameFirstLetters
			}
			if int(b) < 256-256%len(alphabet) {
				name = append(name, alphabet[int(b)%len(alphabet)])
			}
		}
	}
	return string(name), nil
}
