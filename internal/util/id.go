// Package util holds small helpers for ids and names.
package util

import (
	"crypto/rand"
	"strings"
	"unicode"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// EntryIDLength is the length of ids returned by GenerateShortID.
const EntryIDLength = 8

// GenerateShortID returns an alphanumeric id using cryptographic randomness.
func GenerateShortID() (string, error) {
	bytes := make([]byte, EntryIDLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	for i := range bytes {
		bytes[i] = alphanumeric[int(bytes[i])%len(alphanumeric)]
	}

	return string(bytes), nil
}

// GenerateCallID returns a tool call id for calls that originate outside an
// agent, such as the CLI or HTTP surface.
func GenerateCallID() (string, error) {
	id, err := GenerateShortID()
	if err != nil {
		return "", err
	}
	return "call_" + id, nil
}

// Slugify converts a session name to kebab-case. Letters and digits are
// lowercased, spaces and underscores become hyphens, everything else is dropped.
func Slugify(s string) string {
	var b strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else if r == ' ' || r == '_' || r == '-' {
			b.WriteRune('-')
		}
	}

	str := b.String()
	for strings.Contains(str, "--") {
		str = strings.ReplaceAll(str, "--", "-")
	}
	return strings.Trim(str, "-")
}
