package util

import "strings"

// NormalizeKey lowercases and trims a string for use as a consistent lookup key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// JoinLines joins the non-empty entries of lines with newlines. Optional
// directives are expressed as empty strings so they vanish from the output
// without leaving blank lines behind.
func JoinLines(lines ...string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

// If returns s when cond holds and the empty string otherwise.
func If(cond bool, s string) string {
	if cond {
		return s
	}
	return ""
}

// ShellQuote returns s as a single shell word. Strings made only of
// characters that need no quoting are returned unchanged.
func ShellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuote) == -1 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:@%+=,", r)
}
