package util

import "strings"

const maxSlugLen = 40

// Slug lowercases s and collapses every run of characters outside [a-z0-9]
// into a single hyphen. The result never starts or ends with a hyphen.
func Slug(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			if b.Len() >= maxSlugLen {
				break
			}
			continue
		}
		pendingDash = true
	}
	return strings.TrimRight(b.String(), "-")
}
