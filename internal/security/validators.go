package security

import "strings"

// MaxDisplayNameLength caps participant display names on the wire.
const MaxDisplayNameLength = 24

// SanitizeDisplayName trims whitespace, strips angle brackets to keep
// names inert when rendered, and caps the length in characters, not
// bytes, so a multi-byte name is never cut mid-rune. An empty result
// means the name should be ignored by the caller.
func SanitizeDisplayName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("<", "", ">", "").Replace(name)
	if runes := []rune(name); len(runes) > MaxDisplayNameLength {
		name = string(runes[:MaxDisplayNameLength])
	}
	return name
}
