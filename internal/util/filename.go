package util

import "strings"

// SanitizeFileName replaces whitespace runs with underscores so stream and
// subject names can be used in output file names.
func SanitizeFileName(name string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(name)), "_")
}
