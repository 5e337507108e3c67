package adapter

import "strings"

// NormPath normalizes a logical path for consistent lookups across storage
// systems:
//   - replace all backward slash characters with forward slashes
//   - strip leading and trailing "/" characters
//   - collapse any run of "/" characters into one
func NormPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}
