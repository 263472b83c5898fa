package service

import "strings"

// shortCodeMax is the pattern length at or below which a pattern matches as
// a substring. Short codes like "EE" are meant to match every engineering
// cadre variant ("EEXEN", "SEEXEN"); this looseness is intentional and has
// to stay consistent with how the legacy role groups were authored.
const shortCodeMax = 4

// MatchRole reports whether a role code satisfies any of the patterns.
// Matching is case-insensitive. Three pattern forms are supported:
//
//   - trailing "*": prefix match ("EE*" matches "EEXEN", not "XEE")
//   - length <= 4:  substring match ("EE" matches "SEEXEN")
//   - otherwise:    exact match
//
// An empty role code matches nothing. This is the single authorization
// primitive for stage gating; call sites must not reimplement it inline.
func MatchRole(roleCode string, patterns []string) bool {
	roleCode = strings.ToUpper(strings.TrimSpace(roleCode))
	if roleCode == "" {
		return false
	}
	for _, pattern := range patterns {
		pattern = strings.ToUpper(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if strings.HasSuffix(pattern, "*") {
			if strings.HasPrefix(roleCode, strings.TrimSuffix(pattern, "*")) {
				return true
			}
			continue
		}
		if len(pattern) <= shortCodeMax {
			if strings.Contains(roleCode, pattern) {
				return true
			}
			continue
		}
		if roleCode == pattern {
			return true
		}
	}
	return false
}
