package fee

import "strings"

// normalizeAcademicYear canonicalizes year labels for comparison. The app
// historically stored both "2024-2025" and "2024-25"; the short form wins.
func normalizeAcademicYear(year string) string {
	year = strings.TrimSpace(year)
	if year == "" {
		return ""
	}
	parts := strings.SplitN(year, "-", 2)
	if len(parts) == 2 && len(parts[1]) == 4 {
		return parts[0] + "-" + parts[1][2:]
	}
	return year
}

// yearMatches reports whether a stored year label applies to the requested
// one. Rows with no year recorded apply to every year.
func yearMatches(stored, requested string) bool {
	stored = normalizeAcademicYear(stored)
	if stored == "" {
		return true
	}
	return stored == normalizeAcademicYear(requested)
}
