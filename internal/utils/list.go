package utils

func IsStringInSlice(s string, slice []string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// ToggleString adds s to the slice when enabled and removes it otherwise,
// preserving the order of the remaining entries.
func ToggleString(slice []string, s string, enabled bool) []string {
	if enabled {
		if IsStringInSlice(s, slice) {
			return slice
		}
		return append(slice, s)
	}
	out := make([]string, 0, len(slice))
	for _, v := range slice {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// UniqueStrings keeps the first occurrence of every value.
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, exists := seen[v]; !exists {
			seen[v] = struct{}{}
			unique = append(unique, v)
		}
	}
	return unique
}
