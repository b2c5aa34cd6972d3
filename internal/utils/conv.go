package utils

import (
	"strconv"
)

// StringToUint parses a numeric route parameter, returning 0 if invalid.
// 0 is never a valid row id, so lookups on it fall through to not-found.
func StringToUint(s string) uint {
	i, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(i)
}
