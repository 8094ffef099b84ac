package settings

import (
	"strconv"
	"strings"
)

func parseInt(value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseBool accepts only "true" and "false", ignoring case.
func parseBool(value string) (bool, bool) {
	switch {
	case strings.EqualFold(value, "true"):
		return true, true
	case strings.EqualFold(value, "false"):
		return false, true
	default:
		return false, false
	}
}
