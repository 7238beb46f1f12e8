package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders d in its largest whole unit (s, m, h or d).
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// ParseSettingValue turns a command line argument into a setting value:
// true/false become bools, numbers become float64, "null" resets the
// setting, and anything else is kept as a string.
func ParseSettingValue(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

// ParseUserIDs parses positive user IDs, accepting comma-separated lists
// inside each argument.
func ParseUserIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid user ID '%s': must be a positive integer", part)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one user ID is required")
	}
	return ids, nil
}
