package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitCSV splits a comma-separated list, trimming entries and dropping blanks.
func SplitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseIDList parses a comma-separated list of integer ids.
func ParseIDList(csv string) ([]int64, error) {
	parts := SplitCSV(csv)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
