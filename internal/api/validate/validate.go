package validate

import (
	"fmt"
	"strconv"
	"strings"
)

const maxNameLen = 100

// CollectionName validates a user-facing collection name: non-empty after
// trimming, at most 100 bytes.
func CollectionName(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(v) > maxNameLen {
		return fmt.Errorf("collection name exceeds %d characters", maxNameLen)
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field, v string, limit int) error {
	if len(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// Limit parses a query-string limit with a default and an upper bound.
func Limit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if n > max {
		return max, nil
	}
	return n, nil
}
