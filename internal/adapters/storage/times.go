package storage

import (
	"fmt"
	"time"
)

// ParseStoredTime parses a timestamp column written by any of the stores.
// Accepts RFC3339 with or without fractional seconds.
func ParseStoredTime(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
