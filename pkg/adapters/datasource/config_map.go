package datasource

import (
	"fmt"
	"strconv"
)

// StringValue returns config[key] when it is a string, else "".
func StringValue(config map[string]any, key string) string {
	if s, ok := config[key].(string); ok {
		return s
	}
	return ""
}

// RequiredString returns config[key] or an error naming the missing key.
func RequiredString(config map[string]any, key string) (string, error) {
	s := StringValue(config, key)
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

// IntValue reads an integer that may arrive as int, float64 (JSON) or string.
func IntValue(config map[string]any, key string, def int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64: // JSON numbers are float64
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
