package utils

import (
	"os"
	"strconv"
	"strings"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func GetEnvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvTrimmedOrDefault(key, defaultValue string) string {
	if v := GetEnvTrimmed(key); v != "" {
		return v
	}

	return defaultValue
}

// GetEnvBool parses key with strconv.ParseBool. Unset or malformed values yield defaultValue.
func GetEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(GetEnvTrimmed(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// GetEnvNonNegativeInt returns defaultValue when key is unset, malformed or negative.
func GetEnvNonNegativeInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(GetEnvTrimmed(key))
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
