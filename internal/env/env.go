// Package env provides typed access to environment variables.
package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetString returns the value of key, or fallback if unset or blank.
func GetString(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return fallback
	}
	return strings.TrimSpace(val)
}

// GetInt returns the integer value of key, or fallback if unset or malformed.
func GetInt(key string, fallback int) int {
	val := GetString(key, "")
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

// GetBool returns the boolean value of key, or fallback if unset or malformed.
func GetBool(key string, fallback bool) bool {
	val := GetString(key, "")
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

// GetMillis reads key as a number of milliseconds.
func GetMillis(key string, fallback time.Duration) time.Duration {
	ms := GetInt(key, -1)
	if ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
