package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Lenient helpers for optional tuning knobs: malformed values fall back to
// the default instead of failing start-up.

func envStr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	if b, ok := parseBool(os.Getenv(k)); ok {
		return b
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := atoiStrict(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k))); err == nil {
		return dur
	}
	return d
}

func parseBool(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func atoiStrict(v string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(v))
}
