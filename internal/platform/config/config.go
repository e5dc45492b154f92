// Package config loads stage params from a YAML file with environment overrides
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sentiprep/internal/platform/logger"
)

// Conf is an env view scoped by a key prefix such as "SENTIPREP_INGEST_"
type Conf struct{ prefix string }

// New creates an unscoped Conf
func New() Conf { return Conf{} }

// Prefix nests p under the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.key(key)))
	return v, v != ""
}

// may returns def when key is unset; an unparsable value is logged and also yields def
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().
			Str("key", c.key(key)).
			Str("value", s).
			Interface("default", def).
			Msg("invalid env value; using default")
		return def
	}
	return v
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	return may(c, key, def, func(s string) (string, error) { return s, nil })
}

// MayInt returns the value or def if missing or invalid
func (c Conf) MayInt(key string, def int) int {
	return may(c, key, def, strconv.Atoi)
}

// MayUint64 returns the value or def if missing or invalid
func (c Conf) MayUint64(key string, def uint64) uint64 {
	return may(c, key, def, func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) })
}

// MayFloat64 returns the value or def if missing or invalid
func (c Conf) MayFloat64(key string, def float64) float64 {
	return may(c, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayDuration reads Go duration syntax ("90s", "2m"); missing or invalid yields def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}
