package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxSourceBytes bounds the size of a single graph description accepted by
// the HTTP API and the watch loop.
const MaxSourceBytes = 4 << 20

// ValidateSource checks a graph description before it is parsed.
// It rejects empty text, oversized input and NUL bytes; everything else is
// left to the parser, which reports positions.
func ValidateSource(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidInput, "graph description is empty")
	}
	if len(text) > MaxSourceBytes {
		return New(ErrCodeInvalidInput, "graph description too large (max %d bytes)", MaxSourceBytes)
	}
	if strings.IndexByte(text, 0) >= 0 {
		return New(ErrCodeInvalidInput, "graph description contains a NUL byte")
	}
	return nil
}

// ValidateOutputName validates a file name derived for a converted diagram.
// It must be a simple basename without path components.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 255 characters
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "output name cannot be empty")
	}
	if len(name) > 255 {
		return New(ErrCodeInvalidInput, "output name too long (max 255 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidInput, "output name cannot contain path separators")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidInput, "output name cannot be %q", name)
	}
	return nil
}

// ValidateFormat checks an output format name against the supported set.
func ValidateFormat(format string, supported []string) error {
	for _, s := range supported {
		if format == s {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unknown format %q (want one of %s)", format, strings.Join(supported, ", "))
}

// redisURLRegex matches the schemes accepted by redis.ParseURL.
var redisURLRegex = regexp.MustCompile(`^(redis|rediss|unix)://\S+$`)

// ValidateRedisURL validates a redis connection URL for the document cache.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "redis URL cannot be empty")
	}
	if !redisURLRegex.MatchString(rawURL) {
		return New(ErrCodeInvalidConfig, "redis URL must use redis://, rediss:// or unix://")
	}
	return nil
}
