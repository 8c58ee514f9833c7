package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// PIILevel defines how much user content reaches the logs
type PIILevel string

const (
	// PIILevelNone redacts all user content
	PIILevelNone PIILevel = "none"
	// PIILevelHashed hashes PII with a salt
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull performs no sanitization
	PIILevelFull PIILevel = "full"
)

const redacted = "[REDACTED]"

var (
	secretKeys  = map[string]struct{}{"token": {}, "password": {}, "authorization": {}}
	contentKeys = map[string]struct{}{"content": {}}
	userKeys    = map[string]struct{}{
		"userid": {}, "senderid": {}, "receiverid": {}, "userid1": {}, "userid2": {},
	}
)

// Sanitizer scrubs session tokens and user content before they are logged.
type Sanitizer struct {
	level PIILevel
	salt  string

	emailPattern      *regexp.Regexp
	phonePattern      *regexp.Regexp
	creditCardPattern *regexp.Regexp
}

// ParseLevel converts a configured value into a PIILevel, defaulting to hashed.
func ParseLevel(raw string) PIILevel {
	switch PIILevel(strings.ToLower(strings.TrimSpace(raw))) {
	case PIILevelNone:
		return PIILevelNone
	case PIILevelFull:
		return PIILevelFull
	default:
		return PIILevelHashed
	}
}

// NewSanitizer creates a sanitizer salted with the given value
func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	return &Sanitizer{
		level:             level,
		salt:              salt,
		emailPattern:      regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		phonePattern:      regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		creditCardPattern: regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`),
	}
}

// Level reports the configured level.
func (s *Sanitizer) Level() PIILevel {
	return s.level
}

// SanitizeContent sanitizes a comment or message body
func (s *Sanitizer) SanitizeContent(input string) string {
	switch s.level {
	case PIILevelNone:
		return redacted
	case PIILevelFull:
		return input
	default:
		return s.hashPII(input)
	}
}

// SanitizeUserID sanitizes a user id
func (s *Sanitizer) SanitizeUserID(userID string) string {
	if userID == "" {
		return ""
	}

	switch s.level {
	case PIILevelNone:
		return redacted
	case PIILevelFull:
		return userID
	default:
		return s.hash(userID)
	}
}

// SanitizeToken never returns the token itself, regardless of level.
func (s *Sanitizer) SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	return "[TOKEN:" + s.hash(token) + "]"
}

// SanitizeBody returns a copy of a JSON-like request body that is safe to log.
// Secret fields are always masked; content and user id fields follow the level.
func (s *Sanitizer) SanitizeBody(body map[string]any) map[string]any {
	if body == nil {
		return nil
	}

	result := make(map[string]any, len(body))
	for k, v := range body {
		key := strings.ToLower(k)
		str, isString := v.(string)
		switch {
		case inSet(secretKeys, key):
			if isString {
				result[k] = s.SanitizeToken(str)
			} else {
				result[k] = redacted
			}
		case isString && inSet(contentKeys, key):
			result[k] = s.SanitizeContent(str)
		case isString && inSet(userKeys, key):
			result[k] = s.SanitizeUserID(str)
		default:
			result[k] = v
		}
	}
	return result
}

func (s *Sanitizer) hashPII(input string) string {
	result := s.emailPattern.ReplaceAllStringFunc(input, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(match))
	})
	result = s.creditCardPattern.ReplaceAllString(result, "[CC:REDACTED]")
	result = s.phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", s.hash(match))
	})
	return result
}

// hash returns the first 8 hex chars of a salted SHA-256
func (s *Sanitizer) hash(data string) string {
	h := sha256.New()
	h.Write([]byte(data + s.salt))
	return hex.EncodeToString(h.Sum(nil))[:8]
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
