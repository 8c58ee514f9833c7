package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want PIILevel
	}{
		{"none", PIILevelNone},
		{" FULL ", PIILevelFull},
		{"hashed", PIILevelHashed},
		{"", PIILevelHashed},
		{"bogus", PIILevelHashed},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.raw))
		})
	}
}

func TestSanitizeContent(t *testing.T) {
	input := "ping me at jane@example.com or 555-123-4567"

	assert.Equal(t, "[REDACTED]", NewSanitizer(PIILevelNone, "salt").SanitizeContent(input))
	assert.Equal(t, input, NewSanitizer(PIILevelFull, "salt").SanitizeContent(input))

	hashed := NewSanitizer(PIILevelHashed, "salt").SanitizeContent(input)
	assert.NotContains(t, hashed, "jane@example.com")
	assert.NotContains(t, hashed, "4567")
	assert.Contains(t, hashed, "[EMAIL:")
	assert.Contains(t, hashed, "[PHONE:")
	assert.Contains(t, hashed, "ping me at")
}

func TestSanitizeContent_CreditCard(t *testing.T) {
	s := NewSanitizer(PIILevelHashed, "salt")
	result := s.SanitizeContent("card 4111 1111 1111 1111 thanks")
	assert.Equal(t, "card [CC:REDACTED] thanks", result)
}

func TestSanitizeUserID(t *testing.T) {
	assert.Equal(t, "", NewSanitizer(PIILevelHashed, "salt").SanitizeUserID(""))
	assert.Equal(t, "[REDACTED]", NewSanitizer(PIILevelNone, "salt").SanitizeUserID("u1"))
	assert.Equal(t, "u1", NewSanitizer(PIILevelFull, "salt").SanitizeUserID("u1"))

	hashed := NewSanitizer(PIILevelHashed, "salt").SanitizeUserID("u1")
	assert.Len(t, hashed, 8)
	assert.NotEqual(t, "u1", hashed)
}

func TestHash_IsSaltedAndStable(t *testing.T) {
	a := NewSanitizer(PIILevelHashed, "salt-a")
	b := NewSanitizer(PIILevelHashed, "salt-b")

	assert.Equal(t, a.SanitizeUserID("u1"), a.SanitizeUserID("u1"))
	assert.NotEqual(t, a.SanitizeUserID("u1"), b.SanitizeUserID("u1"))
}

func TestSanitizeBody_TokenNeverLogged(t *testing.T) {
	for _, level := range []PIILevel{PIILevelNone, PIILevelHashed, PIILevelFull} {
		t.Run(string(level), func(t *testing.T) {
			s := NewSanitizer(level, "salt")
			out := s.SanitizeBody(map[string]any{
				"token":   "secret-session-token",
				"content": "hello",
			})
			require.NotNil(t, out)
			assert.NotContains(t, out["token"], "secret-session-token")
			assert.Contains(t, out["token"], "[TOKEN:")
		})
	}
}

func TestSanitizeBody_Fields(t *testing.T) {
	s := NewSanitizer(PIILevelNone, "salt")
	in := map[string]any{
		"collectionId": "c1",
		"userId":       "u1",
		"content":      "hello",
		"count":        3,
	}

	out := s.SanitizeBody(in)

	assert.Equal(t, "c1", out["collectionId"])
	assert.Equal(t, "[REDACTED]", out["userId"])
	assert.Equal(t, "[REDACTED]", out["content"])
	assert.Equal(t, 3, out["count"])
	assert.Equal(t, "hello", in["content"], "input must not be mutated")
	assert.Nil(t, s.SanitizeBody(nil))
}
