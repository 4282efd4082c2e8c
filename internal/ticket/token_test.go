package ticket

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationKeyDeterministic(t *testing.T) {
	a := VerificationKey("abc-123456789", "jane@gmail.com", "2026-08-28")
	b := VerificationKey("abc-123456789", "jane@gmail.com", "2026-08-28")
	assert.Equal(t, a, b)
}

func TestVerificationKeyFormat(t *testing.T) {
	key := VerificationKey("abc-123456789", "jane@gmail.com", "2026-08-28")

	parts := strings.Split(key, "-")
	assert.Equal(t, "SEC", parts[0])
	assert.True(t, strings.HasSuffix(key, "456789"), "suffix must be the last 6 of the id, got %q", key)
	assert.Equal(t, key, strings.ToUpper(key))
}

func TestVerificationKeyShortID(t *testing.T) {
	key := VerificationKey("r1", "jane@gmail.com", "2026-08-28")
	assert.True(t, strings.HasSuffix(key, "-r1"))
}

func TestVerificationKeySensitivity(t *testing.T) {
	base := VerificationKey("abc-123456789", "jane@gmail.com", "2026-08-28")
	otherEmail := VerificationKey("abc-123456789", "john@gmail.com", "2026-08-28")
	otherDate := VerificationKey("abc-123456789", "jane@gmail.com", "2026-08-29")
	assert.NotEqual(t, base, otherEmail)
	assert.NotEqual(t, base, otherDate)
}

func TestQRPayload(t *testing.T) {
	payload := QRPayload("abc-123", "SEC-1F2E3D-abc123")
	assert.True(t, strings.HasPrefix(payload, "https://reserve.pulse-nightclub.com/verify?"))
	assert.Contains(t, payload, "id=abc-123")
	assert.Contains(t, payload, "auth=SEC-1F2E3D-abc123")
}
