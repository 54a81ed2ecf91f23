package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(""))
	assert.Len(t, SHA256Hex("data"), 64)
}

func TestSHA1Hex(t *testing.T) {
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", SHA1Hex(""))
	assert.Len(t, SHA1Hex("data"), 40)
}

func TestHMACHelpers(t *testing.T) {
	hexSig := HMACSHA256Hex("data", "key")
	assert.Len(t, hexSig, 64)
	assert.Equal(t, hexSig, HMACSHA256Hex("data", "key"))
	assert.NotEqual(t, hexSig, HMACSHA256Hex("data", "other-key"))
	assert.NotEqual(t, hexSig, HMACSHA256Hex("other-data", "key"))

	assert.Len(t, HMACSHA512Hex("data", "key"), 128)

	b64Sig := HMACSHA256Base64("data", "key")
	assert.NotEmpty(t, b64Sig)
	assert.NotEqual(t, b64Sig, hexSig)
}

func TestBase64(t *testing.T) {
	encoded := Base64Encode("merchant:secret")
	assert.Equal(t, "bWVyY2hhbnQ6c2VjcmV0", encoded)
	assert.Equal(t, "merchant:secret", Base64Decode(encoded))
	assert.Equal(t, "", Base64Decode("not-base64!!!"))
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("abc123", "abc123"))
	assert.False(t, SecureCompare("abc123", "abc124"))
	assert.False(t, SecureCompare("abc123", "abc12"))
	assert.True(t, SecureCompare("", ""))
}
