package gateway

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
)

// Signing helpers shared by the gateways. Each provider picks its own
// recipe (HMAC-SHA256 over concatenated fields, SHA-256 over body+secret,
// SHA-1 token headers); these helpers only supply the primitives.

// HMACSHA256Hex returns the lowercase hex HMAC-SHA256 of data
func HMACSHA256Hex(data, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// HMACSHA512Hex returns the lowercase hex HMAC-SHA512 of data
func HMACSHA512Hex(data, key string) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// HMACSHA256Base64 returns the base64 of the raw HMAC-SHA256 of data
func HMACSHA256Base64(data, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SHA1Hex returns the lowercase hex SHA-1 of data
func SHA1Hex(data string) string {
	sum := sha1.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

// SHA1Base64 returns the base64 of the raw SHA-1 of data
func SHA1Base64(data string) string {
	sum := sha1.Sum([]byte(data))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// SHA256Hex returns the lowercase hex SHA-256 of data
func SHA256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// Base64Encode encodes data with standard base64
func Base64Encode(data string) string {
	return base64.StdEncoding.EncodeToString([]byte(data))
}

// Base64Decode decodes standard base64, returning empty string on bad input
func Base64Decode(data string) string {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// SecureCompare compares two signature strings in constant time.
// Callback verification must use this, never ==.
func SecureCompare(expected, actual string) bool {
	return hmac.Equal([]byte(expected), []byte(actual))
}
