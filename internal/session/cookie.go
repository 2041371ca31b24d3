package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// CookieCodec signs session IDs for transport in the cookie. The value is
// "<id>.<hmac>"; a bad signature is treated the same as no cookie at all.
type CookieCodec struct {
	key []byte
}

// NewCookieCodec derives a signing key from the configured session secret.
func NewCookieCodec(secret string) *CookieCodec {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("session-cookie"))
	key := make([]byte, 32)
	_, _ = io.ReadFull(kdf, key)
	return &CookieCodec{key: key}
}

func (c *CookieCodec) Encode(id string) string {
	return id + "." + c.sign(id)
}

// Decode returns the session ID carried by a cookie value, or false when
// the value is malformed or its signature does not verify.
func (c *CookieCodec) Decode(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(id))) {
		return "", false
	}
	return id, true
}

func (c *CookieCodec) sign(id string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
