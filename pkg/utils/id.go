package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenShortID returns an 8-character URL-safe identifier, used as the room
// join code.
func GenShortID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
