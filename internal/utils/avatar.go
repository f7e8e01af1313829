package utils

import (
	"encoding/hex"
	"net/url"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const avatarBase = "https://ui-avatars.com/api/"

// GuestAvatarURL returns a placeholder avatar for a guest. The same name
// always gets the same background colour.
func GuestAvatarURL(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Guest"
	}
	sum := blake2b.Sum256([]byte(strings.ToLower(name)))

	q := url.Values{}
	q.Set("name", name)
	q.Set("background", hex.EncodeToString(sum[:3]))
	q.Set("color", "fff")
	q.Set("size", "40")
	return avatarBase + "?" + q.Encode()
}
