package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// MaxFloorIDLength bounds floor ids accepted from users and backends.
const MaxFloorIDLength = 128

// ValidateFloorID checks that id is safe to embed in file paths, Redis
// channels and MQTT topics.
func ValidateFloorID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidFloorID, "floor id cannot be empty")
	}
	if len(id) > MaxFloorIDLength {
		return New(ErrCodeInvalidFloorID, "floor id too long (max %d characters)", MaxFloorIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFloorID, "floor id contains control characters")
		}
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidFloorID, "floor id cannot contain %q", "..")
	}
	// Path separators and MQTT wildcards.
	if i := strings.IndexAny(id, `/\+#`); i >= 0 {
		return New(ErrCodeInvalidFloorID, "floor id contains invalid character %q", id[i])
	}
	return nil
}

// ValidateRoomID checks a room id carried by a realtime patch.
func ValidateRoomID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidPatch, "room id cannot be empty")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPatch, "room id contains control characters")
		}
	}
	return nil
}

// ValidateURL requires an absolute URL with one of the allowed schemes.
func ValidateURL(raw string, schemes ...string) error {
	if raw == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", raw)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL scheme must be one of %s", strings.Join(schemes, ", "))
}
