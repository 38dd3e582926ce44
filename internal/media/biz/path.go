package biz

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
)

const filenameTokenLength = 32

const filenameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Dir returns the owner-scoped directory for a kind, without a trailing
// slash, e.g. "posts/42".
func Dir(kind Kind, ownerID int64) string {
	return fmt.Sprintf("%s/%d", kind.Root(), ownerID)
}

// NewKey builds a full object key for a fresh upload: the owner
// directory plus a random 32-character filename with the resolved
// extension.
func NewKey(kind Kind, ownerID int64, ext string) (string, error) {
	token, err := randomToken(filenameTokenLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate object name: %w", err)
	}
	return fmt.Sprintf("%s/%s.%s", Dir(kind, ownerID), token, ext), nil
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = filenameAlphabet[int(b)%len(filenameAlphabet)]
	}
	return string(buf), nil
}

// OwnsKey reports whether the object key lives under the given owner's
// directory. The owner id must match a whole path segment; "posts/413"
// does not own "posts/41/x.jpg".
func OwnsKey(key string, ownerID int64) bool {
	owner := strconv.FormatInt(ownerID, 10)
	segments := strings.Split(key, "/")
	// Keys are laid out as root/ownerId/filename; the owner segment is
	// always the second one.
	if len(segments) < 3 {
		return false
	}
	return segments[1] == owner
}

// KeyFromURL resolves a public URL back to its object key by stripping
// the public base prefix. Returns "" when the URL does not belong to
// this store.
func KeyFromURL(rawURL, publicBase string) string {
	base := strings.TrimSuffix(publicBase, "/") + "/"
	if !strings.HasPrefix(rawURL, base) {
		return ""
	}
	key := strings.TrimPrefix(rawURL, base)
	// Presigned URLs carry a query string; the key stops before it.
	if idx := strings.Index(key, "?"); idx >= 0 {
		key = key[:idx]
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return ""
	}
	return key
}
