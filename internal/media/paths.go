// Package media resolves story cover and album image references and computes
// blurhash placeholders for local images.
package media

import "strings"

// FallbackCover is shown for stories without a cover or whose cover fails to load.
const FallbackCover = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' width='400' height='250' viewBox='0 0 400 250'%3E%3Crect width='400' height='250' fill='%231e293b'/%3E%3Ctext x='50%25' y='50%25' dominant-baseline='middle' text-anchor='middle' fill='%23475569' font-family='sans-serif' font-size='20'%3ENO COVER%3C/text%3E%3C/svg%3E"

// FallbackImage is shown for album entries whose image fails to load.
const FallbackImage = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' width='300' height='300' viewBox='0 0 300 300'%3E%3Crect width='300' height='300' fill='%231e293b'/%3E%3Ctext x='50%25' y='50%25' dominant-baseline='middle' text-anchor='middle' fill='%23475569' font-family='sans-serif' font-size='18'%3ESIN IMAGEN%3C/text%3E%3C/svg%3E"

// IsRemote reports whether ref is a network address or inline data.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http") || strings.HasPrefix(ref, "data:")
}

// IsRooted reports whether ref is already a usable local path: absolute,
// explicitly relative, or already under dir.
func IsRooted(ref, dir string) bool {
	switch {
	case strings.HasPrefix(ref, "/"), strings.HasPrefix(ref, "./"), strings.HasPrefix(ref, "../"):
		return true
	case dir != "" && strings.HasPrefix(ref, dir):
		return true
	default:
		return false
	}
}

// ResolvePath turns a stored image reference into an image source. Network
// addresses, inline data and rooted paths are returned unchanged; anything else
// is a bare filename and gets dir prefixed. Empty input stays empty.
func ResolvePath(ref, dir string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || IsRemote(ref) || IsRooted(ref, dir) {
		return ref
	}
	return dir + ref
}

// ResolveCover resolves a story cover, substituting FallbackCover when empty.
func ResolveCover(cover, dir string) string {
	if resolved := ResolvePath(cover, dir); resolved != "" {
		return resolved
	}
	return FallbackCover
}
