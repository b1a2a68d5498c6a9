package media

import (
	"path/filepath"
	"strings"
)

// TypeFromFilename infers a MIME type from the file name's extension.
// The match is case-insensitive and best-effort: file contents are not
// inspected, and unknown or missing extensions fall back to JPEG.
func TypeFromFilename(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
