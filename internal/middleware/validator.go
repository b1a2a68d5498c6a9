package middleware

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

const maxFilenameLength = 255

// ValidateUploadFilename rejects filenames that could break storage
// keys or smuggle path traversal into the bucket namespace.
func ValidateUploadFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(name) > maxFilenameLength {
		return fmt.Errorf("filename too long (max %d characters)", maxFilenameLength)
	}

	dangerous := []string{"..", "/", "\\", "\x00", "\n", "\r"}
	for _, d := range dangerous {
		if strings.Contains(name, d) {
			return fmt.Errorf("filename contains invalid characters")
		}
	}
	return nil
}

// ValidateAnalysisID checks that an identifier is a well-formed UUID.
func ValidateAnalysisID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid analysis id: %w", err)
	}
	return nil
}
