package errors

import (
	"strings"
	"unicode"
)

// ValidateInstanceName validates a board instance name for safety and correctness.
// Instance names become file names in the file store and document keys in the
// mongo store, so the rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., /, \)
//   - Maximum length of 128 characters
func ValidateInstanceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "board name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "board name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "board name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "board name contains invalid characters: %q", pattern)
		}
	}

	return nil
}
