package errors

import (
	"strings"
	"unicode"
)

// maxNameLen bounds segment and marker names.
const maxNameLen = 4096

// ValidateSegmentName checks that name can be used as a marker name in the
// tab-separated and whitespace-separated input formats: it must be non-empty
// and contain no whitespace or control characters.
func ValidateSegmentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "segment name cannot be empty")
	}
	if len(name) > maxNameLen {
		return New(ErrCodeInvalidName, "segment name too long (max %d characters)", maxNameLen)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "segment name %q contains whitespace or control characters", name)
		}
	}
	return nil
}

// ValidatePath validates an input or output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes
//   - Must not end in a path separator
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "path contains null byte")
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "path %q names a directory", path)
	}
	return nil
}
