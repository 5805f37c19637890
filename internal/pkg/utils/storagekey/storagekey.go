package storagekey

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName   = errors.New("display name cannot be empty")
	ErrInvalidName = errors.New("display name format is invalid")
)

// ValidateDisplayName validates a user-supplied model display name.
// It checks for:
// - Empty or whitespace-only names
// - Path separators and traversal sequences (names are labels, not paths)
// - Null bytes (security concern)
func ValidateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}

	if strings.ContainsAny(name, "/\\") {
		return ErrInvalidName
	}

	if strings.Contains(name, "..") {
		return ErrInvalidName
	}

	if strings.Contains(name, "\x00") {
		return ErrInvalidName
	}

	return nil
}

// SanitizeName cleans a display name for use inside an object key,
// replacing characters that are unsafe in S3 keys.
func SanitizeName(name string) string {
	clean := strings.TrimSpace(name)
	clean = strings.ReplaceAll(clean, "\x00", "_")
	clean = strings.ReplaceAll(clean, " ", "_")
	clean = strings.ReplaceAll(clean, "/", "_")
	clean = strings.ReplaceAll(clean, "\\", "_")

	if strings.HasPrefix(clean, ".") {
		clean = "model_" + clean
	}

	return clean
}

// New returns a collision-resistant object key for an uploaded model binary.
// Keys are fresh per invocation: a failed pipeline run never reuses one, so
// a retry can never clobber the orphaned blob of an earlier attempt.
// Layout: models/<tenant>/<yyyy>/<mm>/<dd>/<uuid>/<sanitized-name>
func New(tenantID uuid.UUID, displayName string) string {
	now := time.Now().UTC()
	return path.Join(
		"models",
		tenantID.String(),
		fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day()),
		uuid.NewString(),
		SanitizeName(displayName),
	)
}
