package file

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baytfix/core/internal/config"
)

// buildFileName generates a collision-resistant filename that preserves the
// original extension.
func buildFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" || len(ext) > 10 {
		ext = ".dat"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ext
}

// buildObjectKey namespaces S3 objects by type and upload month.
func buildObjectKey(typ, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s", typ, now.Format("2006/01"), filename)
}

// validateUpload checks extension and size against the configured limits.
// Limits are server-side authority regardless of what clients enforce.
func validateUpload(filename string, size int64, cfg config.UploadConfig) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(filename))), ".")
	if ext == "" {
		return fmt.Errorf("file extension is required")
	}
	if cfg.MaxSizeMB > 0 && size > int64(cfg.MaxSizeMB)*1024*1024 {
		return fmt.Errorf("file size exceeds %dMB", cfg.MaxSizeMB)
	}
	if len(cfg.AllowedFormats) == 0 {
		return nil
	}
	for _, item := range cfg.AllowedFormats {
		if ext == strings.TrimPrefix(strings.ToLower(strings.TrimSpace(item)), ".") {
			return nil
		}
	}
	return fmt.Errorf("file format .%s is not allowed", ext)
}

// detectContentType sniffs the MIME type from the fallback header, extension,
// or raw payload bytes, in that priority order.
func detectContentType(filename string, payload []byte, fallback string) string {
	contentType := strings.TrimSpace(fallback)
	if contentType != "" {
		return contentType
	}
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename))); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	if len(payload) > 0 {
		return http.DetectContentType(payload)
	}
	return "application/octet-stream"
}

// normalizeType lower-cases and validates raw as a safe path segment.
func normalizeType(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || !isSafeSegment(raw) {
		return ""
	}
	return raw
}

// normalizeTypeDefault calls normalizeType and falls back to def when empty.
func normalizeTypeDefault(raw, def string) string {
	typ := normalizeType(raw)
	if typ != "" {
		return typ
	}
	return def
}

// safeName returns the base name of raw only when it passes isSafeSegment.
func safeName(raw string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return ""
	}
	if !isSafeSegment(name) {
		return ""
	}
	return name
}

func isSafeSegment(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		return false
	}
	return true
}
