package biz

import (
	"fmt"
	"strings"

	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
)

// Incoming describes an upload before it is admitted: the metadata the
// client declared plus the actual byte size.
type Incoming struct {
	// Filename is the original client filename, used as a fallback
	// extension source
	Filename string

	// Extension is the client-declared extension, highest priority if set
	Extension string

	// ContentType is the declared MIME type, lowest-priority extension
	// source
	ContentType string

	// Size is the actual payload size in bytes
	Size int64
}

var mimeImageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

var mimeVideoExtensions = map[string]string{
	"video/mp4":        "mp4",
	"video/webm":       "webm",
	"video/quicktime":  "mov",
	"video/x-msvideo":  "avi",
	"video/x-matroska": "mkv",
}

// ResolveExtension picks the file extension for an incoming upload.
// Priority: declared extension, then the filename suffix, then the
// declared MIME type. Returns "" when no source yields one.
func ResolveExtension(in Incoming, kind Kind) string {
	if ext := normalizeExt(in.Extension); ext != "" {
		return ext
	}
	if idx := strings.LastIndex(in.Filename, "."); idx >= 0 && idx < len(in.Filename)-1 {
		if ext := normalizeExt(in.Filename[idx+1:]); ext != "" {
			return ext
		}
	}
	mimeTable := mimeImageExtensions
	if kind.IsVideo() {
		mimeTable = mimeVideoExtensions
	}
	if ext, ok := mimeTable[strings.ToLower(strings.TrimSpace(in.ContentType))]; ok {
		return ext
	}
	return ""
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
}

// Validate admits or rejects an upload for the given kind. On success it
// returns the resolved extension. Failures carry the offending field so
// the handler can shape a validation response.
func Validate(in Incoming, kind Kind, field string) (string, error) {
	if in.Size <= 0 {
		return "", apperrors.NewField(apperrors.ErrMediaMissingFile, field,
			fmt.Sprintf("The %s field is required.", field))
	}
	if max := kind.MaxSize(); in.Size > max {
		return "", apperrors.NewField(apperrors.ErrMediaTooLarge, field,
			fmt.Sprintf("The %s may not be greater than %d kilobytes.", field, max/1024))
	}

	ext := ResolveExtension(in, kind)
	if ext == "" || !kind.AllowedExtensions()[ext] {
		allowed := allowedList(kind)
		return "", apperrors.NewField(apperrors.ErrMediaInvalidType, field,
			fmt.Sprintf("The %s must be a file of type: %s.", field, allowed))
	}
	return ext, nil
}

func allowedList(kind Kind) string {
	exts := kind.AllowedExtensions()
	ordered := []string{"jpg", "jpeg", "png", "gif", "webp"}
	if kind.IsVideo() {
		ordered = []string{"mp4", "webm", "mov", "avi", "mkv"}
	}
	var parts []string
	for _, e := range ordered {
		if exts[e] {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, ", ")
}
