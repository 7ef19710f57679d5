package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrUnsupportedContentType is returned for uploads the tracker does not accept.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// Object key prefixes, one per kind of upload.
const (
	prefixScreenshots = "screenshots"
	prefixReports     = "assessment-reports"
)

var screenshotExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/heic": "heic",
	"image/webp": "webp",
}

// ScreenshotKey builds a fresh object key for a workout proof screenshot.
func ScreenshotKey(memberID, contentType string) (string, error) {
	ext, ok := screenshotExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	return fmt.Sprintf("%s/%s/%s.%s", prefixScreenshots, memberID, uuid.NewString(), ext), nil
}

// ReportKey builds a fresh object key for an official assessment PDF.
func ReportKey(memberID, contentType string) (string, error) {
	if strings.ToLower(contentType) != "application/pdf" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	return fmt.Sprintf("%s/%s/%s.pdf", prefixReports, memberID, uuid.NewString()), nil
}

// OwnsScreenshot reports whether key was issued by ScreenshotKey for memberID.
func OwnsScreenshot(memberID, key string) bool {
	return strings.HasPrefix(key, prefixScreenshots+"/"+memberID+"/")
}

// OwnsReport reports whether key was issued by ReportKey for memberID.
func OwnsReport(memberID, key string) bool {
	return strings.HasPrefix(key, prefixReports+"/"+memberID+"/")
}
