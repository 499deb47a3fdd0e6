package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Object is a stored artifact and its public URL.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Store persists artifacts and returns where they can be fetched from.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (Object, error)
}

// UploadKey names a user-supplied file: uploads/{userId}/{uuid}.{ext}.
func UploadKey(userID, ext string) string {
	return objectKey("uploads", userID, ext)
}

// GeneratedKey names a produced artifact (image or html): generated/{userId}/{uuid}.{ext}.
func GeneratedKey(userID, ext string) string {
	return objectKey("generated", userID, ext)
}

func objectKey(prefix, userID, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s/%s.%s", prefix, userID, uuid.NewString(), ext)
}
