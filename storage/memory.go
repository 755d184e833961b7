package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryUploader keeps uploaded objects in memory.
type MemoryUploader struct {
	mu            sync.Mutex
	publicBaseURL string
	objects       map[string]MemoryObject
}

type MemoryObject struct {
	ContentType string
	Data        []byte
}

func NewMemoryUploader(publicBaseURL string) *MemoryUploader {
	return &MemoryUploader{
		publicBaseURL: publicBaseURL,
		objects:       make(map[string]MemoryObject),
	}
}

func (u *MemoryUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read upload body (key: %s): %w", key, err)
	}

	u.mu.Lock()
	u.objects[key] = MemoryObject{ContentType: contentType, Data: buf.Bytes()}
	u.mu.Unlock()

	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *MemoryUploader) GetPublicURL(key string) string {
	return PublicURL(u.publicBaseURL, key)
}

// Object returns a stored object by key.
func (u *MemoryUploader) Object(key string) (MemoryObject, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	obj, ok := u.objects[key]
	return obj, ok
}

func (u *MemoryUploader) Keys() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	keys := make([]string, 0, len(u.objects))
	for k := range u.objects {
		keys = append(keys, k)
	}
	return keys
}
