package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"blogapi/internal/logger"
	"blogapi/internal/media"
	"blogapi/internal/storage"
	storeMocks "blogapi/internal/storage/mocks"
)

func testLog() *logrus.Entry {
	return logger.NewWithWriter(io.Discard, "test", "error")
}

func newImages(ms *storeMocks.MockStorage) *media.Store {
	return media.NewStore(ms, media.NewURLBuilder("http://localhost:8080/storage", "http://127.0.0.1:8000/storage/"), testLog())
}

// expectPut makes every Put succeed and records the keys in call order.
func expectPut(ms *storeMocks.MockStorage) *[]string {
	var (
		mu   sync.Mutex
		keys []string
	)
	ms.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
			mu.Lock()
			defer mu.Unlock()
			keys = append(keys, key)
			return storage.ObjectInfo{Key: key}
		}, nil)
	return &keys
}

func pngUpload() *media.Upload {
	return &media.Upload{Filename: "a.png", ContentType: "image/png", Ext: ".png", Size: 4, Body: bytes.NewReader([]byte("\x89PNG"))}
}

type published struct {
	subject string
	payload any
}

type fakePublisher struct {
	sent []published
}

func (f *fakePublisher) Publish(_ context.Context, subject string, payload any) error {
	f.sent = append(f.sent, published{subject: subject, payload: payload})
	return nil
}

func (f *fakePublisher) Close() {}

type memoryCache struct {
	data map[string][]byte
	gets int
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (m *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	m.gets++
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memoryCache) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryCache) Close() error { return nil }

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
