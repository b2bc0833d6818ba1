package media

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"blogapi/internal/logger"
	"blogapi/internal/storage"
)

// Directories images are filed under.
const (
	DirProfileImages = "profile_images"
	DirCategories    = "categories"
	DirPosts         = "posts"
)

// Store saves validated uploads and removes replaced ones.
type Store struct {
	storage storage.Storage
	urls    *URLBuilder
	log     *logrus.Entry
}

func NewStore(s storage.Storage, urls *URLBuilder, log *logrus.Entry) *Store {
	return &Store{storage: s, urls: urls, log: log.WithField("component", "media")}
}

// Save writes the upload under dir and returns its relative key.
func (s *Store) Save(ctx context.Context, dir string, u *Upload) (string, error) {
	key := NewKey(dir, u.Ext)
	if _, err := s.storage.Put(ctx, key, u.Body, storage.PutObjectOptions{
		Size:        u.Size,
		ContentType: u.ContentType,
		Metadata:    map[string]string{"original-filename": u.Filename},
	}); err != nil {
		return "", fmt.Errorf("store %s image: %w", dir, err)
	}
	return key, nil
}

// SaveAll stores every upload in order. On failure the ones already written are removed.
func (s *Store) SaveAll(ctx context.Context, dir string, uploads []*Upload) ([]string, error) {
	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key, err := s.Save(ctx, dir, u)
		if err != nil {
			s.Remove(ctx, keys...)
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Remove deletes stored values, which may be keys or legacy absolute URLs.
// Failures are logged and never returned.
func (s *Store) Remove(ctx context.Context, stored ...string) {
	for _, v := range stored {
		key := s.urls.Relative(v)
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
				"event": "media_delete_failed",
				"key":   key,
			}).WithError(err).Warn("failed to delete stored image")
		}
	}
}
