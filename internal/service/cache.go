package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"blogapi/internal/cache"
	"blogapi/internal/logger"
)

// The cache is an optimisation only: errors are logged and treated as a miss.

func cacheGet(ctx context.Context, c cache.Cache, log *logrus.Entry, key string, dest any) bool {
	hit, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		logger.FromContext(ctx, log).WithFields(logrus.Fields{"event": "cache_get_failed", "key": key}).WithError(err).Warn("cache read failed")
		return false
	}
	return hit
}

func cacheSet(ctx context.Context, c cache.Cache, log *logrus.Entry, key string, value any) {
	if err := c.SetJSON(ctx, key, value); err != nil {
		logger.FromContext(ctx, log).WithFields(logrus.Fields{"event": "cache_set_failed", "key": key}).WithError(err).Warn("cache write failed")
	}
}

func cacheDel(ctx context.Context, c cache.Cache, log *logrus.Entry, key string) {
	if err := c.Del(ctx, key); err != nil {
		logger.FromContext(ctx, log).WithFields(logrus.Fields{"event": "cache_del_failed", "key": key}).WithError(err).Warn("cache invalidation failed")
	}
}
