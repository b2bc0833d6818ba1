package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"blogapi/internal/cache"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

type TagService interface {
	List(ctx context.Context) ([]model.Tag, error)
	Get(ctx context.Context, id int64) (*model.Tag, error)
	Create(ctx context.Context, name string) (*model.Tag, error)
	// Update renames the tag when name is non-nil; uniqueness ignores the tag itself.
	Update(ctx context.Context, id int64, name *string) (*model.Tag, error)
	Delete(ctx context.Context, id int64) error
}

type tagService struct {
	repo  repository.TagRepository
	cache cache.Cache
	log   *logrus.Entry
}

func NewTagService(repo repository.TagRepository, c cache.Cache, log *logrus.Entry) TagService {
	return &tagService{repo: repo, cache: c, log: log.WithField("component", "tag")}
}

func (s *tagService) List(ctx context.Context) ([]model.Tag, error) {
	var items []model.Tag
	if hit := cacheGet(ctx, s.cache, s.log, cache.KeyTags, &items); hit {
		return items, nil
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	cacheSet(ctx, s.cache, s.log, cache.KeyTags, items)
	return items, nil
}

func (s *tagService) Get(ctx context.Context, id int64) (*model.Tag, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Tag")
	}
	return t, nil
}

func (s *tagService) Create(ctx context.Context, name string) (*model.Tag, error) {
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}
	t, err := s.repo.Create(ctx, &model.Tag{Name: name})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidField("name", nameTaken)
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	cacheDel(ctx, s.cache, s.log, cache.KeyTags)
	return t, nil
}

func (s *tagService) Update(ctx context.Context, id int64, name *string) (*model.Tag, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Tag")
	}
	if name == nil {
		return current, nil
	}
	if err := s.checkName(ctx, *name, id); err != nil {
		return nil, err
	}

	next := *current
	next.Name = *name
	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidField("name", nameTaken)
		}
		return nil, fmt.Errorf("update tag: %w", notFoundOr(err, "Tag"))
	}
	cacheDel(ctx, s.cache, s.log, cache.KeyTags)
	return updated, nil
}

func (s *tagService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "Tag")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	cacheDel(ctx, s.cache, s.log, cache.KeyTags)
	return nil
}

func (s *tagService) checkName(ctx context.Context, name string, exceptID int64) error {
	taken, err := s.repo.NameTaken(ctx, name, exceptID)
	if err != nil {
		return fmt.Errorf("check tag name: %w", err)
	}
	if taken {
		return invalidField("name", nameTaken)
	}
	return nil
}
