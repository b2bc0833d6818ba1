package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"blogapi/internal/cache"
	"blogapi/internal/media"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// CategoryInput holds only the fields present in the request.
type CategoryInput struct {
	Name  *string
	Image *media.Upload
}

type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	Create(ctx context.Context, name string, image *media.Upload) (*model.Category, error)
	// Update replaces the image when one is given; the old file is removed afterwards.
	Update(ctx context.Context, id int64, in CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	images *media.Store
	cache  cache.Cache
	log    *logrus.Entry
}

func NewCategoryService(repo repository.CategoryRepository, images *media.Store, c cache.Cache, log *logrus.Entry) CategoryService {
	return &categoryService{repo: repo, images: images, cache: c, log: log.WithField("component", "category")}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	var items []model.Category
	if hit := cacheGet(ctx, s.cache, s.log, cache.KeyCategories, &items); hit {
		return items, nil
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	cacheSet(ctx, s.cache, s.log, cache.KeyCategories, items)
	return items, nil
}

func (s *categoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category")
	}
	return c, nil
}

func (s *categoryService) Create(ctx context.Context, name string, image *media.Upload) (*model.Category, error) {
	c := &model.Category{Name: name}
	if image != nil {
		key, err := s.images.Save(ctx, media.DirCategories, image)
		if err != nil {
			return nil, err
		}
		c.Image = &key
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		if c.Image != nil {
			s.images.Remove(ctx, *c.Image)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	cacheDel(ctx, s.cache, s.log, cache.KeyCategories)
	return created, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, in CategoryInput) (*model.Category, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category")
	}

	next := *current
	if in.Name != nil {
		next.Name = *in.Name
	}
	var newKey string
	if in.Image != nil {
		key, err := s.images.Save(ctx, media.DirCategories, in.Image)
		if err != nil {
			return nil, err
		}
		newKey = key
		next.Image = &newKey
	}

	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		if newKey != "" {
			s.images.Remove(ctx, newKey)
		}
		return nil, fmt.Errorf("update category: %w", notFoundOr(err, "Category"))
	}
	if newKey != "" && current.Image != nil {
		s.images.Remove(ctx, *current.Image)
	}
	cacheDel(ctx, s.cache, s.log, cache.KeyCategories)
	return updated, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Category")
	}
	if c.Image != nil {
		s.images.Remove(ctx, *c.Image)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	cacheDel(ctx, s.cache, s.log, cache.KeyCategories)
	return nil
}
