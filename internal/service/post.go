package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"blogapi/internal/events"
	"blogapi/internal/media"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// CreatePostInput is a syntactically valid post creation request.
type CreatePostInput struct {
	// UserID defaults to the caller when nil.
	UserID     *int64
	CategoryID *int64
	Title      string
	Content    string
	TagIDs     []int64
	Images     []*media.Upload
}

// UpdatePostInput holds only the fields present in the request.
type UpdatePostInput struct {
	Title      *string
	Content    *string
	CategoryID *int64
	// TagIDs replaces the post's tags when non-nil. An empty slice detaches all.
	TagIDs []int64
	// Images replaces the whole image set when non-empty.
	Images []*media.Upload
}

// PostMeta aggregates over a listed result set.
type PostMeta struct {
	TotalPosts  int `json:"total_posts"`
	TotalImages int `json:"total_images"`
	TotalUsers  int `json:"total_users"`
}

type PostList struct {
	Items []model.Post
	Meta  PostMeta
}

type PostService interface {
	// List returns every post with relations loaded plus aggregate counts.
	List(ctx context.Context) (*PostList, error)
	Get(ctx context.Context, id int64) (*model.Post, error)
	Create(ctx context.Context, caller *model.User, in CreatePostInput) (*model.Post, error)
	Update(ctx context.Context, id int64, in UpdatePostInput) (*model.Post, error)
	// Delete removes the post and its image files. Any authenticated user may delete.
	Delete(ctx context.Context, id int64) error
}

type postService struct {
	posts      repository.PostRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	images     *media.Store
	events     events.Publisher
	log        *logrus.Entry
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	images *media.Store,
	pub events.Publisher,
	log *logrus.Entry,
) PostService {
	return &postService{
		posts:      posts,
		users:      users,
		categories: categories,
		tags:       tags,
		images:     images,
		events:     pub,
		log:        log.WithField("component", "post"),
	}
}

func (s *postService) List(ctx context.Context) (*PostList, error) {
	items, err := s.posts.ListDetailed(ctx)
	if err != nil {
		return nil, err
	}
	return &PostList{Items: items, Meta: summarize(items)}, nil
}

func summarize(posts []model.Post) PostMeta {
	authors := make(map[int64]struct{}, len(posts))
	meta := PostMeta{TotalPosts: len(posts)}
	for _, p := range posts {
		meta.TotalImages += len(p.Images)
		authors[p.UserID] = struct{}{}
	}
	meta.TotalUsers = len(authors)
	return meta
}

func (s *postService) Get(ctx context.Context, id int64) (*model.Post, error) {
	p, err := s.posts.FindDetailed(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post")
	}
	return p, nil
}

func (s *postService) Create(ctx context.Context, caller *model.User, in CreatePostInput) (*model.Post, error) {
	userID := caller.ID
	verr := &ValidationError{}
	if in.UserID != nil && *in.UserID != caller.ID {
		if _, err := s.users.FindByID(ctx, *in.UserID); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("check user: %w", err)
			}
			verr.Add("user_id", "The selected user id is invalid.")
		}
		userID = *in.UserID
	}
	if err := s.checkRefs(ctx, verr, in.CategoryID, in.TagIDs); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	keys, err := s.images.SaveAll(ctx, media.DirPosts, in.Images)
	if err != nil {
		return nil, err
	}

	created, err := s.posts.Create(ctx, &model.Post{
		UserID:     userID,
		CategoryID: in.CategoryID,
		Title:      in.Title,
		Content:    in.Content,
		Images:     keys,
	}, uniqueIDs(in.TagIDs))
	if err != nil {
		s.images.Remove(ctx, keys...)
		return nil, fmt.Errorf("create post: %w", err)
	}

	publish(ctx, s.events, s.log, events.SubjectPostCreated, events.PostChanged{
		PostID:    created.ID,
		UserID:    created.UserID,
		Title:     created.Title,
		Timestamp: events.Timestamp(created.CreatedAt),
	})
	return created, nil
}

// checkRefs records a field error for a missing category or any missing tag.
func (s *postService) checkRefs(ctx context.Context, verr *ValidationError, categoryID *int64, tagIDs []int64) error {
	if categoryID != nil {
		if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("check category: %w", err)
			}
			verr.Add("category_id", "The selected category id is invalid.")
		}
	}
	if ids := uniqueIDs(tagIDs); len(ids) > 0 {
		found, err := s.tags.FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("check tags: %w", err)
		}
		if len(found) != len(ids) {
			verr.Add("tag_ids", "The selected tag ids is invalid.")
		}
	}
	return nil
}

func (s *postService) Update(ctx context.Context, id int64, in UpdatePostInput) (*model.Post, error) {
	current, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post")
	}

	verr := &ValidationError{}
	if err := s.checkRefs(ctx, verr, in.CategoryID, in.TagIDs); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	next := *current
	if in.Title != nil {
		next.Title = *in.Title
	}
	if in.Content != nil {
		next.Content = *in.Content
	}
	if in.CategoryID != nil {
		next.CategoryID = in.CategoryID
	}

	var newKeys []string
	if len(in.Images) > 0 {
		newKeys, err = s.images.SaveAll(ctx, media.DirPosts, in.Images)
		if err != nil {
			return nil, err
		}
		next.Images = newKeys
	}

	updated, err := s.posts.Update(ctx, &next)
	if err != nil {
		s.images.Remove(ctx, newKeys...)
		return nil, fmt.Errorf("update post: %w", notFoundOr(err, "Post"))
	}
	if len(newKeys) > 0 {
		s.images.Remove(ctx, current.Images...)
	}

	if in.TagIDs != nil {
		if err := s.posts.SyncTags(ctx, id, uniqueIDs(in.TagIDs)); err != nil {
			return nil, fmt.Errorf("sync tags: %w", err)
		}
	}

	publish(ctx, s.events, s.log, events.SubjectPostUpdated, events.PostChanged{
		PostID:    updated.ID,
		UserID:    updated.UserID,
		Title:     updated.Title,
		Timestamp: events.Timestamp(updated.UpdatedAt),
	})
	return updated, nil
}

func (s *postService) Delete(ctx context.Context, id int64) error {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Post")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.images.Remove(ctx, p.Images...)

	publish(ctx, s.events, s.log, events.SubjectPostDeleted, events.PostChanged{
		PostID:    p.ID,
		UserID:    p.UserID,
		Timestamp: events.Timestamp(time.Now()),
	})
	return nil
}
