package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"blogapi/internal/events"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

type CommentService interface {
	// ListByPost returns the post's comments newest first with their authors.
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	Create(ctx context.Context, caller *model.User, postID int64, content string) (*model.Comment, error)
	// Update is allowed for the comment's author only.
	Update(ctx context.Context, caller *model.User, id int64, content string) (*model.Comment, error)
	// Delete is allowed for the comment's author or the owner of the post.
	Delete(ctx context.Context, caller *model.User, id int64) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	events   events.Publisher
	log      *logrus.Entry
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, pub events.Publisher, log *logrus.Entry) CommentService {
	return &commentService{comments: comments, posts: posts, events: pub, log: log.WithField("component", "comment")}
}

func (s *commentService) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post")
	}
	return s.comments.ListByPost(ctx, postID)
}

func (s *commentService) Create(ctx context.Context, caller *model.User, postID int64, content string) (*model.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post")
	}
	c, err := s.comments.Create(ctx, &model.Comment{UserID: caller.ID, PostID: postID, Content: content})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	publish(ctx, s.events, s.log, events.SubjectCommentCreated, events.CommentCreated{
		CommentID: c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Timestamp: events.Timestamp(c.CreatedAt),
	})
	return c, nil
}

func (s *commentService) Update(ctx context.Context, caller *model.User, id int64, content string) (*model.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment")
	}
	if c.UserID != caller.ID {
		return nil, ErrForbidden
	}
	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	fresh, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment")
	}
	return fresh, nil
}

func (s *commentService) Delete(ctx context.Context, caller *model.User, id int64) error {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Comment")
	}
	if c.UserID != caller.ID {
		post, err := s.posts.FindByID(ctx, c.PostID)
		if err != nil {
			return notFoundOr(err, "Post")
		}
		if post.UserID != caller.ID {
			return ErrForbidden
		}
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
