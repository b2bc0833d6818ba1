package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/media"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// UpdateProfileInput holds only the fields present in the request.
type UpdateProfileInput struct {
	Name         *string
	Email        *string
	Bio          *string
	Password     *string
	ProfileImage *media.Upload
}

type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, current *model.User, in UpdateProfileInput) (*model.User, error)
	// Delete removes the user with id. Only admins may do so.
	Delete(ctx context.Context, actor *model.User, id int64) error
}

type userService struct {
	users         repository.UserRepository
	images        *media.Store
	bcryptCost    int
	defaultAvatar string
	log           *logrus.Entry
}

// NewUserService constructs a UserService. defaultAvatar is never deleted from storage.
func NewUserService(users repository.UserRepository, images *media.Store, bcryptCost int, defaultAvatar string, log *logrus.Entry) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users:         users,
		images:        images,
		bcryptCost:    bcryptCost,
		defaultAvatar: defaultAvatar,
		log:           log.WithField("component", "user"),
	}
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *userService) UpdateProfile(ctx context.Context, current *model.User, in UpdateProfileInput) (*model.User, error) {
	if in.Email != nil && *in.Email != current.Email {
		taken, err := s.users.EmailTaken(ctx, *in.Email, current.ID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, invalidField("email", emailTaken)
		}
	}

	next := *current
	if in.Name != nil {
		next.Name = *in.Name
	}
	if in.Email != nil {
		next.Email = *in.Email
	}
	if in.Bio != nil {
		next.Bio = in.Bio
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		next.Password = string(hash)
	}

	var newKey string
	if in.ProfileImage != nil {
		key, err := s.images.Save(ctx, media.DirProfileImages, in.ProfileImage)
		if err != nil {
			return nil, err
		}
		newKey = key
		next.ProfileImage = &newKey
	}

	updated, err := s.users.Update(ctx, &next)
	if err != nil {
		if newKey != "" {
			s.images.Remove(ctx, newKey)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidField("email", emailTaken)
		}
		return nil, fmt.Errorf("update user: %w", notFoundOr(err, "User"))
	}

	if newKey != "" {
		s.removeAvatar(ctx, current.ProfileImage)
	}
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, actor *model.User, id int64) error {
	if actor == nil || !actor.IsAdmin {
		return ErrForbidden
	}
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "User")
	}

	s.removeAvatar(ctx, target.ProfileImage)
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *userService) removeAvatar(ctx context.Context, stored *string) {
	if stored == nil || *stored == "" || *stored == s.defaultAvatar {
		return
	}
	s.images.Remove(ctx, *stored)
}
