package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/events"
	"blogapi/internal/media"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const (
	tokenName         = "auth_token"
	tokenSecretLength = 40
	tokenAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// RegisterInput is a syntactically valid registration request.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Bio          *string
	ProfileImage *media.Upload
}

// LoginResult carries the authenticated user and the plain token "<id>|<secret>".
type LoginResult struct {
	User  *model.User
	Token string
}

// AuthOptions tune token lifetime and hashing cost.
type AuthOptions struct {
	// TokenTTL of zero issues tokens that never expire.
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService registers users and manages their bearer tokens.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login returns ErrInvalidCredentials for an unknown email and for a wrong password alike.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Logout revokes every token the user holds.
	Logout(ctx context.Context, userID int64) error
	// Authenticate resolves a plain bearer token to its user or returns ErrUnauthenticated.
	Authenticate(ctx context.Context, plain string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	images *media.Store
	events events.Publisher
	opts   AuthOptions
	log    *logrus.Entry
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, images *media.Store, pub events.Publisher, opts AuthOptions, log *logrus.Entry) AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:  users,
		tokens: tokens,
		images: images,
		events: pub,
		opts:   opts,
		log:    log.WithField("component", "auth"),
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	taken, err := s.users.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, invalidField("email", emailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Bio:      in.Bio,
	}
	if in.ProfileImage != nil {
		key, err := s.images.Save(ctx, media.DirProfileImages, in.ProfileImage)
		if err != nil {
			return nil, err
		}
		u.ProfileImage = &key
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		if u.ProfileImage != nil {
			s.images.Remove(ctx, *u.ProfileImage)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidField("email", emailTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	publish(ctx, s.events, s.log, events.SubjectUserRegistered, events.UserRegistered{
		UserID:    created.ID,
		Name:      created.Name,
		Email:     created.Email,
		Timestamp: events.Timestamp(created.CreatedAt),
	})
	return created, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Token: token}, nil
}

func (s *authService) issueToken(ctx context.Context, userID int64) (string, error) {
	secret, err := randomString(tokenSecretLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	t := &model.PersonalAccessToken{
		UserID: userID,
		Name:   tokenName,
		Token:  hashToken(secret),
	}
	if s.opts.TokenTTL > 0 {
		exp := s.now().Add(s.opts.TokenTTL)
		t.ExpiresAt = &exp
	}

	stored, err := s.tokens.Create(ctx, t)
	if err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return strconv.FormatInt(stored.ID, 10) + "|" + secret, nil
}

func (s *authService) Logout(ctx context.Context, userID int64) error {
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, plain string) (*model.User, error) {
	idPart, secret, ok := strings.Cut(plain, "|")
	if !ok || secret == "" {
		return nil, ErrUnauthenticated
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	t, err := s.tokens.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(t.Token), []byte(hashToken(secret))) != 1 {
		return nil, ErrUnauthenticated
	}
	now := s.now()
	if t.Expired(now) {
		return nil, ErrUnauthenticated
	}

	u, err := s.users.FindByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("find token owner: %w", err)
	}

	if err := s.tokens.Touch(ctx, t.ID, now); err != nil {
		s.log.WithField("event", "token_touch_failed").WithError(err).Warn("failed to record token use")
	}
	return u, nil
}

func hashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func randomString(n int) (string, error) {
	n64 := big.NewInt(int64(len(tokenAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, n64)
		if err != nil {
			return "", err
		}
		b[i] = tokenAlphabet[idx.Int64()]
	}
	return string(b), nil
}
