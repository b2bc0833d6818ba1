package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/events"
	"blogapi/internal/model"
	"blogapi/internal/repository"
	repoMocks "blogapi/internal/repository/mocks"
	storeMocks "blogapi/internal/storage/mocks"
)

type authFixture struct {
	users  *repoMocks.MockUserRepository
	tokens *repoMocks.MockTokenRepository
	store  *storeMocks.MockStorage
	pub    *fakePublisher
	svc    *authService
}

func newAuthFixture(ttl time.Duration) *authFixture {
	f := &authFixture{
		users:  new(repoMocks.MockUserRepository),
		tokens: new(repoMocks.MockTokenRepository),
		store:  new(storeMocks.MockStorage),
		pub:    &fakePublisher{},
	}
	f.svc = NewAuthService(f.users, f.tokens, newImages(f.store), f.pub,
		AuthOptions{TokenTTL: ttl, BcryptCost: bcrypt.MinCost}, testLog()).(*authService)
	return f
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture(0)
		f.users.On("EmailTaken", ctx, "ada@example.com", int64(0)).Return(true, nil)

		_, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret123"})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "The email has already been taken.", verr.Fields["email"])
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("hashes password, stores avatar and publishes", func(t *testing.T) {
		f := newAuthFixture(0)
		keys := expectPut(f.store)
		f.users.On("EmailTaken", ctx, "ada@example.com", int64(0)).Return(false, nil)
		f.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")) == nil &&
				u.ProfileImage != nil && strings.HasPrefix(*u.ProfileImage, "profile_images/") &&
				!u.IsAdmin
		})).Return(&model.User{ID: 1, Name: "Ada", Email: "ada@example.com"}, nil)

		u, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret123", ProfileImage: pngUpload()})

		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
		assert.Len(t, *keys, 1)
		require.Len(t, f.pub.sent, 1)
		assert.Equal(t, events.SubjectUserRegistered, f.pub.sent[0].subject)
	})

	t.Run("email claimed between check and insert", func(t *testing.T) {
		f := newAuthFixture(0)
		keys := expectPut(f.store)
		f.store.On("Delete", ctx, mock.Anything).Return(nil)
		f.users.On("EmailTaken", ctx, "ada@example.com", int64(0)).Return(false, nil)
		f.users.On("Create", ctx, mock.Anything).Return(nil, fmt.Errorf("%w: users_email_key", repository.ErrDuplicate))

		_, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret123", ProfileImage: pngUpload()})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "The email has already been taken.", verr.Fields["email"])
		require.Len(t, *keys, 1)
		f.store.AssertCalled(t, "Delete", ctx, (*keys)[0])
		assert.Empty(t, f.pub.sent)
	})

	t.Run("insert failure removes stored avatar", func(t *testing.T) {
		f := newAuthFixture(0)
		keys := expectPut(f.store)
		f.store.On("Delete", ctx, mock.Anything).Return(nil)
		f.users.On("EmailTaken", ctx, "ada@example.com", int64(0)).Return(false, nil)
		f.users.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))

		_, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret123", ProfileImage: pngUpload()})

		assert.ErrorContains(t, err, "create user: db down")
		require.Len(t, *keys, 1)
		f.store.AssertCalled(t, "Delete", ctx, (*keys)[0])
		assert.Empty(t, f.pub.sent)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	stored := &model.User{ID: 3, Email: "ada@example.com", Password: string(hash)}

	t.Run("unknown email and wrong password fail the same way", func(t *testing.T) {
		f := newAuthFixture(0)
		f.users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, sql.ErrNoRows)
		f.users.On("FindByEmail", ctx, "ada@example.com").Return(stored, nil)

		_, errUnknown := f.svc.Login(ctx, "nobody@example.com", "secret123")
		_, errWrong := f.svc.Login(ctx, "ada@example.com", "wrongpass")

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
		f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("issues id|secret token stored hashed", func(t *testing.T) {
		f := newAuthFixture(2 * time.Hour)
		var hashed string
		f.users.On("FindByEmail", ctx, "ada@example.com").Return(stored, nil)
		f.tokens.On("Create", ctx, mock.MatchedBy(func(tk *model.PersonalAccessToken) bool {
			hashed = tk.Token
			return tk.UserID == 3 && tk.Name == "auth_token" && tk.ExpiresAt != nil
		})).Return(&model.PersonalAccessToken{ID: 42}, nil)

		res, err := f.svc.Login(ctx, "ada@example.com", "secret123")

		require.NoError(t, err)
		id, secret, ok := strings.Cut(res.Token, "|")
		require.True(t, ok)
		assert.Equal(t, "42", id)
		assert.Len(t, secret, 40)
		sum := sha256.Sum256([]byte(secret))
		assert.Equal(t, hex.EncodeToString(sum[:]), hashed)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	secret := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMN"
	past := now.Add(-time.Minute)

	tests := []struct {
		name    string
		plain   string
		setup   func(f *authFixture)
		wantErr error
	}{
		{name: "no separator", plain: "garbage", setup: func(*authFixture) {}, wantErr: ErrUnauthenticated},
		{name: "non numeric id", plain: "x|" + secret, setup: func(*authFixture) {}, wantErr: ErrUnauthenticated},
		{
			name:  "unknown token",
			plain: "7|" + secret,
			setup: func(f *authFixture) {
				f.tokens.On("FindByID", ctx, int64(7)).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrUnauthenticated,
		},
		{
			name:  "secret mismatch",
			plain: "7|wrong",
			setup: func(f *authFixture) {
				f.tokens.On("FindByID", ctx, int64(7)).Return(&model.PersonalAccessToken{ID: 7, UserID: 1, Token: hashToken(secret)}, nil)
			},
			wantErr: ErrUnauthenticated,
		},
		{
			name:  "expired",
			plain: "7|" + secret,
			setup: func(f *authFixture) {
				f.tokens.On("FindByID", ctx, int64(7)).Return(&model.PersonalAccessToken{ID: 7, UserID: 1, Token: hashToken(secret), ExpiresAt: &past}, nil)
			},
			wantErr: ErrUnauthenticated,
		},
		{
			name:  "valid",
			plain: "7|" + secret,
			setup: func(f *authFixture) {
				f.tokens.On("FindByID", ctx, int64(7)).Return(&model.PersonalAccessToken{ID: 7, UserID: 1, Token: hashToken(secret)}, nil)
				f.users.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1, Name: "Ada"}, nil)
				f.tokens.On("Touch", ctx, int64(7), now).Return(nil)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(0)
			f.svc.now = func() time.Time { return now }
			tt.setup(f)

			u, err := f.svc.Authenticate(ctx, tt.plain)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ada", u.Name)
			f.tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(0)
	f.tokens.On("DeleteByUser", ctx, int64(5)).Return(nil)

	assert.NoError(t, f.svc.Logout(ctx, 5))
	f.tokens.AssertExpectations(t)
}
