package handler

import (
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"blogapi/internal/model"
	"blogapi/internal/service"
	serviceMocks "blogapi/internal/service/mocks"
)

func TestRegister(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Post("/register", Register(svc, testMedia()))

	valid := map[string]any{
		"name":                  "Ada",
		"email":                 "ada@example.com",
		"password":              "password1",
		"password_confirmation": "password1",
	}

	t.Run("success uses default avatar", func(t *testing.T) {
		svc.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
			return in.Email == "ada@example.com" && in.ProfileImage == nil && in.Bio == nil
		})).Return(&model.User{ID: 1, Name: "Ada", Email: "ada@example.com", CreatedAt: time.Now()}, nil).Once()

		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/register", valid))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var body struct {
			Message string       `json:"message"`
			User    userResource `json:"user"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "Registration successful", body.Message)
		assert.Equal(t, int64(1), body.User.ID)
		assert.Equal(t, testBaseURL+"/download.jpg", body.User.ProfileImageURL)
		svc.AssertExpectations(t)
	})

	t.Run("multipart with avatar", func(t *testing.T) {
		avatar := "profile_images/a.png"
		svc.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
			return in.ProfileImage != nil && in.ProfileImage.ContentType == "image/png"
		})).Return(&model.User{ID: 2, Name: "Ada", ProfileImage: &avatar}, nil).Once()

		req := multipartRequest(t, http.MethodPost, "/register", [][2]string{
			{"name", "Ada"}, {"email", "ada@example.com"},
			{"password", "password1"}, {"password_confirmation", "password1"},
		}, []formFile{{field: "profile_image", filename: "me.png", data: pngBytes}})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var body struct {
			User userResource `json:"user"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, testBaseURL+"/profile_images/a.png", body.User.ProfileImageURL)
		svc.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, &service.ValidationError{Fields: map[string]string{"email": "The email has already been taken."}}).Once()

		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/register", valid))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Equal(t, "The email has already been taken.", body.Error.Fields["email"])
		svc.AssertExpectations(t)
	})

	t.Run("field rules", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/register", map[string]any{
			"email":                 "not-an-email",
			"password":              "short",
			"password_confirmation": "short",
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "The name field is required.", body.Error.Fields["name"])
		assert.Equal(t, "The email must be a valid email address.", body.Error.Fields["email"])
		assert.Equal(t, "The password must be at least 8 characters.", body.Error.Fields["password"])
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/register", map[string]any{
			"name":                  "Ada",
			"email":                 "ada@example.com",
			"password":              "password1",
			"password_confirmation": "password2",
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "The password field confirmation does not match.", body.Error.Fields["password"])
	})

	t.Run("avatar must be an image", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/register", [][2]string{
			{"name", "Ada"}, {"email", "ada@example.com"},
			{"password", "password1"}, {"password_confirmation", "password1"},
		}, []formFile{{field: "profile_image", filename: "notes.txt", data: []byte("plain text")}})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "The profile image must be a file of type: jpeg, png, jpg, gif.", body.Error.Fields["profile_image"])
	})
}

func TestLogin(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Post("/login", Login(svc, testMedia()))

	t.Run("success", func(t *testing.T) {
		svc.On("Login", mock.Anything, "ada@example.com", "password1").
			Return(&service.LoginResult{User: &model.User{ID: 1, Email: "ada@example.com"}, Token: "1|abc"}, nil).Once()

		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{
			"email": "ada@example.com", "password": "password1",
		}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		decodeBody(t, resp, &body)
		assert.Equal(t, "Login successful", body["message"])
		assert.Equal(t, "1|abc", body["token"])
		svc.AssertExpectations(t)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		svc.On("Login", mock.Anything, "nobody@example.com", "password1").Return(nil, service.ErrInvalidCredentials).Once()
		svc.On("Login", mock.Anything, "ada@example.com", "wrongpass").Return(nil, service.ErrInvalidCredentials).Once()

		first, _ := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{
			"email": "nobody@example.com", "password": "password1",
		}))
		second, _ := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{
			"email": "ada@example.com", "password": "wrongpass",
		}))

		assert.Equal(t, http.StatusUnauthorized, first.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, second.StatusCode)
		a, _ := io.ReadAll(first.Body)
		b, _ := io.ReadAll(second.Body)
		assert.Equal(t, string(a), string(b))
		assert.Contains(t, string(a), "INVALID_CREDENTIALS")
		svc.AssertExpectations(t)
	})

	t.Run("service error is hidden", func(t *testing.T) {
		svc.On("Login", mock.Anything, "ada@example.com", "password1").Return(nil, errors.New("db down")).Once()

		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{
			"email": "ada@example.com", "password": "password1",
		}))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(raw), "db down")
	})
}

func TestLogout(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Post("/logout", asUser(&model.User{ID: 5}), Logout(svc))

	svc.On("Logout", mock.Anything, int64(5)).Return(nil).Once()

	resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/logout", fiber.Map{}))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}
