package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"blogapi/internal/model"
	"blogapi/internal/service"
	serviceMocks "blogapi/internal/service/mocks"
)

func TestComments(t *testing.T) {
	svc := new(serviceMocks.MockCommentService)
	caller := &model.User{ID: 4}
	m := testMedia()
	app := newApp()
	app.Get("/posts/:post/comments", ListComments(svc, m))
	app.Post("/posts/:post/comments", asUser(caller), CreateComment(svc, m))
	app.Put("/comments/:comment", asUser(caller), UpdateComment(svc, m))
	app.Delete("/comments/:comment", asUser(caller), DeleteComment(svc))

	t.Run("list for missing post", func(t *testing.T) {
		svc.On("ListByPost", mock.Anything, int64(9)).Return(nil, &service.NotFoundError{Resource: "Post"}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/9/comments", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("create", func(t *testing.T) {
		svc.On("Create", mock.Anything, caller, int64(1), "Nice post").
			Return(&model.Comment{ID: 2, PostID: 1, UserID: 4, Content: "Nice post", User: caller}, nil).Once()

		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/posts/1/comments", map[string]string{"content": "Nice post"}))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var body struct {
			Data commentResource `json:"data"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, int64(4), body.Data.User.ID)
	})

	t.Run("content too long", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/posts/1/comments", map[string]string{
			"content": strings.Repeat("x", 1001),
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "The content must not be greater than 1000 characters.", body.Error.Fields["content"])
	})

	t.Run("update by someone else", func(t *testing.T) {
		svc.On("Update", mock.Anything, caller, int64(3), "edit").Return(nil, service.ErrForbidden).Once()

		resp, _ := app.Test(jsonRequest(t, http.MethodPut, "/comments/3", map[string]string{"content": "edit"}))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("delete by neither author nor post owner", func(t *testing.T) {
		svc.On("Delete", mock.Anything, caller, int64(3)).Return(service.ErrForbidden).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/comments/3", nil))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "FORBIDDEN", body.Error.Code)
		assert.Equal(t, "You are not authorized to perform this action.", body.Error.Message)
	})

	t.Run("delete by author", func(t *testing.T) {
		svc.On("Delete", mock.Anything, caller, int64(2)).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/comments/2", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	svc.AssertExpectations(t)
}
