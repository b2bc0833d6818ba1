package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"blogapi/internal/model"
	"blogapi/internal/service"
	serviceMocks "blogapi/internal/service/mocks"
)

func TestCreatePost(t *testing.T) {
	svc := new(serviceMocks.MockPostService)
	caller := &model.User{ID: 1}
	app := newApp()
	app.Post("/posts", asUser(caller), CreatePost(svc, testMedia()))

	t.Run("three images keep upload order", func(t *testing.T) {
		svc.On("Create", mock.Anything, caller, mock.MatchedBy(func(in service.CreatePostInput) bool {
			if len(in.Images) != 3 {
				return false
			}
			return in.Images[0].Filename == "a.png" &&
				in.Images[1].Filename == "b.gif" &&
				in.Images[2].Filename == "c.jpg" &&
				in.Title == "Hello" &&
				assert.ObjectsAreEqual([]int64{2, 3}, in.TagIDs)
		})).Return(&model.Post{
			ID:      10,
			Title:   "Hello",
			Content: "World",
			Images:  []string{"posts/1.png", "posts/2.gif", "posts/3.jpg"},
		}, nil).Once()

		req := multipartRequest(t, http.MethodPost, "/posts", [][2]string{
			{"title", "Hello"}, {"content", "World"}, {"tag_ids[]", "2"}, {"tag_ids[]", "3"},
		}, []formFile{
			{field: "images[]", filename: "a.png", data: pngBytes},
			{field: "images[]", filename: "b.gif", data: gifBytes},
			{field: "images[]", filename: "c.jpg", data: jpegBytes},
		})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var body struct {
			Message string              `json:"message"`
			Data    createdPostResource `json:"data"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "Post created successfully.", body.Message)
		assert.Equal(t, []string{
			testBaseURL + "/posts/1.png",
			testBaseURL + "/posts/2.gif",
			testBaseURL + "/posts/3.jpg",
		}, body.Data.Images)
		svc.AssertExpectations(t)
	})

	t.Run("missing title and content", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/posts", map[string]any{"tag_ids": []int64{1}}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "The title field is required.", body.Error.Fields["title"])
		assert.Equal(t, "The content field is required.", body.Error.Fields["content"])
	})

	t.Run("non numeric tag id", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/posts", [][2]string{
			{"title", "Hello"}, {"content", "World"}, {"tag_ids[]", "go"},
		}, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "The selected tag ids is invalid.", body.Error.Fields["tag_ids"])
	})

	t.Run("more images than allowed", func(t *testing.T) {
		m := testMedia()
		m.MaxPostImages = 2
		capped := newApp()
		capped.Post("/posts", asUser(caller), CreatePost(svc, m))

		req := multipartRequest(t, http.MethodPost, "/posts", [][2]string{
			{"title", "Hello"}, {"content", "World"},
		}, []formFile{
			{field: "images[]", filename: "a.png", data: pngBytes},
			{field: "images[]", filename: "b.gif", data: gifBytes},
			{field: "images[]", filename: "c.jpg", data: jpegBytes},
		})
		resp, _ := capped.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "The images field must not have more than 2 items.", body.Error.Fields["images"])
	})

	t.Run("unknown category", func(t *testing.T) {
		svc.On("Create", mock.Anything, caller, mock.Anything).
			Return(nil, &service.ValidationError{Fields: map[string]string{"category_id": "The selected category id is invalid."}}).Once()

		resp, _ := app.Test(jsonRequest(t, http.MethodPost, "/posts", map[string]any{
			"title": "Hello", "content": "World", "category_id": 42,
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "The selected category id is invalid.", body.Error.Fields["category_id"])
	})
}

func TestGetPost(t *testing.T) {
	svc := new(serviceMocks.MockPostService)
	app := newApp()
	app.Get("/posts/:id", GetPost(svc, testMedia()))

	t.Run("nested shape", func(t *testing.T) {
		created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		svc.On("Get", mock.Anything, int64(1)).Return(&model.Post{
			ID:        1,
			Title:     "Hello",
			Images:    []string{"posts/1.png", "http://127.0.0.1:8000/storage/posts/old.png"},
			CreatedAt: created,
			UpdatedAt: created,
			User:      &model.User{ID: 2, Name: "Ada"},
			Category:  &model.Category{ID: 3, Name: "Go"},
			Tags:      []model.Tag{{ID: 4, Name: "go"}},
			Comments:  []model.Comment{{ID: 5, Content: "Nice", User: &model.User{ID: 6, Name: "Bob"}}},
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/1", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Success bool         `json:"success"`
			Data    postResource `json:"data"`
		}
		decodeBody(t, resp, &body)
		assert.True(t, body.Success)
		assert.Equal(t, "2024-05-01 10:00:00", body.Data.CreatedAt)
		assert.Equal(t, testBaseURL+"/posts/1.png", body.Data.Images[0].URL)
		assert.Equal(t, testBaseURL+"/posts/old.png", body.Data.Images[1].URL)
		assert.Equal(t, testBaseURL+"/download.jpg", body.Data.User.ProfileImage)
		assert.Equal(t, "Go", body.Data.Category.Name)
		assert.Len(t, body.Data.Tags, 1)
		assert.Equal(t, "Bob", body.Data.Comments[0].User.Name)
	})

	t.Run("not found", func(t *testing.T) {
		svc.On("Get", mock.Anything, int64(2)).Return(nil, &service.NotFoundError{Resource: "Post"}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/2", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "Post not found.", body.Error.Message)
	})

	svc.AssertExpectations(t)
}

func TestListPosts(t *testing.T) {
	svc := new(serviceMocks.MockPostService)
	app := newApp()
	app.Get("/posts", ListPosts(svc, testMedia()))

	svc.On("List", mock.Anything).Return(&service.PostList{
		Items: []model.Post{{ID: 1, UserID: 1, Images: []string{"posts/a.png"}}},
		Meta:  service.PostMeta{TotalPosts: 1, TotalImages: 1, TotalUsers: 1},
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data []postResource  `json:"data"`
		Meta service.PostMeta `json:"meta"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Meta.TotalImages)
	svc.AssertExpectations(t)
}

func TestUpdatePost(t *testing.T) {
	svc := new(serviceMocks.MockPostService)
	app := newApp()
	app.Put("/posts/:id", UpdatePost(svc, testMedia()))

	t.Run("only present fields", func(t *testing.T) {
		svc.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(in service.UpdatePostInput) bool {
			return in.Title != nil && *in.Title == "New" && in.Content == nil && in.TagIDs == nil && len(in.Images) == 0
		})).Return(&model.Post{ID: 7, Title: "New", Images: []string{"posts/x.png"}}, nil).Once()

		resp, _ := app.Test(jsonRequest(t, http.MethodPut, "/posts/7", map[string]any{"title": "New"}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Message string           `json:"message"`
			Data    flatPostResource `json:"data"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "Updated successfully", body.Message)
		assert.Equal(t, []string{testBaseURL + "/posts/x.png"}, body.Data.Images)
	})

	t.Run("empty tag list detaches", func(t *testing.T) {
		svc.On("Update", mock.Anything, int64(8), mock.MatchedBy(func(in service.UpdatePostInput) bool {
			return in.TagIDs != nil && len(in.TagIDs) == 0
		})).Return(&model.Post{ID: 8}, nil).Once()

		resp, _ := app.Test(jsonRequest(t, http.MethodPut, "/posts/8", map[string]any{"tag_ids": []int64{}}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("title too long", func(t *testing.T) {
		long := make([]byte, 256)
		for i := range long {
			long[i] = 'a'
		}
		resp, _ := app.Test(jsonRequest(t, http.MethodPut, "/posts/7", map[string]any{"title": string(long)}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		decodeBody(t, resp, &body)
		assert.Equal(t, "The title must not be greater than 255 characters.", body.Error.Fields["title"])
	})

	svc.AssertExpectations(t)
}

func TestDeletePost(t *testing.T) {
	svc := new(serviceMocks.MockPostService)
	app := newApp()
	app.Delete("/posts/:id", DeletePost(svc))

	svc.On("Delete", mock.Anything, int64(3)).Return(nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/3", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Post deleted successfully.", body["message"])
	svc.AssertExpectations(t)
}
