package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postdeck/postdeck/models"
)

func postPayload(overrides gin.H) gin.H {
	payload := gin.H{
		"title":       "Launch announcement",
		"content":     "We are live!",
		"publishDate": "2026-09-15",
		"status":      models.StatusInProgress,
		"platforms":   []string{"FACEBOOK", "X"},
		"mediaType":   models.MediaNone,
		"mediaUris":   []string{},
	}
	for k, v := range overrides {
		payload[k] = v
	}
	return payload
}

func decodePost(t *testing.T, body []byte) models.PostDto {
	t.Helper()
	var dto models.PostDto
	require.NoError(t, json.Unmarshal(body, &dto))
	return dto
}

func TestCreatePostReturnsCreatedDto(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")

	w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	dto := decodePost(t, w.Body.Bytes())
	assert.NotEmpty(t, dto.UUID)
	assert.Equal(t, "Launch announcement", dto.Title)
	assert.Equal(t, "2026-09-15", dto.PublishDate)
	assert.Equal(t, []string{"FACEBOOK", "X"}, dto.Platforms)
	assert.Equal(t, models.MediaNone, dto.MediaType)
}

func TestCreatePostKeepsClientUUID(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")

	w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(gin.H{
		"uuid": "11111111-2222-3333-4444-555555555555",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	dto := decodePost(t, w.Body.Bytes())
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", dto.UUID)
}

func TestCreatePostRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")

	cases := []struct {
		name     string
		override gin.H
	}{
		{"bad date", gin.H{"publishDate": "15-09-2026"}},
		{"bad status", gin.H{"status": "SCHEDULED"}},
		{"bad media type", gin.H{"mediaType": "GIF"}},
		{"bad platform", gin.H{"platforms": []string{"MYSPACE"}}},
		{"missing title", gin.H{"title": ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(tc.override))
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestCreateImagePostMovesPendingFiles(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")
	env.store.put("uploads/pending/photo.png")
	env.store.put("uploads/pending/photo_thumb.jpg")

	w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(gin.H{
		"mediaType": models.MediaImage,
		"mediaUris": []string{"photo.png"},
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dto := decodePost(t, w.Body.Bytes())

	assert.True(t, env.store.has("media/posts/"+dto.UUID+"/photo.png"))
	assert.True(t, env.store.has("media/posts/"+dto.UUID+"/photo_thumb.jpg"))
	assert.False(t, env.store.has("uploads/pending/photo.png"))
	assert.False(t, env.store.has("uploads/pending/photo_thumb.jpg"))
}

func TestCreateLinkPostDoesNotTouchStorage(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")
	env.store.put("uploads/pending/https://example.com")

	w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(gin.H{
		"mediaType": models.MediaLink,
		"mediaUris": []string{"https://example.com"},
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	assert.True(t, env.store.has("uploads/pending/https://example.com"))
}

func TestMediaUrisOrderSurvivesRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")
	uris := []string{"z.png", "a.png", "m.png"}

	w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(gin.H{
		"mediaType": models.MediaImage,
		"mediaUris": uris,
	}))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uris, decodePost(t, w.Body.Bytes()).MediaUris)

	list := env.request(t, http.MethodGet, "/posts", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, list.Code)

	var posts []models.PostDto
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, uris, posts[0].MediaUris)
}

func TestListPostsOrderedByPublishDateDescending(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")

	for _, date := range []string{"2026-09-10", "2026-09-20", "2026-09-15"} {
		w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(gin.H{"publishDate": date}))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.request(t, http.MethodGet, "/posts", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []models.PostDto
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 3)
	assert.Equal(t, "2026-09-20", posts[0].PublishDate)
	assert.Equal(t, "2026-09-15", posts[1].PublishDate)
	assert.Equal(t, "2026-09-10", posts[2].PublishDate)
}

func TestListPostsIsScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@example.com", "password123")
	bob := env.registerUser(t, "bob", "bob@example.com", "password123")

	w := env.request(t, http.MethodPost, "/posts", alice.AccessToken, postPayload(nil))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/posts", bob.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []models.PostDto
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	assert.Empty(t, posts)
}

func TestUpdatePostReconcilesRemovedAndAddedMedia(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")
	env.store.put("uploads/pending/a.png")
	env.store.put("uploads/pending/b.png")

	w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(gin.H{
		"mediaType": models.MediaImage,
		"mediaUris": []string{"a.png", "b.png"},
	}))
	require.Equal(t, http.StatusCreated, w.Code)
	dto := decodePost(t, w.Body.Bytes())

	env.store.put("uploads/pending/c.png")

	w = env.request(t, http.MethodPut, "/posts/"+dto.UUID, user.AccessToken, postPayload(gin.H{
		"mediaType": models.MediaImage,
		"mediaUris": []string{"b.png", "c.png"},
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// a.png removed, b.png untouched, c.png moved out of pending.
	assert.False(t, env.store.has("media/posts/"+dto.UUID+"/a.png"))
	assert.True(t, env.store.has("media/posts/"+dto.UUID+"/b.png"))
	assert.True(t, env.store.has("media/posts/"+dto.UUID+"/c.png"))
	assert.False(t, env.store.has("uploads/pending/c.png"))

	updated := decodePost(t, w.Body.Bytes())
	assert.Equal(t, []string{"b.png", "c.png"}, updated.MediaUris)
}

func TestUpdatePostLeavingStoredMediaDeletesAllObjects(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")
	env.store.put("uploads/pending/a.png")
	env.store.put("uploads/pending/a_thumb.jpg")

	w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(gin.H{
		"mediaType": models.MediaImage,
		"mediaUris": []string{"a.png"},
	}))
	require.Equal(t, http.StatusCreated, w.Code)
	dto := decodePost(t, w.Body.Bytes())
	require.True(t, env.store.has("media/posts/"+dto.UUID+"/a.png"))

	w = env.request(t, http.MethodPut, "/posts/"+dto.UUID, user.AccessToken, postPayload(gin.H{
		"mediaType": models.MediaLink,
		"mediaUris": []string{"https://example.com"},
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.False(t, env.store.has("media/posts/"+dto.UUID+"/a.png"))
	assert.False(t, env.store.has("media/posts/"+dto.UUID+"/a_thumb.jpg"))
}

func TestUpdatePostNotOwnedIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@example.com", "password123")
	bob := env.registerUser(t, "bob", "bob@example.com", "password123")

	w := env.request(t, http.MethodPost, "/posts", alice.AccessToken, postPayload(nil))
	require.Equal(t, http.StatusCreated, w.Code)
	dto := decodePost(t, w.Body.Bytes())

	w = env.request(t, http.MethodPut, "/posts/"+dto.UUID, bob.AccessToken, postPayload(nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found with UUID: "+dto.UUID, errorMessage(t, w))
}

func TestDeletePostRemovesRowAndStoredMedia(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")
	env.store.put("uploads/pending/a.png")

	w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(gin.H{
		"mediaType": models.MediaImage,
		"mediaUris": []string{"a.png"},
	}))
	require.Equal(t, http.StatusCreated, w.Code)
	dto := decodePost(t, w.Body.Bytes())

	w = env.request(t, http.MethodDelete, "/posts/"+dto.UUID, user.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, env.store.has("media/posts/"+dto.UUID+"/a.png"))

	var count int64
	require.NoError(t, env.db.Model(&models.Post{}).Where("uuid = ?", dto.UUID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeletePostNotOwnedIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@example.com", "password123")
	bob := env.registerUser(t, "bob", "bob@example.com", "password123")

	w := env.request(t, http.MethodPost, "/posts", alice.AccessToken, postPayload(nil))
	require.Equal(t, http.StatusCreated, w.Code)
	dto := decodePost(t, w.Body.Bytes())

	w = env.request(t, http.MethodDelete, "/posts/"+dto.UUID, bob.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePostSanitizesScriptTags(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")

	w := env.request(t, http.MethodPost, "/posts", user.AccessToken, postPayload(gin.H{
		"title":   "hello<script>alert(1)</script>",
		"content": "body<script>alert(2)</script>text",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	dto := decodePost(t, w.Body.Bytes())
	assert.NotContains(t, dto.Title, "<script>")
	assert.NotContains(t, dto.Content, "<script>")
}

func TestDifferencePreservesOrder(t *testing.T) {
	out := difference([]string{"a", "b", "c", "d"}, []string{"b", "d"})
	assert.Equal(t, []string{"a", "c"}, out)

	assert.Nil(t, difference([]string{"a"}, []string{"a"}))
	assert.Equal(t, []string{"x"}, difference([]string{"x"}, nil))
}
