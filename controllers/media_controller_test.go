package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUploadURLPrefixesFilenameWithUUID(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")

	w := env.request(t, http.MethodPost, "/media/generate-upload-url", user.AccessToken, gin.H{
		"filename": "photo.png",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		UploadURL     string `json:"uploadUrl"`
		FinalFilename string `json:"finalFilename"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, strings.HasSuffix(resp.FinalFilename, "_photo.png"))
	assert.NotEqual(t, "photo.png", resp.FinalFilename)
	assert.Equal(t, "https://s3.test/put/uploads/pending/"+resp.FinalFilename, resp.UploadURL)
}

func TestGenerateUploadURLRejectsInvalidFilenames(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")

	for _, filename := range []string{"", "  ", "../escape.png", "dir/file.png"} {
		w := env.request(t, http.MethodPost, "/media/generate-upload-url", user.AccessToken, gin.H{
			"filename": filename,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "filename: %q", filename)
	}
}

func TestGenerateDownloadURLsReturnsPerFileURLs(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")

	w := env.request(t, http.MethodPost, "/media/generate-download-urls", user.AccessToken, gin.H{
		"postUuid":  "p1",
		"filenames": []string{"a.png", "b.png"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var urls map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &urls))
	assert.Equal(t, "https://s3.test/get/media/posts/p1/a.png", urls["a.png"])
	assert.Equal(t, "https://s3.test/get/media/posts/p1/b.png", urls["b.png"])
}

func TestGenerateDownloadURLsPartialFailureStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice", "alice@example.com", "password123")
	env.store.failGet["media/posts/p1/bad.png"] = true

	w := env.request(t, http.MethodPost, "/media/generate-download-urls", user.AccessToken, gin.H{
		"postUuid":  "p1",
		"filenames": []string{"good.png", "bad.png"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var urls map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &urls))
	assert.Equal(t, "https://s3.test/get/media/posts/p1/good.png", urls["good.png"])
	assert.Equal(t, "", urls["bad.png"])
}

func TestMediaEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/media/generate-upload-url", "", gin.H{"filename": "photo.png"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
