package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/postdeck/postdeck/models"
)

// APIError carries the HTTP status and the server's {"error": ...} message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// TokenSource supplies the current bearer token for authenticated calls.
type TokenSource interface {
	AccessToken() string
}

// AuthResponse is the token pair plus profile returned by the auth endpoints.
type AuthResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         models.UserDto `json:"user"`
}

// UploadTicket is the reply to an upload-URL request.
type UploadTicket struct {
	UploadURL     string `json:"uploadUrl"`
	FinalFilename string `json:"finalFilename"`
}

// APIClient is a thin typed REST client over the backend.
type APIClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewAPIClient builds a client for the given base URL. tokens may be nil for
// a client used only for unauthenticated calls.
func NewAPIClient(baseURL string, tokens TokenSource) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
}

// Register creates an account and returns the initial token pair.
func (c *APIClient) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates by username or email.
func (c *APIClient) Login(ctx context.Context, login, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"login": login, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken trades a refresh token for a fresh access token.
func (c *APIClient) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"refreshToken": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh-token", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the authenticated profile.
func (c *APIClient) Me(ctx context.Context) (*models.UserDto, error) {
	var out models.UserDto
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPosts fetches all posts owned by the authenticated user.
func (c *APIClient) ListPosts(ctx context.Context) ([]models.PostDto, error) {
	var out []models.PostDto
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePost persists a new post.
func (c *APIClient) CreatePost(ctx context.Context, req models.PostRequestDto) (*models.PostDto, error) {
	var out models.PostDto
	if err := c.do(ctx, http.MethodPost, "/posts", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost saves changes to an existing post.
func (c *APIClient) UpdatePost(ctx context.Context, uuid string, req models.PostRequestDto) (*models.PostDto, error) {
	var out models.PostDto
	if err := c.do(ctx, http.MethodPut, "/posts/"+uuid, req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes a post.
func (c *APIClient) DeletePost(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+uuid, nil, nil, true)
}

// GenerateUploadURL asks for a presigned PUT and the unique final filename.
func (c *APIClient) GenerateUploadURL(ctx context.Context, filename string) (*UploadTicket, error) {
	var out UploadTicket
	body := map[string]string{"filename": filename}
	if err := c.do(ctx, http.MethodPost, "/media/generate-upload-url", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateDownloadURLs asks for presigned GETs; failed entries come back as "".
func (c *APIClient) GenerateDownloadURLs(ctx context.Context, postUUID string, filenames []string) (map[string]string, error) {
	var out map[string]string
	body := map[string]interface{}{"postUuid": postUUID, "filenames": filenames}
	if err := c.do(ctx, http.MethodPost, "/media/generate-download-urls", body, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadFile PUTs content directly to a presigned URL.
func (c *APIClient) UploadFile(ctx context.Context, presignedURL string, content io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, content)
	if err != nil {
		return err
	}
	req.ContentLength = size

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}
	return nil
}

// DownloadFile GETs content from a presigned URL.
func (c *APIClient) DownloadFile(ctx context.Context, presignedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, presignedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
