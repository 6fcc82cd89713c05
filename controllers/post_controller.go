package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/postdeck/postdeck/models"
	"github.com/postdeck/postdeck/storage"
	"github.com/postdeck/postdeck/utils"
)

// PostController manages CRUD over scheduled posts, including the media
// reconciliation against the storage gateway on every mutation.
type PostController struct {
	db      *gorm.DB
	gateway *storage.Gateway
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, gateway *storage.Gateway) *PostController {
	return &PostController{db: db, gateway: gateway}
}

// ListPosts returns all posts owned by the caller, publish date descending.
func (p *PostController) ListPosts(ctx *gin.Context) {
	user, ok := currentUser(ctx, p.db)
	if !ok {
		return
	}

	cacheKey := postListCacheKey(user.ID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var posts []models.Post
	if err := p.db.Where("user_id = ?", user.ID).Order("publish_date DESC").Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list posts")
		return
	}

	dtos := make([]models.PostDto, 0, len(posts))
	for i := range posts {
		dtos = append(dtos, posts[i].ToDto())
	}

	utils.CacheSetJSON(cacheKey, dtos, utils.PostListCacheTTL)
	utils.JSON(ctx, http.StatusOK, dtos)
}

// CreatePost persists a new post. For IMAGE and VIDEO posts every referenced
// file is moved from the pending prefix to the post's permanent prefix before
// the row is saved.
func (p *PostController) CreatePost(ctx *gin.Context) {
	user, ok := currentUser(ctx, p.db)
	if !ok {
		return
	}

	req, ok := bindPostRequest(ctx)
	if !ok {
		return
	}

	publishDate, err := time.Parse(models.PublishDateLayout, req.PublishDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "publishDate must be YYYY-MM-DD")
		return
	}

	post := models.Post{
		UUID:        req.UUID,
		UserID:      user.ID,
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Content:     utils.Sanitize(req.Content),
		PublishDate: publishDate,
		Status:      req.Status,
		Platforms:   req.Platforms,
		MediaType:   req.MediaType,
		MediaUris:   req.MediaUris,
	}
	if post.UUID == "" {
		post.UUID = uuid.New().String()
	}

	if models.HasStoredMedia(post.MediaType) && len(post.MediaUris) > 0 {
		p.gateway.MoveToPermanent(ctx.Request.Context(), post.UUID, post.MediaUris)
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create post")
		return
	}

	utils.Sugar.Infof("created new post with UUID %s for user %s", post.UUID, user.Username)
	utils.CacheDelete(postListCacheKey(user.ID))
	utils.JSON(ctx, http.StatusCreated, post.ToDto())
}

// UpdatePost saves new post contents after reconciling media storage:
// leaving IMAGE/VIDEO deletes all old objects; staying within IMAGE/VIDEO
// deletes removed files and moves newly referenced ones out of pending.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	user, ok := currentUser(ctx, p.db)
	if !ok {
		return
	}

	postUUID := ctx.Param("uuid")
	var post models.Post
	err := p.db.Where("uuid = ? AND user_id = ?", postUUID, user.ID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Post not found with UUID: "+postUUID)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}

	req, ok := bindPostRequest(ctx)
	if !ok {
		return
	}

	publishDate, err := time.Parse(models.PublishDateLayout, req.PublishDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "publishDate must be YYYY-MM-DD")
		return
	}

	oldMediaType := post.MediaType
	oldMediaUris := append([]string(nil), post.MediaUris...)
	reqCtx := ctx.Request.Context()

	if models.HasStoredMedia(oldMediaType) {
		if !models.HasStoredMedia(req.MediaType) {
			if len(oldMediaUris) > 0 {
				utils.Sugar.Infof("media type changed from %s to %s, deleting all old media files", oldMediaType, req.MediaType)
				p.gateway.DeleteObjects(reqCtx, post.UUID, oldMediaUris)
			}
		} else {
			removed := difference(oldMediaUris, req.MediaUris)
			if len(removed) > 0 {
				utils.Sugar.Infof("deleting %d removed media files", len(removed))
				p.gateway.DeleteObjects(reqCtx, post.UUID, removed)
			}
		}
	}

	if models.HasStoredMedia(req.MediaType) {
		added := difference(req.MediaUris, oldMediaUris)
		if len(added) > 0 {
			utils.Sugar.Infof("moving %d new media files to permanent storage", len(added))
			p.gateway.MoveToPermanent(reqCtx, post.UUID, added)
		}
	}

	post.Title = utils.Sanitize(strings.TrimSpace(req.Title))
	post.Content = utils.Sanitize(req.Content)
	post.PublishDate = publishDate
	post.Status = req.Status
	post.Platforms = req.Platforms
	post.MediaType = req.MediaType
	post.MediaUris = req.MediaUris

	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update post")
		return
	}

	utils.Sugar.Infof("updated post with UUID %s", post.UUID)
	utils.CacheDelete(postListCacheKey(user.ID))
	utils.JSON(ctx, http.StatusOK, post.ToDto())
}

// DeletePost removes a post after best-effort deletion of its stored media.
func (p *PostController) DeletePost(ctx *gin.Context) {
	user, ok := currentUser(ctx, p.db)
	if !ok {
		return
	}

	postUUID := ctx.Param("uuid")
	var post models.Post
	err := p.db.Where("uuid = ? AND user_id = ?", postUUID, user.ID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Post not found with UUID: "+postUUID)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}

	if models.HasStoredMedia(post.MediaType) && len(post.MediaUris) > 0 {
		p.gateway.DeleteObjects(ctx.Request.Context(), post.UUID, post.MediaUris)
	}

	if err := p.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete post")
		return
	}

	utils.Sugar.Infof("deleted post with UUID %s", post.UUID)
	utils.CacheDelete(postListCacheKey(user.ID))
	ctx.Status(http.StatusNoContent)
}

// bindPostRequest decodes and validates the shared create/update payload.
func bindPostRequest(ctx *gin.Context) (*models.PostRequestDto, bool) {
	var req models.PostRequestDto
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return nil, false
	}

	if !models.ValidStatus(req.Status) {
		utils.Error(ctx, http.StatusBadRequest, "invalid status")
		return nil, false
	}
	if !models.ValidMediaType(req.MediaType) {
		utils.Error(ctx, http.StatusBadRequest, "invalid media type")
		return nil, false
	}
	for _, platform := range req.Platforms {
		if !models.ValidPlatform(platform) {
			utils.Error(ctx, http.StatusBadRequest, "invalid platform: "+platform)
			return nil, false
		}
	}
	return &req, true
}

// difference returns the elements of a that are absent from b, preserving order.
func difference(a, b []string) []string {
	present := make(map[string]struct{}, len(b))
	for _, s := range b {
		present[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := present[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func postListCacheKey(userID uint) string {
	return fmt.Sprintf("cache:user:%d:posts", userID)
}
