package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/postdeck/postdeck/storage"
	"github.com/postdeck/postdeck/utils"
)

// MediaController exposes presigned upload and download URL generation.
type MediaController struct {
	gateway *storage.Gateway
}

// NewMediaController creates a new MediaController instance.
func NewMediaController(gateway *storage.Gateway) *MediaController {
	return &MediaController{gateway: gateway}
}

// GenerateUploadURL presigns a PUT to the pending prefix. The requested
// filename is prefixed with a UUID so concurrent uploads cannot collide;
// clients must reference finalFilename from then on.
func (m *MediaController) GenerateUploadURL(ctx *gin.Context) {
	var req struct {
		Filename string `json:"filename" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" || strings.Contains(filename, "/") {
		utils.Error(ctx, http.StatusBadRequest, "invalid filename")
		return
	}

	finalFilename := uuid.New().String() + "_" + filename
	uploadURL, err := m.gateway.PresignUpload(ctx.Request.Context(), finalFilename)
	if err != nil {
		utils.Sugar.Errorf("failed to presign upload for %s: %v", finalFilename, err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate upload URL")
		return
	}

	utils.JSON(ctx, http.StatusOK, gin.H{
		"uploadUrl":     uploadURL,
		"finalFilename": finalFilename,
	})
}

// GenerateDownloadURLs presigns GET URLs for the given files under a post's
// permanent prefix. Per-file failures map to empty strings; the batch itself
// always succeeds.
func (m *MediaController) GenerateDownloadURLs(ctx *gin.Context) {
	var req struct {
		PostUUID  string   `json:"postUuid" binding:"required"`
		Filenames []string `json:"filenames" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	urls := m.gateway.PresignDownloads(ctx.Request.Context(), req.PostUUID, req.Filenames)
	utils.JSON(ctx, http.StatusOK, urls)
}
