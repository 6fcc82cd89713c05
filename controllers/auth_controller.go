package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/postdeck/postdeck/config"
	"github.com/postdeck/postdeck/middleware"
	"github.com/postdeck/postdeck/models"
	"github.com/postdeck/postdeck/utils"
)

// AuthController handles registration, login, token refresh and the profile endpoint.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type authResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         models.UserDto `json:"user"`
}

// Register creates a new account and returns a token pair with the profile projection.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := a.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "An internal server error occurred.")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, "Username is already taken: "+username)
		return
	}
	if err := a.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "An internal server error occurred.")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, "Email is already in use: "+email)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "An internal server error occurred.")
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create user")
		return
	}

	utils.Sugar.Infof("user registered successfully: %s", user.Username)
	a.respondWithTokens(ctx, &user)
}

// Login authenticates by username or email and returns a fresh token pair.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Login    string `json:"login" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	login := strings.TrimSpace(req.Login)

	var user models.User
	err := a.db.Where("username = ? OR email = ?", login, strings.ToLower(login)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "An internal server error occurred.")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	utils.Sugar.Infof("user logged in successfully: %s", user.Username)
	a.respondWithTokens(ctx, &user)
}

// RefreshToken validates a refresh token and issues a new access token while
// echoing the same refresh token. Any parse, lookup or validation failure is a
// bad request; an expired token never silently yields a new access token.
func (a *AuthController) RefreshToken(ctx *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	claims, err := utils.ParseToken(req.RefreshToken)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Refresh token is invalid or expired")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", claims.Username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Invalid refresh token")
		return
	}

	cfg := config.Get()
	accessToken, err := utils.GenerateToken(user.ID, user.Username, cfg.AccessTokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "An internal server error occurred.")
		return
	}

	utils.JSON(ctx, http.StatusOK, authResponse{
		AccessToken:  accessToken,
		RefreshToken: req.RefreshToken,
		User:         user.ToDto(),
	})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := currentUser(ctx, a.db)
	if !ok {
		return
	}
	utils.JSON(ctx, http.StatusOK, user.ToDto())
}

func (a *AuthController) respondWithTokens(ctx *gin.Context, user *models.User) {
	cfg := config.Get()

	accessToken, err := utils.GenerateToken(user.ID, user.Username, cfg.AccessTokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "An internal server error occurred.")
		return
	}
	refreshToken, err := utils.GenerateToken(user.ID, user.Username, cfg.RefreshTokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "An internal server error occurred.")
		return
	}

	utils.JSON(ctx, http.StatusOK, authResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.ToDto(),
	})
}

// currentUser loads the authenticated user from the database; writes the error
// response itself when the context carries no resolvable identity.
func currentUser(ctx *gin.Context, db *gorm.DB) (*models.User, bool) {
	id, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		ctx.Abort()
		return nil, false
	}
	userID, ok := id.(uint)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		ctx.Abort()
		return nil, false
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		ctx.Abort()
		return nil, false
	}
	return &user, true
}
