package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post statuses.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusCanceled   = "CANCELED"
)

// Media types. MediaUris semantics depend on the type: a single URL for LINK,
// stored object keys for IMAGE and VIDEO.
const (
	MediaNone  = "NONE"
	MediaLink  = "LINK"
	MediaImage = "IMAGE"
	MediaVideo = "VIDEO"
)

// Platforms a post can target.
var ValidPlatforms = []string{"FACEBOOK", "TIKTOK", "INSTAGRAM", "YOUTUBE", "X"}

// Post represents a scheduled social-media post owned by a user.
type Post struct {
	UUID        string    `gorm:"size:36;primaryKey" json:"uuid"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	PublishDate time.Time `gorm:"type:date;not null" json:"publish_date"`
	Status      string    `gorm:"size:32;not null" json:"status"`
	Platforms   []string  `gorm:"serializer:json" json:"platforms"`
	MediaType   string    `gorm:"size:16;not null" json:"media_type"`
	MediaUris   []string  `gorm:"serializer:json" json:"media_uris"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate assigns a UUID when the client did not provide one.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	return nil
}

// HasStoredMedia reports whether the media type references objects in storage.
func HasStoredMedia(mediaType string) bool {
	return mediaType == MediaImage || mediaType == MediaVideo
}

// ValidStatus reports whether s is a known post status.
func ValidStatus(s string) bool {
	return s == StatusInProgress || s == StatusDone || s == StatusCanceled
}

// ValidMediaType reports whether s is a known media type.
func ValidMediaType(s string) bool {
	return s == MediaNone || s == MediaLink || s == MediaImage || s == MediaVideo
}

// ValidPlatform reports whether s is a known platform name.
func ValidPlatform(s string) bool {
	for _, p := range ValidPlatforms {
		if s == p {
			return true
		}
	}
	return false
}

// PostDto is the wire representation of a post.
type PostDto struct {
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishDate string    `json:"publishDate"`
	Status      string    `json:"status"`
	Platforms   []string  `json:"platforms"`
	MediaType   string    `json:"mediaType"`
	MediaUris   []string  `json:"mediaUris"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PostRequestDto is the payload accepted by create and update endpoints.
type PostRequestDto struct {
	UUID        string   `json:"uuid"`
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content"`
	PublishDate string   `json:"publishDate" binding:"required"`
	Status      string   `json:"status" binding:"required"`
	Platforms   []string `json:"platforms"`
	MediaType   string   `json:"mediaType" binding:"required"`
	MediaUris   []string `json:"mediaUris"`
}

// PublishDateLayout is the wire format for publish dates.
const PublishDateLayout = "2006-01-02"

// ToDto projects the post onto its wire shape.
func (p *Post) ToDto() PostDto {
	platforms := p.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	uris := p.MediaUris
	if uris == nil {
		uris = []string{}
	}
	return PostDto{
		UUID:        p.UUID,
		Title:       p.Title,
		Content:     p.Content,
		PublishDate: p.PublishDate.Format(PublishDateLayout),
		Status:      p.Status,
		Platforms:   platforms,
		MediaType:   p.MediaType,
		MediaUris:   uris,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
